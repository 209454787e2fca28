package trend

import (
	"fueltrends/internal/aggregate"
	"fueltrends/internal/models"
)

// Direction is the overall day-over-day movement across fuel types.
type Direction int

const (
	// DirectionFlat means no fuel type moved; there is no
	// distinguishable trend to report.
	DirectionFlat Direction = iota
	DirectionUp
	DirectionDown
)

func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "upward"
	case DirectionDown:
		return "downward"
	default:
		return "flat"
	}
}

// Tag returns the emoji keyword used by the push notification sink.
func (d Direction) Tag() string {
	switch d {
	case DirectionUp:
		return "chart_with_upwards_trend"
	case DirectionDown:
		return "chart_with_downwards_trend"
	default:
		return "heavy_minus_sign"
	}
}

// ComputeChanges derives each fuel type's day-over-day percentage delta
// from the window's two most recent points, using a symmetric-average
// denominator. Series shorter than two points and zero deltas are
// suppressed. The overall direction is the sign of the mean of the
// retained deltas; with none retained it is DirectionFlat rather than
// an arithmetic fault.
func ComputeChanges(w *models.TrendWindow) (map[string]models.Change, Direction) {
	changes := make(map[string]models.Change)
	var sum float64
	for fuelType, series := range w.Series {
		if len(series) < 2 {
			continue
		}
		latest, prior := series[len(series)-1], series[len(series)-2]
		if latest == 0 || prior == 0 {
			continue
		}
		delta := aggregate.Round2((latest - prior) / ((latest + prior) / 2) * 100)
		if delta == 0.0 {
			continue
		}
		changes[fuelType] = models.Change{PercentDelta: delta, LatestMean: latest}
		sum += delta
	}

	if len(changes) == 0 {
		return changes, DirectionFlat
	}
	if sum/float64(len(changes)) > 0 {
		return changes, DirectionUp
	}
	return changes, DirectionDown
}
