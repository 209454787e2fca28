// Package trend builds the rolling multi-day price window used for
// charting and computes day-over-day changes from it.
package trend

import (
	"math"
	"strings"
	"time"

	"fueltrends/internal/aggregate"
	"fueltrends/internal/logger"
	"fueltrends/internal/models"
)

// Loader reads an already-archived snapshot for a calendar day. Window
// construction never fetches over the network; a day that was not
// archived is simply absent from the window.
type Loader interface {
	Load(day time.Time) (*models.Snapshot, error)
}

// BuildWindow loads up to `days` calendar days of snapshots ending at
// `end` and produces per-fuel-type mean series aligned to a shared,
// sparsely-labeled date axis, oldest to newest. Missing days are
// skipped with a warning; no placeholder entries are created for them.
func BuildWindow(loader Loader, end time.Time, days int, fuelTypes []string) *models.TrendWindow {
	allowed := make(map[string]bool, len(fuelTypes))
	for _, ft := range fuelTypes {
		allowed[ft] = true
	}

	var labels []string
	series := make(map[string][]float64, len(fuelTypes))
	for _, ft := range fuelTypes {
		series[ft] = []float64{}
	}

	// Newest-first pass over the requested range.
	for i := 0; i < days; i++ {
		day := end.AddDate(0, 0, -i)
		snap, err := loader.Load(day)
		if err != nil {
			logger.Warn("Failed to get data for day %s: %v", day.Format("02/01/2006"), err)
			continue
		}

		means := dailyMeans(snap, allowed)
		labels = append(labels, day.Format("02/01"))
		for _, ft := range fuelTypes {
			if mean, ok := means[ft]; ok {
				series[ft] = append(series[ft], mean)
			} else {
				// Keep the axis aligned; the gap is repaired below.
				series[ft] = append(series[ft], math.NaN())
			}
		}
	}

	sparsifyLabels(labels, days)

	reverse(labels)
	for ft := range series {
		reverse(series[ft])
	}

	for _, ft := range fuelTypes {
		if !fillGaps(series[ft]) {
			logger.Warn("No data for fuel type %s in the last %d days", ft, days)
			delete(series, ft)
		}
	}

	return &models.TrendWindow{Days: days, Labels: labels, Series: series}
}

// dailyMeans computes the day's mean price per fuel type, restricted to
// the configured display set. This is deliberately a separate pass from
// aggregate.Aggregate: the console/metrics summary covers every fuel
// type the stations report, the chart only the configured ones.
func dailyMeans(snap *models.Snapshot, allowed map[string]bool) map[string]float64 {
	groups := make(map[string][]float64)
	for _, p := range snap.Prices {
		if !allowed[p.FuelType] {
			continue
		}
		groups[p.FuelType] = append(groups[p.FuelType], p.Price)
	}
	means := make(map[string]float64, len(groups))
	for ft, prices := range groups {
		means[ft] = aggregate.Mean(prices)
	}
	return means
}

// sparsifyLabels blanks out crowded axis labels in place. Counting in
// the newest-first order, label 0 and every ceil(days/10)-th label keep
// their text; the rest become an i-space placeholder so each stays a
// distinct axis category.
func sparsifyLabels(labels []string, days int) {
	step := (days + 9) / 10
	if step < 1 {
		step = 1
	}
	for i := range labels {
		if i != 0 && i%step != 0 {
			labels[i] = strings.Repeat(" ", i)
		}
	}
}

// fillGaps repairs days where a configured fuel type had no samples by
// carrying the previous day's mean forward (leading gaps take the first
// observed value). Returns false when the series holds no data at all.
func fillGaps(s []float64) bool {
	first := -1
	for i, v := range s {
		if !math.IsNaN(v) {
			first = i
			break
		}
	}
	if first == -1 {
		return false
	}
	for i := 0; i < first; i++ {
		s[i] = s[first]
	}
	for i := first + 1; i < len(s); i++ {
		if math.IsNaN(s[i]) {
			s[i] = s[i-1]
		}
	}
	return true
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
