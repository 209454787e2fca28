package models

// FuelStats holds the per-fuel-type statistics derived from a single
// day's snapshot.
type FuelStats struct {
	Mean  float64
	Min   float64
	Max   float64
	Mode  float64
	Count int
}

// TrendWindow is an aligned multi-day, multi-series price history in
// oldest-to-newest order. Every series holds exactly len(Labels) points;
// days without a cached snapshot are absent rather than zero-filled, so
// len(Labels) may be smaller than the requested Days.
type TrendWindow struct {
	Days   int
	Labels []string
	Series map[string][]float64
}

// Len returns the number of days actually present in the window.
func (w *TrendWindow) Len() int {
	return len(w.Labels)
}

// Change is one fuel type's day-over-day movement. PercentDelta uses a
// symmetric-average denominator and is rounded to two decimals.
type Change struct {
	PercentDelta float64
	LatestMean   float64
}
