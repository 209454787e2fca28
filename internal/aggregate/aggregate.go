// Package aggregate reduces a day's raw station prices into per-fuel-type
// statistics.
package aggregate

import (
	"math"

	"fueltrends/internal/models"
)

// Round2 rounds half-up to two decimal places. Prices are always
// positive, so math.Round's half-away-from-zero matches half-up.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// Mean returns the arithmetic mean rounded to two decimals.
func Mean(prices []float64) float64 {
	var sum float64
	for _, p := range prices {
		sum += p
	}
	return Round2(sum / float64(len(prices)))
}

// Mode returns the most frequent price. Ties resolve to the largest of
// the tied values; this tie-break is load-bearing for reproducibility
// against historical records.
func Mode(prices []float64) float64 {
	counts := make(map[float64]int, len(prices))
	for _, p := range prices {
		counts[p]++
	}
	var mode float64
	best := 0
	for price, n := range counts {
		if n > best || (n == best && price > mode) {
			mode = price
			best = n
		}
	}
	return mode
}

// GroupByFuelType collects each fuel type's reported prices.
func GroupByFuelType(snap *models.Snapshot) map[string][]float64 {
	groups := make(map[string][]float64)
	for _, p := range snap.Prices {
		groups[p.FuelType] = append(groups[p.FuelType], p.Price)
	}
	return groups
}

// Aggregate computes count, mean, min, max, and mode per fuel type. A
// fuel type appears only if at least one station reported it, so every
// group is non-empty.
func Aggregate(snap *models.Snapshot) map[string]models.FuelStats {
	stats := make(map[string]models.FuelStats)
	for fuelType, prices := range GroupByFuelType(snap) {
		min, max := prices[0], prices[0]
		for _, p := range prices[1:] {
			if p < min {
				min = p
			}
			if p > max {
				max = p
			}
		}
		stats[fuelType] = models.FuelStats{
			Mean:  Mean(prices),
			Min:   min,
			Max:   max,
			Mode:  Mode(prices),
			Count: len(prices),
		}
	}
	return stats
}
