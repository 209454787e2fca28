// Package report assembles the daily report handed to the sinks.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fueltrends/internal/models"
	"fueltrends/internal/trend"
)

// Report is the rendered outcome of one daily run: the chart, the
// textual summary, and the data the individual sinks need.
type Report struct {
	// Date is the report day at 09:00 in the local timezone; the
	// metrics sink uses it (converted to UTC) as the point timestamp.
	Date       time.Time
	WindowDays int
	Direction  trend.Direction
	Changes    map[string]models.Change
	// Aggregates covers every fuel type the stations reported, not
	// just the charted ones.
	Aggregates map[string]models.FuelStats
	Summary    string
	Chart      []byte
	// Location is the archive path relative to the archive root,
	// without the .png suffix (the archive server appends it).
	Location string
}

// Summarize renders the change set as one "TYPE: mean (+x.xx%)" line
// per fuel type, sorted for stable output.
func Summarize(changes map[string]models.Change) string {
	if len(changes) == 0 {
		return "No price movement since the previous day"
	}
	fuelTypes := make([]string, 0, len(changes))
	for ft := range changes {
		fuelTypes = append(fuelTypes, ft)
	}
	sort.Strings(fuelTypes)

	var b strings.Builder
	for _, ft := range fuelTypes {
		c := changes[ft]
		sign := ""
		if c.PercentDelta > 0 {
			sign = "+"
		}
		fmt.Fprintf(&b, "%s: %g (%s%g%%)\n", ft, c.LatestMean, sign, c.PercentDelta)
	}
	return strings.TrimRight(b.String(), "\n")
}
