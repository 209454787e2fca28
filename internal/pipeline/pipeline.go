// Package pipeline runs one daily report cycle end to end: snapshot
// acquisition, aggregation, trend window, chart, and sink fan-out.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"fueltrends/internal/aggregate"
	"fueltrends/internal/chart"
	"fueltrends/internal/logger"
	"fueltrends/internal/models"
	"fueltrends/internal/nswfuel"
	"fueltrends/internal/report"
	"fueltrends/internal/sink"
	"fueltrends/internal/snapshot"
	"fueltrends/internal/trend"
)

// Config holds the pipeline's own inputs; the drivers share nothing
// else.
type Config struct {
	FuelTypes  []string
	WindowDays int
	ArchiveDir string
}

// Pipeline wires the snapshot store, the fuel-code reference table, and
// the configured sinks into one runnable daily report.
type Pipeline struct {
	cfg   Config
	codes map[string]string
	store *snapshot.Store
	sinks []sink.Sink
	loc   *time.Location
}

// New creates a pipeline. codes maps fuel-type codes to human-readable
// names for the console summary.
func New(cfg Config, codes map[string]string, store *snapshot.Store, sinks []sink.Sink, loc *time.Location) *Pipeline {
	return &Pipeline{cfg: cfg, codes: codes, store: store, sinks: sinks, loc: loc}
}

// Run executes one report cycle for the current local day. Credential
// failures are fatal and propagate; a source-unavailable fetch only
// drops today from the window.
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()[:8]
	start := time.Now()
	now := start.In(p.loc)
	logger.Info("[run %s] Starting daily report for %s", runID, now.Format("02/01/2006"))

	var todayStats map[string]models.FuelStats
	snap, err := p.store.Get(ctx, now)
	switch {
	case err == nil:
		todayStats = aggregate.Aggregate(snap)
		p.logAverages(todayStats)
	case errors.Is(err, nswfuel.ErrSourceUnavailable), errors.Is(err, snapshot.ErrNotCached):
		logger.Error("[run %s] No new data for today: %v", runID, err)
	default:
		return err
	}

	window := trend.BuildWindow(p.store, now, p.cfg.WindowDays, p.cfg.FuelTypes)
	if window.Len() == 0 {
		return errors.New("no archived snapshots available to chart")
	}

	changes, direction := trend.ComputeChanges(window)
	summary := report.Summarize(changes)
	logger.Info("Today's fuel averages (%s trend):", direction)
	logger.Info("%s", summary)

	png, err := chart.Render(window)
	if err != nil {
		return err
	}

	// The report timestamp is the day at 09:00 local; the metrics sink
	// converts it to UTC.
	reportDate := time.Date(now.Year(), now.Month(), now.Day(), 9, 0, 0, 0, p.loc)
	location, err := chart.Write(p.cfg.ArchiveDir, reportDate, png)
	if err != nil {
		return err
	}
	logger.Info("[run %s] Archived chart at %s", runID, location)

	sink.Dispatch(ctx, p.sinks, &report.Report{
		Date:       reportDate,
		WindowDays: window.Days,
		Direction:  direction,
		Changes:    changes,
		Aggregates: todayStats,
		Summary:    summary,
		Chart:      png,
		Location:   location,
	})

	logger.Info("[run %s] Completed in %v", runID, time.Since(start))
	return nil
}

func (p *Pipeline) logAverages(stats map[string]models.FuelStats) {
	fuelTypes := make([]string, 0, len(stats))
	for ft := range stats {
		fuelTypes = append(fuelTypes, ft)
	}
	sort.Strings(fuelTypes)

	logger.Info("Fuel Averages and Station Count")
	for _, ft := range fuelTypes {
		name := p.codes[ft]
		if name == "" {
			name = ft
		}
		logger.Info("%s: %g || Stations: %d", name, stats[ft].Mean, stats[ft].Count)
	}
}
