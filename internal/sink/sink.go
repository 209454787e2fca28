// Package sink publishes the daily report to the configured external
// endpoints. Every sink is independently enabled and independently
// failure-isolated: one sink's error never stops the others.
package sink

import (
	"context"

	"fueltrends/internal/logger"
	"fueltrends/internal/report"
)

// Sink is one external destination for the daily report.
type Sink interface {
	Name() string
	Publish(ctx context.Context, r *report.Report) error
}

// Dispatch attempts every sink in order, logging failures instead of
// propagating them.
func Dispatch(ctx context.Context, sinks []Sink, r *report.Report) {
	for _, s := range sinks {
		if err := s.Publish(ctx, r); err != nil {
			logger.Error("Sink %s failed: %v", s.Name(), err)
			continue
		}
		logger.Info("Sent %s report for %s", s.Name(), r.Date.Format("2006/01/02"))
	}
}
