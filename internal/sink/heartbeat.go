package sink

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"fueltrends/internal/report"
)

// Heartbeat fires a bare GET at an uptime monitor after a successful
// run. The response status is not inspected.
type Heartbeat struct {
	uri  string
	http *resty.Client
}

// NewHeartbeat creates the liveness ping sink.
func NewHeartbeat(uri string, http *resty.Client) *Heartbeat {
	return &Heartbeat{uri: uri, http: http}
}

func (h *Heartbeat) Name() string { return "heartbeat" }

func (h *Heartbeat) Publish(ctx context.Context, _ *report.Report) error {
	if _, err := h.http.R().SetContext(ctx).Get(h.uri); err != nil {
		return fmt.Errorf("heartbeat request failed: %w", err)
	}
	return nil
}
