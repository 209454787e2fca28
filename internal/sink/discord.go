package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"

	"fueltrends/internal/report"
)

// Discord posts an embed with the summary text and the chart attached
// to a Discord webhook.
type Discord struct {
	webhookURL string
	http       *resty.Client
}

// NewDiscord creates the Discord webhook sink.
func NewDiscord(webhookURL string, http *resty.Client) *Discord {
	return &Discord{webhookURL: webhookURL, http: http}
}

func (d *Discord) Name() string { return "discord" }

func (d *Discord) Publish(ctx context.Context, r *report.Report) error {
	embed := map[string]interface{}{
		"title":       fmt.Sprintf("Today's fuel averages (%s)", r.Date.Format("2006/01/02")),
		"description": r.Summary,
		"image":       map[string]string{"url": "attachment://graph.png"},
	}
	payload, err := json.Marshal(map[string]interface{}{
		"embeds": []interface{}{embed},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	resp, err := d.http.R().
		SetContext(ctx).
		SetMultipartField("files[0]", "graph.png", "image/png", bytes.NewReader(r.Chart)).
		SetMultipartFormData(map[string]string{"payload_json": string(payload)}).
		Post(d.webhookURL)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode(), resp.Body())
	}
	return nil
}
