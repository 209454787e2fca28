package sink

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"fueltrends/internal/report"
)

// Ntfy pushes the summary to an ntfy topic with the archived chart as
// an attachment reference and the trend direction as the tag.
type Ntfy struct {
	uri    string
	domain string
	token  string
	http   *resty.Client
}

// NewNtfy creates the ntfy push notification sink. domain is the public
// base URL of the archive server used for the attachment reference.
func NewNtfy(uri, domain, token string, http *resty.Client) *Ntfy {
	return &Ntfy{uri: uri, domain: domain, token: token, http: http}
}

func (n *Ntfy) Name() string { return "ntfy" }

func (n *Ntfy) Publish(ctx context.Context, r *report.Report) error {
	resp, err := n.http.R().
		SetContext(ctx).
		SetHeader("Title", fmt.Sprintf("Fuel Diff for %s", r.Date.Format("02/01/2006"))).
		SetHeader("Attach", n.domain+"/"+r.Location).
		SetHeader("Tags", r.Direction.Tag()).
		SetHeader("Authorization", "Bearer "+n.token).
		SetBody(fmt.Sprintf("Today's fuel averages\n%s", r.Summary)).
		Put(n.uri)
	if err != nil {
		return fmt.Errorf("ntfy request failed: %w", err)
	}
	// A non-success status is an error for this sink only; the
	// dispatcher keeps the remaining sinks running.
	if resp.StatusCode() >= 300 {
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode(), resp.Body())
	}
	return nil
}
