package sink

import (
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"fueltrends/internal/aggregate"
	"fueltrends/internal/logger"
	"fueltrends/internal/report"
)

// Measurement is the fixed measurement name for daily fuel price points.
const Measurement = "fuel_prices_nsw"

// Influx writes one point per fuel type to the metrics database,
// skipping the write when a point already exists at the report
// timestamp so a re-run never double-writes a day.
type Influx struct {
	client influxdb2.Client
	org    string
	bucket string
}

// NewInflux creates the metrics database sink with a bounded request
// timeout.
func NewInflux(uri, token, org, bucket string, timeout time.Duration) *Influx {
	opts := influxdb2.DefaultOptions().
		SetPrecision(time.Second).
		SetHTTPRequestTimeout(uint(timeout / time.Second))
	return &Influx{
		client: influxdb2.NewClientWithOptions(uri, token, opts),
		org:    org,
		bucket: bucket,
	}
}

func (i *Influx) Name() string { return "influx" }

// Close releases the underlying HTTP resources.
func (i *Influx) Close() {
	i.client.Close()
}

func (i *Influx) Publish(ctx context.Context, r *report.Report) error {
	if len(r.Aggregates) == 0 {
		logger.Info("No fresh aggregates, skipping database push")
		return nil
	}
	last, err := i.lastPointTime(ctx)
	if err != nil {
		return fmt.Errorf("failed to query last point: %w", err)
	}
	if last.Equal(r.Date) {
		logger.Info("Skipping database push, data already exists")
		return nil
	}

	fuelTypes := make([]string, 0, len(r.Aggregates))
	for ft := range r.Aggregates {
		fuelTypes = append(fuelTypes, ft)
	}
	sort.Strings(fuelTypes)

	points := make([]*write.Point, 0, len(fuelTypes))
	for _, ft := range fuelTypes {
		stats := r.Aggregates[ft]
		points = append(points, influxdb2.NewPoint(
			Measurement,
			map[string]string{"type": ft},
			map[string]interface{}{
				"mean": stats.Mean,
				"min":  aggregate.Round2(stats.Min),
				"max":  aggregate.Round2(stats.Max),
				"mode": aggregate.Round2(stats.Mode),
			},
			r.Date.UTC(),
		))
	}
	if err := i.client.WriteAPIBlocking(i.org, i.bucket).WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("failed to write points: %w", err)
	}
	return nil
}

// lastPointTime returns the timestamp of the most recent point stored
// in the bucket over the past day, or the zero time when none exists.
func (i *Influx) lastPointTime(ctx context.Context) (time.Time, error) {
	query := fmt.Sprintf(`from(bucket:"%s") |> range(start: -1d) |> last()`, i.bucket)
	raw, err := i.client.QueryAPI(i.org).QueryRaw(ctx, query, influxdb2.DefaultDialect())
	if err != nil {
		return time.Time{}, err
	}
	return parseLastTime(raw)
}

// parseLastTime extracts the first row's _time column from an annotated
// CSV query response.
func parseLastTime(raw string) (time.Time, error) {
	var header []string
	timeIdx := -1
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields, err := csv.NewReader(strings.NewReader(line)).Read()
		if err != nil {
			return time.Time{}, fmt.Errorf("malformed query response: %w", err)
		}
		if header == nil {
			header = fields
			for idx, name := range header {
				if name == "_time" {
					timeIdx = idx
				}
			}
			if timeIdx == -1 {
				return time.Time{}, nil
			}
			continue
		}
		if timeIdx >= len(fields) {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, fields[timeIdx])
		if err != nil {
			return time.Time{}, fmt.Errorf("malformed _time %q: %w", fields[timeIdx], err)
		}
		return ts, nil
	}
	return time.Time{}, nil
}
