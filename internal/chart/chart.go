// Package chart renders the trend window to a PNG and archives one
// image per report day under <root>/<year>/<month>/<day>.png.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"fueltrends/internal/models"
)

// Render plots every series in the window against the shared date axis
// and returns the encoded PNG.
func Render(w *models.TrendWindow) ([]byte, error) {
	if w.Len() == 0 || len(w.Series) == 0 {
		return nil, errors.New("trend window is empty")
	}

	xs := make([]float64, w.Len())
	ticks := make([]chart.Tick, w.Len())
	for i, label := range w.Labels {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}

	fuelTypes := make([]string, 0, len(w.Series))
	for ft := range w.Series {
		fuelTypes = append(fuelTypes, ft)
	}
	sort.Strings(fuelTypes)

	series := make([]chart.Series, 0, len(fuelTypes))
	for _, ft := range fuelTypes {
		series = append(series, chart.ContinuousSeries{
			Name:    ft,
			XValues: xs,
			YValues: w.Series[ft],
			Style: chart.Style{
				StrokeWidth: 2,
				DotWidth:    3,
			},
		})
	}

	graph := chart.Chart{
		Title: fmt.Sprintf("Fuel Price Averages over the last %d days", w.Days),
		XAxis: chart.XAxis{
			Name:  "Date",
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name: "c/Litre",
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.LegendThin(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}

// Location returns a day's archive path relative to the archive root,
// without the .png suffix. The archive server appends the suffix, so
// the bare location doubles as the public attachment path.
func Location(day time.Time) string {
	return day.Format("2006/01/02")
}

// Write persists the rendered PNG for a day under root and returns the
// day's relative location.
func Write(root string, day time.Time, png []byte) (string, error) {
	location := Location(day)
	path := filepath.Join(root, location+".png")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("failed to write archive image: %w", err)
	}
	return location, nil
}
