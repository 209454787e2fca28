package report

import (
	"testing"

	"fueltrends/internal/models"
)

func TestSummarize(t *testing.T) {
	changes := map[string]models.Change{
		"P95": {PercentDelta: -0.5, LatestMean: 195.5},
		"E10": {PercentDelta: 1.98, LatestMean: 153.0},
	}

	want := "E10: 153 (+1.98%)\nP95: 195.5 (-0.5%)"
	if got := Summarize(changes); got != want {
		t.Errorf("summary:\ngot  %q\nwant %q", got, want)
	}
}

func TestSummarize_Empty(t *testing.T) {
	want := "No price movement since the previous day"
	if got := Summarize(nil); got != want {
		t.Errorf("summary: got %q, want %q", got, want)
	}
}
