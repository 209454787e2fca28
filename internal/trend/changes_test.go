package trend

import (
	"testing"

	"fueltrends/internal/models"
)

func windowWith(series map[string][]float64) *models.TrendWindow {
	var n int
	for _, s := range series {
		n = len(s)
	}
	labels := make([]string, n)
	return &models.TrendWindow{Days: 30, Labels: labels, Series: series}
}

func TestComputeChanges_SymmetricDelta(t *testing.T) {
	w := windowWith(map[string][]float64{
		"E10": {150.0, 153.0},
	})

	changes, direction := ComputeChanges(w)

	c, ok := changes["E10"]
	if !ok {
		t.Fatal("expected a change entry for E10")
	}
	// (153-150)/((153+150)/2)*100 = 1.9801... rounds half-up to 1.98.
	if c.PercentDelta != 1.98 {
		t.Errorf("percent delta: got %v, want 1.98", c.PercentDelta)
	}
	if c.LatestMean != 153.0 {
		t.Errorf("latest mean: got %v, want 153.0", c.LatestMean)
	}
	if direction != DirectionUp {
		t.Errorf("direction: got %v, want upward", direction)
	}
}

func TestComputeChanges_ZeroDeltaSuppressed(t *testing.T) {
	w := windowWith(map[string][]float64{
		"E10": {150.0, 150.0},
		"P95": {190.0, 188.0},
	})

	changes, direction := ComputeChanges(w)

	if _, ok := changes["E10"]; ok {
		t.Error("zero delta must not appear in the change set")
	}
	if _, ok := changes["P95"]; !ok {
		t.Error("nonzero delta should appear in the change set")
	}
	if direction != DirectionDown {
		t.Errorf("direction: got %v, want downward", direction)
	}
}

func TestComputeChanges_NoRetainedDeltasIsFlat(t *testing.T) {
	w := windowWith(map[string][]float64{
		"E10": {150.0, 150.0},
	})

	changes, direction := ComputeChanges(w)

	if len(changes) != 0 {
		t.Errorf("expected empty change set, got %v", changes)
	}
	if direction != DirectionFlat {
		t.Errorf("direction: got %v, want flat", direction)
	}
}

func TestComputeChanges_ShortSeriesSkipped(t *testing.T) {
	w := windowWith(map[string][]float64{
		"E10": {150.0},
	})

	changes, direction := ComputeChanges(w)

	if len(changes) != 0 {
		t.Errorf("single-point series must be skipped, got %v", changes)
	}
	if direction != DirectionFlat {
		t.Errorf("direction: got %v, want flat", direction)
	}
}

func TestComputeChanges_ZeroMeansSkipped(t *testing.T) {
	w := windowWith(map[string][]float64{
		"E10": {0.0, 153.0},
	})

	changes, _ := ComputeChanges(w)
	if len(changes) != 0 {
		t.Errorf("series with a zero endpoint must be skipped, got %v", changes)
	}
}

func TestDirectionTags(t *testing.T) {
	tests := []struct {
		direction Direction
		tag       string
	}{
		{DirectionUp, "chart_with_upwards_trend"},
		{DirectionDown, "chart_with_downwards_trend"},
		{DirectionFlat, "heavy_minus_sign"},
	}
	for _, tt := range tests {
		if got := tt.direction.Tag(); got != tt.tag {
			t.Errorf("%v tag: got %q, want %q", tt.direction, got, tt.tag)
		}
	}
}
