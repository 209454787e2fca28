package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fueltrends/internal/models"
	"fueltrends/internal/report"
	"fueltrends/internal/sink"
	"fueltrends/internal/snapshot"
	"fueltrends/internal/trend"
)

type captureSink struct {
	reports []*report.Report
}

func (c *captureSink) Name() string { return "capture" }

func (c *captureSink) Publish(_ context.Context, r *report.Report) error {
	c.reports = append(c.reports, r)
	return nil
}

// seedDay writes a cached snapshot file for the given day, matching the
// on-disk layout the snapshot store produces.
func seedDay(t *testing.T, store *snapshot.Store, day time.Time, prices map[string]float64) {
	t.Helper()
	snap := &models.Snapshot{RequestTime: day.Unix()}
	for ft, price := range prices {
		// Two stations per type so the aggregate has a real count.
		snap.Prices = append(snap.Prices,
			models.StationPrice{FuelType: ft, Price: price},
			models.StationPrice{FuelType: ft, Price: price},
		)
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	path := store.Path(day)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestRun_SteadyMonth seeds a full window ending today where the last
// two days are identical, so a run must produce a full-length chart, an
// empty change set, a flat direction, and exactly one publish per sink.
func TestRun_SteadyMonth(t *testing.T) {
	pricesDir := t.TempDir()
	archiveDir := t.TempDir()
	store := snapshot.NewStore(pricesDir, nil)

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for daysAgo := 0; daysAgo < 30; daysAgo++ {
		day := today.AddDate(0, 0, -daysAgo)
		e10 := 150.0 + float64(daysAgo%7)
		p95 := 190.0 + float64(daysAgo%7)
		if daysAgo < 2 {
			e10, p95 = 153.0, 193.0
		}
		seedDay(t, store, day, map[string]float64{"E10": e10, "P95": p95})
	}

	captured := &captureSink{}
	p := New(Config{
		FuelTypes:  []string{"E10", "P95"},
		WindowDays: 30,
		ArchiveDir: archiveDir,
	}, map[string]string{"E10": "Ethanol 94"}, store, []sink.Sink{captured}, time.UTC)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(captured.reports) != 1 {
		t.Fatalf("published reports: got %d, want 1", len(captured.reports))
	}
	r := captured.reports[0]

	if r.WindowDays != 30 {
		t.Errorf("window days: got %d, want 30", r.WindowDays)
	}
	if len(r.Changes) != 0 {
		t.Errorf("change set should be empty for an unchanged day, got %v", r.Changes)
	}
	if r.Direction != trend.DirectionFlat {
		t.Errorf("direction: got %v, want flat", r.Direction)
	}
	if r.Summary != "No price movement since the previous day" {
		t.Errorf("summary: got %q", r.Summary)
	}
	if !bytes.HasPrefix(r.Chart, []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("report chart is not a PNG")
	}

	wantDate := time.Date(today.Year(), today.Month(), today.Day(), 9, 0, 0, 0, time.UTC)
	if !r.Date.Equal(wantDate) {
		t.Errorf("report date: got %v, want %v", r.Date, wantDate)
	}

	if r.Aggregates["E10"].Mean != 153.0 {
		t.Errorf("E10 mean: got %v, want 153.0", r.Aggregates["E10"].Mean)
	}
	if r.Aggregates["E10"].Count != 2 {
		t.Errorf("E10 count: got %d, want 2", r.Aggregates["E10"].Count)
	}

	archived := filepath.Join(archiveDir, today.Format("2006"), today.Format("01"), today.Format("02")+".png")
	data, err := os.ReadFile(archived)
	if err != nil {
		t.Fatalf("archived chart missing: %v", err)
	}
	if !bytes.Equal(data, r.Chart) {
		t.Error("archived chart differs from the published one")
	}
}

// TestRun_MissingTodayStillCharts covers the degraded path: today's
// snapshot is absent and the fetcher fails, so the run reports from the
// archive alone with no fresh aggregates.
func TestRun_MissingTodayStillCharts(t *testing.T) {
	pricesDir := t.TempDir()
	archiveDir := t.TempDir()
	store := snapshot.NewStore(pricesDir, failingFetcher{})

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	for daysAgo := 1; daysAgo <= 5; daysAgo++ {
		day := today.AddDate(0, 0, -daysAgo)
		seedDay(t, store, day, map[string]float64{"E10": 150.0 + float64(daysAgo)})
	}

	captured := &captureSink{}
	p := New(Config{
		FuelTypes:  []string{"E10"},
		WindowDays: 30,
		ArchiveDir: archiveDir,
	}, nil, store, []sink.Sink{captured}, time.UTC)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(captured.reports) != 1 {
		t.Fatalf("published reports: got %d, want 1", len(captured.reports))
	}
	r := captured.reports[0]
	if len(r.Aggregates) != 0 {
		t.Errorf("expected no fresh aggregates, got %v", r.Aggregates)
	}
	if len(r.Chart) == 0 {
		t.Error("expected a chart built from the archive alone")
	}
}

// TestRun_EmptyArchiveIsError covers the very first run with no history
// and no reachable source: there is nothing to chart.
func TestRun_EmptyArchiveIsError(t *testing.T) {
	store := snapshot.NewStore(t.TempDir(), failingFetcher{})
	p := New(Config{
		FuelTypes:  []string{"E10"},
		WindowDays: 30,
		ArchiveDir: t.TempDir(),
	}, nil, store, nil, time.UTC)

	if err := p.Run(context.Background()); err == nil {
		t.Error("expected an error when no snapshots exist at all")
	}
}

type failingFetcher struct{}

func (failingFetcher) FetchPrices(_ context.Context, _ time.Time) (*models.Snapshot, error) {
	return nil, snapshot.ErrNotCached
}
