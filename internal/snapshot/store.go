// Package snapshot provides the per-calendar-day cache of raw price
// data. Each day lives in its own JSON file under
// <dir>/<year>/<month>/<day>.json; a cached day is never fetched again.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fueltrends/internal/models"
)

// ErrNotCached indicates no parseable snapshot file exists for a day.
var ErrNotCached = errors.New("no cached snapshot")

// Fetcher retrieves current prices from the upstream source.
type Fetcher interface {
	FetchPrices(ctx context.Context, now time.Time) (*models.Snapshot, error)
}

// Store caches one snapshot per calendar day on disk.
type Store struct {
	dir     string
	fetcher Fetcher
}

// NewStore creates a snapshot store rooted at dir. fetcher may be nil
// for cache-only use (the trend window builder never fetches).
func NewStore(dir string, fetcher Fetcher) *Store {
	return &Store{dir: dir, fetcher: fetcher}
}

// Path returns the cache file location for a calendar day.
func (s *Store) Path(day time.Time) string {
	return filepath.Join(s.dir, day.Format("2006"), day.Format("01"), day.Format("02")+".json")
}

// Load returns the cached snapshot for a day without touching the
// network. A missing or unparsable file maps to ErrNotCached.
func (s *Store) Load(day time.Time) (*models.Snapshot, error) {
	data, err := os.ReadFile(s.Path(day))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotCached
		}
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: corrupt file %s: %v", ErrNotCached, s.Path(day), err)
	}
	return &snap, nil
}

// Get returns the snapshot for now's calendar day, fetching and
// persisting it on a cache miss. A second call for an already-cached
// day returns the stored content unchanged without a network request.
func (s *Store) Get(ctx context.Context, now time.Time) (*models.Snapshot, error) {
	if snap, err := s.Load(now); err == nil {
		return snap, nil
	} else if !errors.Is(err, ErrNotCached) {
		return nil, err
	}

	if s.fetcher == nil {
		return nil, ErrNotCached
	}
	snap, err := s.fetcher.FetchPrices(ctx, now)
	if err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, fmt.Errorf("fetched snapshot invalid: %w", err)
	}
	if err := s.write(now, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// write persists a snapshot with a temp-file rename so concurrent
// readers never observe a partial file.
func (s *Store) write(day time.Time, snap *models.Snapshot) error {
	path := s.Path(day)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}
