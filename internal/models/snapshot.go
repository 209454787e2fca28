// Package models defines the core domain entities: snapshots, daily
// fuel statistics, trend windows, and day-over-day changes.
package models

import (
	"errors"
	"time"
)

// StationPrice is a single station's reported price for one fuel type,
// in hundredths of a currency unit per litre. Station identity and
// location are stripped before a snapshot is persisted.
type StationPrice struct {
	FuelType string  `json:"fueltype"`
	Price    float64 `json:"price"`
}

// Snapshot is one calendar day's raw price pull. At most one snapshot
// exists per day; once written to the cache it is never modified.
type Snapshot struct {
	Prices      []StationPrice `json:"prices"`
	RequestTime int64          `json:"request_time"`
}

// Validate checks snapshot field constraints before persisting.
func (s *Snapshot) Validate() error {
	if s.RequestTime <= 0 {
		return errors.New("request time must be set")
	}
	if len(s.Prices) == 0 {
		return errors.New("snapshot must contain at least one price")
	}
	for _, p := range s.Prices {
		if p.FuelType == "" {
			return errors.New("fuel type must not be empty")
		}
		if p.Price < 0 {
			return errors.New("price must not be negative")
		}
	}
	return nil
}

// FetchedAt returns the request instant recorded in the snapshot.
func (s *Snapshot) FetchedAt() time.Time {
	return time.Unix(s.RequestTime, 0)
}
