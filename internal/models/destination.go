package models

import (
	"strings"
	"time"
)

// Source identifies the surface a piece of trip data originated from.
// It doubles as the provenance tag on propagation events.
type Source string

const (
	SourceFlight        Source = "flight"
	SourceAccommodation Source = "accommodation"
	SourceActivity      Source = "activity"
	SourceManual        Source = "manual"
)

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Destination is the canonical representation of a trip stop. It is
// produced only by the sync service normalizer and is immutable: a later
// sync replaces the value wholesale instead of mutating it in place.
type Destination struct {
	ID          string       `json:"id"`
	City        string       `json:"city"`
	CountryCode string       `json:"countryCode"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Source      Source       `json:"source"`
	SyncedAt    time.Time    `json:"syncedAt"`
}

// NormalizeCity is the single city comparison key used everywhere two
// city names are matched against each other.
func NormalizeCity(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}
