package services

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"tripsync/internal/events"
	"tripsync/internal/models"
)

// destinationNamespace scopes the deterministic destination ids. The
// same normalized city always resolves to the same id, so an override
// keyed by a destination id still matches after the flight surface
// re-finalizes the same stop.
var destinationNamespace = uuid.MustParse("9f2c1b36-4a7e-4c3d-8b5a-2e6f0d8c1a47")

func destinationID(city string) string {
	return uuid.NewSHA1(destinationNamespace, []byte(models.NormalizeCity(city))).String()
}

// Targets selects which stores a destination should propagate into.
type Targets struct {
	Accommodation bool
	Activity      bool
}

func AllTargets() Targets {
	return Targets{Accommodation: true, Activity: true}
}

// SyncOutcome reports, per target surface, whether propagation ran or
// was rejected by a user override.
type SyncOutcome struct {
	Destination models.Destination
	Propagated  []models.Source
	Blocked     []models.Source
}

type SyncState string

const (
	SyncStateSynced  SyncState = "synced"
	SyncStateBlocked SyncState = "blocked"
	SyncStateManual  SyncState = "manual"
)

// SyncStatus is a display-only probe result; computing it never
// mutates anything.
type SyncStatus struct {
	State    SyncState     `json:"state"`
	Source   models.Source `json:"source,omitempty"`
	SyncedAt time.Time     `json:"syncedAt"`
}

// SyncService normalizes heterogeneous source data into canonical
// destinations and decides, per target store, whether propagation is
// currently allowed. Blocking is kept as per-target id-set membership,
// not as a property of the destination, so one destination can be
// blocked for accommodation while propagating freely to activity.
type SyncService struct {
	mu        sync.Mutex
	bus       *events.Bus
	overrides map[models.Source]map[string]struct{}
}

func NewSyncService(bus *events.Bus) *SyncService {
	return &SyncService{
		bus:       bus,
		overrides: make(map[models.Source]map[string]struct{}),
	}
}

// NormalizeFromFlight converts a flight leg's arrival airport into the
// canonical destination shape. Destinations are never hand-constructed
// outside the normalizer.
func (s *SyncService) NormalizeFromFlight(arrival models.Airport, legID string) models.Destination {
	d := models.Destination{
		ID:          destinationID(arrival.City),
		City:        arrival.City,
		CountryCode: arrival.CountryCode,
		Source:      models.SourceFlight,
		SyncedAt:    time.Now(),
	}
	if arrival.Coordinates != nil {
		coords := *arrival.Coordinates
		d.Coordinates = &coords
	}
	return d
}

// NormalizeManual wraps a widget-selected city.
func (s *SyncService) NormalizeManual(city, countryCode string) models.Destination {
	return models.Destination{
		ID:          destinationID(city),
		City:        city,
		CountryCode: countryCode,
		Source:      models.SourceManual,
		SyncedAt:    time.Now(),
	}
}

// Propagate emits one CityPropagated per eligible target store and a
// SyncBlocked for each target the user has overridden. The target
// stores apply the event themselves; by the time Propagate returns,
// dispatch has completed.
func (s *SyncService) Propagate(d models.Destination, targets Targets) SyncOutcome {
	outcome := SyncOutcome{Destination: d}
	for _, target := range s.selected(targets) {
		if target == d.Source {
			continue
		}
		if s.IsBlocked(target, d.ID) {
			outcome.Blocked = append(outcome.Blocked, target)
			s.bus.Publish(events.SyncBlocked{
				Widget:        target,
				DestinationID: d.ID,
				Reason:        "user override",
			})
			continue
		}
		outcome.Propagated = append(outcome.Propagated, target)
		s.bus.Publish(events.CityPropagated{
			From:        d.Source,
			To:          target,
			Destination: d,
		})
	}
	return outcome
}

// PropagateDates pushes a changed travel window into the targets that
// still accept automated date writes. The receiving store applies it
// with origin=auto, so user-protected dates survive untouched.
func (s *SyncService) PropagateDates(d models.Destination, dateFrom, dateTo string, targets Targets) {
	if dateFrom == "" && dateTo == "" {
		return
	}
	for _, target := range s.selected(targets) {
		if target == d.Source || s.IsBlocked(target, d.ID) {
			continue
		}
		s.bus.Publish(events.DatesPropagated{
			From:        d.Source,
			To:          target,
			Destination: d,
			DateFrom:    dateFrom,
			DateTo:      dateTo,
		})
	}
}

// Block suppresses propagation of one destination into one target
// store. Widgets call it when the user starts editing that surface
// independently.
func (s *SyncService) Block(target models.Source, destinationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.overrides[target]
	if !ok {
		set = make(map[string]struct{})
		s.overrides[target] = set
	}
	set[destinationID] = struct{}{}
}

// Unblock lifts a user override.
func (s *SyncService) Unblock(target models.Source, destinationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides[target], destinationID)
}

func (s *SyncService) IsBlocked(target models.Source, destinationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.overrides[target][destinationID]
	return ok
}

// StatusFor derives the display state from its inputs alone.
func StatusFor(blocked bool, source models.Source, syncedAt time.Time) SyncStatus {
	switch {
	case blocked:
		return SyncStatus{State: SyncStateBlocked, Source: source, SyncedAt: syncedAt}
	case source == models.SourceManual || syncedAt.IsZero():
		return SyncStatus{State: SyncStateManual, Source: source}
	default:
		return SyncStatus{State: SyncStateSynced, Source: source, SyncedAt: syncedAt}
	}
}

func (s *SyncService) selected(targets Targets) []models.Source {
	out := make([]models.Source, 0, 2)
	if targets.Accommodation {
		out = append(out, models.SourceAccommodation)
	}
	if targets.Activity {
		out = append(out, models.SourceActivity)
	}
	return out
}
