package models

import (
	"sync"

	"github.com/google/uuid"
)

// FlightStore owns the trip topology: the trip type plus the ordered
// leg list. Destination-scoped entries live in the entry stores; this
// store is what the topology reconciler diffs against.
type FlightStore struct {
	mu       sync.RWMutex
	tripType TripType
	legs     []*FlightLeg
	flasher  Flasher
}

func NewFlightStore(flasher Flasher) *FlightStore {
	if flasher == nil {
		flasher = NoopFlasher{}
	}
	return &FlightStore{
		tripType: TripRoundTrip,
		flasher:  flasher,
	}
}

func (s *FlightStore) TripType() TripType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tripType
}

// SetTopology replaces the trip type and leg list in one step and
// returns the previous type. Leg ids are generated where absent and
// indices rewritten to list order.
func (s *FlightStore) SetTopology(t TripType, legs []FlightLeg) TripType {
	s.mu.Lock()
	prev := s.tripType
	s.tripType = t
	s.legs = make([]*FlightLeg, 0, len(legs))
	for i := range legs {
		leg := legs[i].Clone()
		if leg.ID == "" {
			leg.ID = uuid.NewString()
		}
		leg.LegIndex = i
		s.legs = append(s.legs, leg)
	}
	s.mu.Unlock()

	s.flasher.Flash(string(SourceFlight))
	return prev
}

// UpsertLeg replaces the leg with the same id or appends a new one,
// returning the stored leg's id.
func (s *FlightStore) UpsertLeg(leg FlightLeg) string {
	s.mu.Lock()
	cp := leg.Clone()
	if cp.ID == "" {
		cp.ID = uuid.NewString()
	}
	replaced := false
	for i, existing := range s.legs {
		if existing.ID == cp.ID {
			cp.LegIndex = existing.LegIndex
			s.legs[i] = cp
			replaced = true
			break
		}
	}
	if !replaced {
		cp.LegIndex = len(s.legs)
		s.legs = append(s.legs, cp)
	}
	id := cp.ID
	s.mu.Unlock()

	s.flasher.Flash(string(SourceFlight))
	return id
}

// UpdateLegDates edits one leg's dates. A direct edit marks the leg's
// date family as user-owned; unknown ids are a silent no-op.
func (s *FlightStore) UpdateLegDates(id, departDate, returnDate string, origin Origin) {
	s.mu.Lock()
	for _, leg := range s.legs {
		if leg.ID != id {
			continue
		}
		if origin == OriginAuto && leg.UserModifiedDates {
			break
		}
		if departDate != "" {
			leg.DepartDate = departDate
		}
		if returnDate != "" {
			leg.ReturnDate = returnDate
		}
		if origin == OriginDirect {
			leg.UserModifiedDates = true
		}
		break
	}
	s.mu.Unlock()

	s.flasher.Flash(string(SourceFlight))
}

func (s *FlightStore) Legs() []*FlightLeg {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*FlightLeg, 0, len(s.legs))
	for _, leg := range s.legs {
		out = append(out, leg.Clone())
	}
	return out
}

func (s *FlightStore) LegByID(id string) (*FlightLeg, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, leg := range s.legs {
		if leg.ID == id {
			return leg.Clone(), true
		}
	}
	return nil, false
}

// LegByArrivalCity resolves the first leg arriving at the city,
// matched with the shared normalization key.
func (s *FlightStore) LegByArrivalCity(city string) (*FlightLeg, bool) {
	key := NormalizeCity(city)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, leg := range s.legs {
		if NormalizeCity(leg.Arrival.City) == key {
			return leg.Clone(), true
		}
	}
	return nil, false
}

func (s *FlightStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.legs)
}

func (s *FlightStore) SerializedState() FlightState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := FlightState{
		TripType:  s.tripType,
		TotalLegs: len(s.legs),
		Legs:      make([]LegSummary, 0, len(s.legs)),
	}
	for _, leg := range s.legs {
		state.Legs = append(state.Legs, LegSummary{
			From:       leg.Origin.City,
			To:         leg.Arrival.City,
			DepartDate: leg.DepartDate,
			ReturnDate: leg.ReturnDate,
		})
	}
	return state
}

func (s *FlightStore) Snapshot() ([]FlightLeg, TripType) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	legs := make([]FlightLeg, 0, len(s.legs))
	for _, leg := range s.legs {
		legs = append(legs, *leg)
	}
	return legs, s.tripType
}

func (s *FlightStore) Restore(legs []FlightLeg, t TripType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t == "" {
		t = TripRoundTrip
	}
	s.tripType = t
	s.legs = make([]*FlightLeg, 0, len(legs))
	for i := range legs {
		s.legs = append(s.legs, legs[i].Clone())
	}
}
