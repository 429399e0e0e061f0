package models

import "sync"

// TravelerFields is a partial update of the traveler group.
type TravelerFields struct {
	Adults   *int `json:"adults,omitempty"`
	Children *int `json:"children,omitempty"`
	Infants  *int `json:"infants,omitempty"`
}

type TravelerStore struct {
	mu      sync.RWMutex
	group   TravelerGroup
	flasher Flasher
}

func NewTravelerStore(flasher Flasher) *TravelerStore {
	if flasher == nil {
		flasher = NoopFlasher{}
	}
	return &TravelerStore{
		group:   TravelerGroup{Adults: 1},
		flasher: flasher,
	}
}

func (s *TravelerStore) Group() TravelerGroup {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.group
}

func (s *TravelerStore) Update(fields TravelerFields) TravelerGroup {
	s.mu.Lock()
	if fields.Adults != nil && *fields.Adults >= 0 {
		s.group.Adults = *fields.Adults
	}
	if fields.Children != nil && *fields.Children >= 0 {
		s.group.Children = *fields.Children
	}
	if fields.Infants != nil && *fields.Infants >= 0 {
		s.group.Infants = *fields.Infants
	}
	group := s.group
	s.mu.Unlock()

	s.flasher.Flash("travelers")
	return group
}

func (s *TravelerStore) SerializedState() TravelerState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return TravelerState{
		Adults:         s.group.Adults,
		Children:       s.group.Children,
		Infants:        s.group.Infants,
		SuggestedRooms: SuggestRooms(s.group),
	}
}

func (s *TravelerStore) Restore(group TravelerGroup) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if group.Total() <= 0 {
		group = TravelerGroup{Adults: 1}
	}
	s.group = group
}
