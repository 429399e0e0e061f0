package models

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Flasher signals a surface tab that its content changed while it may
// not be visible. Stores call it on every add/update.
type Flasher interface {
	Flash(tab string)
}

type NoopFlasher struct{}

func (NoopFlasher) Flash(string) {}

// EntryStore holds the destination-scoped entries of one domain
// (accommodation or activity). All mutation goes through Add, Remove,
// Update and UpdateBatch so the conflict policy cannot be bypassed.
type EntryStore struct {
	mu       sync.RWMutex
	domain   Source
	entries  map[string]*Entry
	defaults Defaults
	flasher  Flasher
}

func NewEntryStore(domain Source, defaults Defaults, flasher Flasher) *EntryStore {
	if flasher == nil {
		flasher = NoopFlasher{}
	}
	return &EntryStore{
		domain:   domain,
		entries:  make(map[string]*Entry),
		defaults: defaults,
		flasher:  flasher,
	}
}

func (s *EntryStore) Domain() Source {
	return s.domain
}

func (s *EntryStore) Defaults() Defaults {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.defaults
}

func (s *EntryStore) SetDefaults(d Defaults) {
	s.mu.Lock()
	s.defaults = d
	s.mu.Unlock()
}

// Add inserts the entry and returns its id. A nil entry creates a blank
// entry carrying the store defaults. If an entry for the same normalized
// city already exists its id is returned instead; two entries may not
// coexist for one city.
func (s *EntryStore) Add(e *Entry) string {
	s.mu.Lock()

	if e == nil {
		e = &Entry{}
	} else {
		e = e.Clone()
	}
	if e.City != "" {
		if existing := s.findByCity(e.City); existing != nil {
			s.mu.Unlock()
			return existing.ID
		}
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.BudgetPreset == "" {
		e.BudgetPreset = s.defaults.BudgetPreset
		e.BudgetMin = s.defaults.BudgetMin
		e.BudgetMax = s.defaults.BudgetMax
	}
	s.entries[e.ID] = e
	id := e.ID
	s.mu.Unlock()

	s.flasher.Flash(string(s.domain))
	return id
}

// Remove deletes the entry; unknown ids are a silent no-op.
func (s *EntryStore) Remove(id string) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Update applies a partial field set through the conflict policy.
// Unknown ids are a silent no-op: callers routinely probe with stale ids
// after a reconciliation pass.
func (s *EntryStore) Update(id string, fields EntryFields, origin Origin) ApplyResult {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return ApplyResult{}
	}
	res := ApplyProtected(e, fields, origin)
	s.mu.Unlock()

	s.flasher.Flash(string(s.domain))
	return res
}

// ClearProtection is the explicit user unprotect action for an entry's
// field families.
func (s *EntryStore) ClearProtection(id string, dates, budget bool) {
	s.mu.Lock()
	if e, ok := s.entries[id]; ok {
		ClearProtection(e, dates, budget)
	}
	s.mu.Unlock()
}

// UpdateBatch hands the caller a deep copy of every entry and replaces
// the whole collection with the returned set. Used by the topology
// reconciler for multi-entry rewrites.
func (s *EntryStore) UpdateBatch(updater func(prev []*Entry) []*Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		prev = append(prev, e.Clone())
	}
	sortByCity(prev)

	next := updater(prev)
	s.entries = make(map[string]*Entry, len(next))
	for _, e := range next {
		if e == nil {
			continue
		}
		cp := e.Clone()
		if cp.ID == "" {
			cp.ID = uuid.NewString()
		}
		s.entries[cp.ID] = cp
	}
}

func (s *EntryStore) ByID(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	return e.Clone(), true
}

func (s *EntryStore) ByCity(city string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.findByCity(city); e != nil {
		return e.Clone(), true
	}
	return nil, false
}

func (s *EntryStore) ByDestinationID(destinationID string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.DestinationID == destinationID {
			return e.Clone(), true
		}
	}
	return nil, false
}

// Active returns deep copies of all live entries, ordered by city.
func (s *EntryStore) Active() []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Clone())
	}
	sortByCity(out)
	return out
}

func (s *EntryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// DefaultForNewEntry computes what a newly added sibling should start
// from: the shared preset of the existing entries when every one of them
// still carries an unmodified budget, otherwise the store default.
func (s *EntryStore) DefaultForNewEntry() Defaults {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.entries) == 0 {
		return s.defaults
	}
	var shared *Entry
	for _, e := range s.entries {
		if e.UserModifiedBudget {
			return s.defaults
		}
		if shared == nil {
			shared = e
			continue
		}
		if e.BudgetPreset != shared.BudgetPreset {
			return s.defaults
		}
	}
	return Defaults{
		BudgetPreset: shared.BudgetPreset,
		BudgetMin:    shared.BudgetMin,
		BudgetMax:    shared.BudgetMax,
	}
}

func (s *EntryStore) findByCity(city string) *Entry {
	key := NormalizeCity(city)
	for _, e := range s.entries {
		if NormalizeCity(e.City) == key {
			return e
		}
	}
	return nil
}

func sortByCity(entries []*Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return NormalizeCity(entries[i].City) < NormalizeCity(entries[j].City)
	})
}
