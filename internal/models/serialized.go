package models

// EntrySummary is the LLM-consumable view of one entry: domain values
// only, no internal ids, timestamps or protection flags.
type EntrySummary struct {
	City         string       `json:"city"`
	DateFrom     string       `json:"dateFrom,omitempty"`
	DateTo       string       `json:"dateTo,omitempty"`
	BudgetPreset BudgetPreset `json:"budgetPreset"`
	BudgetMin    int          `json:"budgetMin"`
	BudgetMax    int          `json:"budgetMax"`
	Types        []string     `json:"types,omitempty"`
	Notes        string       `json:"notes,omitempty"`
}

type StoreState struct {
	TotalEntries  int                       `json:"totalEntries"`
	EntriesByCity map[string][]EntrySummary `json:"entriesByCity"`
	Defaults      Defaults                  `json:"defaults"`
}

// SerializedState builds the grounding summary the assistant reads.
func (s *EntryStore) SerializedState() StoreState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state := StoreState{
		TotalEntries:  len(s.entries),
		EntriesByCity: make(map[string][]EntrySummary, len(s.entries)),
		Defaults:      s.defaults,
	}
	for _, e := range s.entries {
		sum := EntrySummary{
			City:         e.City,
			DateFrom:     e.DateFrom,
			DateTo:       e.DateTo,
			BudgetPreset: e.BudgetPreset,
			BudgetMin:    e.BudgetMin,
			BudgetMax:    e.BudgetMax,
			Notes:        e.Notes,
		}
		if e.Types != nil {
			sum.Types = append([]string(nil), e.Types...)
		}
		state.EntriesByCity[e.City] = append(state.EntriesByCity[e.City], sum)
	}
	return state
}

type FlightState struct {
	TripType  TripType     `json:"tripType"`
	TotalLegs int          `json:"totalLegs"`
	Legs      []LegSummary `json:"legs"`
}

type LegSummary struct {
	From       string `json:"from"`
	To         string `json:"to"`
	DepartDate string `json:"departDate,omitempty"`
	ReturnDate string `json:"returnDate,omitempty"`
}

type TravelerState struct {
	Adults         int `json:"adults"`
	Children       int `json:"children"`
	Infants        int `json:"infants"`
	SuggestedRooms int `json:"suggestedRooms"`
}
