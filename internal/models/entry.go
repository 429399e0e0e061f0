package models

import "time"

// Origin distinguishes a direct user edit from an automated propagation.
type Origin string

const (
	OriginDirect Origin = "direct"
	OriginAuto   Origin = "auto"
)

type BudgetPreset string

const (
	BudgetLow      BudgetPreset = "budget"
	BudgetModerate BudgetPreset = "moderate"
	BudgetPremium  BudgetPreset = "premium"
)

// Defaults are the store-wide values a fresh entry starts from.
type Defaults struct {
	BudgetPreset BudgetPreset `json:"budgetPreset"`
	BudgetMin    int          `json:"budgetMin"`
	BudgetMax    int          `json:"budgetMax"`
}

// Entry is a destination-scoped record held by the accommodation and
// activity stores. Types carries lodging types or activity categories
// depending on the owning store.
//
// UserModifiedDates and UserModifiedBudget are monotonic under
// automation: only a direct edit sets them, no automated write may set,
// clear, or bypass them, and clearing is an explicit unprotect action.
type Entry struct {
	ID                    string       `json:"id"`
	DestinationID         string       `json:"destinationId"`
	City                  string       `json:"city"`
	DateFrom              string       `json:"dateFrom"`
	DateTo                string       `json:"dateTo"`
	BudgetPreset          BudgetPreset `json:"budgetPreset"`
	BudgetMin             int          `json:"budgetMin"`
	BudgetMax             int          `json:"budgetMax"`
	Types                 []string     `json:"types"`
	Notes                 string       `json:"notes"`
	UserModifiedDates     bool         `json:"userModifiedDates"`
	UserModifiedBudget    bool         `json:"userModifiedBudget"`
	SyncedFromDestination bool         `json:"syncedFromDestination"`
	SyncedAt              time.Time    `json:"syncedAt"`
}

// Clone returns a deep copy so store reads never alias internal state.
func (e *Entry) Clone() *Entry {
	cp := *e
	if e.Types != nil {
		cp.Types = append([]string(nil), e.Types...)
	}
	return &cp
}

// EntryFields is a partial update: nil pointers (and a nil Types slice)
// mean "leave the field alone".
type EntryFields struct {
	DateFrom     *string       `json:"dateFrom,omitempty"`
	DateTo       *string       `json:"dateTo,omitempty"`
	BudgetPreset *BudgetPreset `json:"budgetPreset,omitempty"`
	BudgetMin    *int          `json:"budgetMin,omitempty"`
	BudgetMax    *int          `json:"budgetMax,omitempty"`
	Types        []string      `json:"types,omitempty"`
	Notes        *string       `json:"notes,omitempty"`
}

func (f EntryFields) TouchesDates() bool {
	return f.DateFrom != nil || f.DateTo != nil
}

func (f EntryFields) TouchesBudget() bool {
	return f.BudgetPreset != nil || f.BudgetMin != nil || f.BudgetMax != nil
}

func (f EntryFields) IsZero() bool {
	return !f.TouchesDates() && !f.TouchesBudget() && f.Types == nil && f.Notes == nil
}
