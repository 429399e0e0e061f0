package models

// SnapshotVersion is the current persisted format version.
// v1: flat entry lists without protection flags or version field.
// v2: explicit version, protection flags on entries.
// v3: adds traveler group, widget interaction log and store defaults.
const SnapshotVersion = 3

type StoreSnapshot struct {
	Entries  []Entry  `json:"entries"`
	Defaults Defaults `json:"defaults"`
}

type SnapshotData struct {
	Accommodation StoreSnapshot       `json:"accommodation"`
	Activity      StoreSnapshot       `json:"activity"`
	TripType      TripType            `json:"tripType"`
	Legs          []FlightLeg         `json:"legs"`
	Travelers     TravelerGroup       `json:"travelers"`
	Interactions  []WidgetInteraction `json:"interactions"`
}

// Snapshot is the versioned persistence envelope for the whole engine.
type Snapshot struct {
	Version int          `json:"version"`
	Data    SnapshotData `json:"data"`
}

// EntryV1 is the v1 on-disk entry: no protection flags, budget as a
// bare preset string. It is a JSON subset of Entry, so v1 files
// unmarshal losslessly into this struct.
type EntryV1 struct {
	ID            string   `json:"id"`
	DestinationID string   `json:"destinationId"`
	City          string   `json:"city"`
	DateFrom      string   `json:"dateFrom"`
	DateTo        string   `json:"dateTo"`
	BudgetPreset  string   `json:"budgetPreset"`
	Types         []string `json:"types"`
	Notes         string   `json:"notes"`
}

// SnapshotV1 is the unversioned v1 envelope.
type SnapshotV1 struct {
	Accommodation []EntryV1   `json:"accommodation"`
	Activity      []EntryV1   `json:"activity"`
	TripType      TripType    `json:"tripType"`
	Legs          []FlightLeg `json:"legs"`
}

// SnapshotDataV2 lacks travelers, interactions and defaults.
type SnapshotDataV2 struct {
	Accommodation []Entry     `json:"accommodation"`
	Activity      []Entry     `json:"activity"`
	TripType      TripType    `json:"tripType"`
	Legs          []FlightLeg `json:"legs"`
}

type SnapshotV2 struct {
	Version int            `json:"version"`
	Data    SnapshotDataV2 `json:"data"`
}
