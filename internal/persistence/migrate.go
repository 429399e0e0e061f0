package persistence

import (
	json "github.com/goccy/go-json"

	"tripsync/internal/models"
	"tripsync/internal/providers"
)

type versionProbe struct {
	Version int `json:"version"`
}

// Migrate parses a stored snapshot and upgrades it one version step at
// a time until it reaches the current format. Unparseable input yields
// nil and the caller substitutes the compiled-in defaults. A version
// with no upgrade path defined is passed through best-effort with a
// warning, never an error.
func Migrate(data []byte, logger providers.Logger) *models.Snapshot {
	var probe versionProbe
	if err := json.Unmarshal(data, &probe); err != nil {
		logger.Warnf(providers.TypeApp, "Unparseable snapshot: %s", err)
		return nil
	}

	switch probe.Version {
	case 0:
		// v1 predates the version field.
		var v1 models.SnapshotV1
		if err := json.Unmarshal(data, &v1); err != nil {
			logger.Warnf(providers.TypeApp, "Unparseable v1 snapshot: %s", err)
			return nil
		}
		if v1.Accommodation == nil && v1.Activity == nil && v1.Legs == nil {
			logger.Warnf(providers.TypeApp, "Snapshot carries no recognizable data")
			return nil
		}
		logger.Warnf(providers.TypeApp, "Migrating snapshot v1 -> v%d", models.SnapshotVersion)
		return upgradeV2(upgradeV1(v1))

	case 2:
		var v2 models.SnapshotV2
		if err := json.Unmarshal(data, &v2); err != nil {
			logger.Warnf(providers.TypeApp, "Unparseable v2 snapshot: %s", err)
			return nil
		}
		logger.Warnf(providers.TypeApp, "Migrating snapshot v2 -> v%d", models.SnapshotVersion)
		return upgradeV2(v2.Data)

	case models.SnapshotVersion:
		var snap models.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			logger.Warnf(providers.TypeApp, "Unparseable snapshot: %s", err)
			return nil
		}
		return &snap

	default:
		// No upgrade path defined; read what the current shape can.
		logger.Warnf(providers.TypeApp, "No migration defined for snapshot v%d, loading best-effort", probe.Version)
		var snap models.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil
		}
		snap.Version = models.SnapshotVersion
		return &snap
	}
}

// upgradeV1 lifts v1 entries into the flagged v2 shape. Protection
// flags default to false: v1 could not distinguish user edits.
func upgradeV1(v1 models.SnapshotV1) models.SnapshotDataV2 {
	lift := func(in []models.EntryV1) []models.Entry {
		out := make([]models.Entry, 0, len(in))
		for _, e := range in {
			out = append(out, models.Entry{
				ID:            e.ID,
				DestinationID: e.DestinationID,
				City:          e.City,
				DateFrom:      e.DateFrom,
				DateTo:        e.DateTo,
				BudgetPreset:  models.BudgetPreset(e.BudgetPreset),
				Types:         e.Types,
				Notes:         e.Notes,
			})
		}
		return out
	}
	return models.SnapshotDataV2{
		Accommodation: lift(v1.Accommodation),
		Activity:      lift(v1.Activity),
		TripType:      v1.TripType,
		Legs:          v1.Legs,
	}
}

// upgradeV2 adds the traveler group, interaction log and defaults
// block introduced in v3.
func upgradeV2(v2 models.SnapshotDataV2) *models.Snapshot {
	return &models.Snapshot{
		Version: models.SnapshotVersion,
		Data: models.SnapshotData{
			Accommodation: models.StoreSnapshot{Entries: v2.Accommodation},
			Activity:      models.StoreSnapshot{Entries: v2.Activity},
			TripType:      v2.TripType,
			Legs:          v2.Legs,
			Travelers:     models.TravelerGroup{Adults: 1},
		},
	}
}
