package services

import (
	"strings"

	"github.com/spf13/cast"

	"tripsync/internal/events"
	"tripsync/internal/models"
)

// Instruction is the structured form a chat instruction arrives in
// after intent classification. TargetCity is a city name, "all", or
// empty for an implicit single-entry target. Fields is the loose
// payload the classifier produced.
type Instruction struct {
	Store      models.Source  `json:"store"`
	TargetCity string         `json:"targetCity"`
	Fields     map[string]any `json:"fields"`
}

// TargetOutcome reports which entries an instruction resolved to. A
// targeting miss is non-fatal: NotFound carries the attempted name and
// nothing was mutated.
type TargetOutcome struct {
	Store         models.Source `json:"store"`
	MatchedCities []string      `json:"matchedCities,omitempty"`
	Applied       []string      `json:"applied,omitempty"`
	Skipped       []string      `json:"skipped,omitempty"`
	NotFound      bool          `json:"notFound"`
	AttemptedCity string        `json:"attemptedCity,omitempty"`
}

// TargetingResolver maps an instruction onto zero, one or many store
// entries. A city-targeted chat edit is user intent: it goes through
// the conflict policy with origin=direct and sets protection flags
// exactly as a widget edit would.
type TargetingResolver struct {
	bus    *events.Bus
	stores map[models.Source]*models.EntryStore
}

func NewTargetingResolver(bus *events.Bus, stores map[models.Source]*models.EntryStore) *TargetingResolver {
	return &TargetingResolver{bus: bus, stores: stores}
}

// Apply resolves and executes one instruction. All fields of one
// instruction land in a single Update call per entry, so synchronous
// observers see one consistent transition.
func (r *TargetingResolver) Apply(inst Instruction) TargetOutcome {
	outcome := TargetOutcome{Store: inst.Store}

	store, ok := r.stores[inst.Store]
	if !ok {
		outcome.NotFound = true
		outcome.AttemptedCity = inst.TargetCity
		return outcome
	}

	fields := FieldsFromMap(inst.Fields)
	matched := resolveTargets(store, inst.TargetCity)
	if len(matched) == 0 {
		outcome.NotFound = true
		outcome.AttemptedCity = strings.TrimSpace(inst.TargetCity)
		return outcome
	}

	for _, entry := range matched {
		res := store.Update(entry.ID, fields, models.OriginDirect)
		outcome.MatchedCities = append(outcome.MatchedCities, entry.City)
		outcome.Applied = append(outcome.Applied, res.Applied...)
		outcome.Skipped = append(outcome.Skipped, res.Skipped...)
		r.bus.Publish(events.EntryUpdated{
			Surface: store.Domain(),
			City:    entry.City,
			Origin:  models.OriginDirect,
			Applied: res.Applied,
			Skipped: res.Skipped,
		})
	}
	return outcome
}

// resolveTargets implements the targeting ladder: implicit single
// entry, "all", then exact case-insensitive city match. It never
// fuzzy-guesses a different city.
func resolveTargets(store *models.EntryStore, targetCity string) []*models.Entry {
	active := store.Active()
	trimmed := strings.TrimSpace(targetCity)

	switch {
	case trimmed == "":
		if len(active) == 1 {
			return active
		}
		return nil
	case strings.EqualFold(trimmed, "all"):
		return active
	default:
		key := models.NormalizeCity(trimmed)
		for _, e := range active {
			if models.NormalizeCity(e.City) == key {
				return []*models.Entry{e}
			}
		}
		return nil
	}
}

// FieldsFromMap coerces the classifier's loose payload into the typed
// partial field set. Unknown keys are dropped.
func FieldsFromMap(m map[string]any) models.EntryFields {
	var f models.EntryFields
	for k, v := range m {
		switch k {
		case "dateFrom":
			s := cast.ToString(v)
			f.DateFrom = &s
		case "dateTo":
			s := cast.ToString(v)
			f.DateTo = &s
		case "budgetPreset":
			p := models.BudgetPreset(cast.ToString(v))
			f.BudgetPreset = &p
		case "budgetMin":
			n := cast.ToInt(v)
			f.BudgetMin = &n
		case "budgetMax":
			n := cast.ToInt(v)
			f.BudgetMax = &n
		case "types":
			f.Types = cast.ToStringSlice(v)
		case "notes":
			s := cast.ToString(v)
			f.Notes = &s
		}
	}
	return f
}
