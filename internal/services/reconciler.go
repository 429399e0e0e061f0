package services

import (
	"tripsync/internal/events"
	"tripsync/internal/models"
)

// ReconcileOutcome summarizes one topology pass.
type ReconcileOutcome struct {
	TripType       models.TripType `json:"tripType"`
	RequiredCities []string        `json:"requiredCities"`
	Removed        []string        `json:"removed,omitempty"`
	Added          []string        `json:"added,omitempty"`
}

// Reconciler recomputes the required destination set when the trip
// type or leg count changes. Entries for cities that persist across
// the change are left completely untouched, fields and protection
// flags included, which is what makes a type switch-and-revert
// lossless for a surviving city. Entries whose destination vanished
// are discarded permanently.
type Reconciler struct {
	bus            *events.Bus
	sync           *SyncService
	flights        *models.FlightStore
	accommodations *models.EntryStore
	activities     *models.EntryStore
}

func NewReconciler(bus *events.Bus, sync *SyncService, flights *models.FlightStore, accommodations, activities *models.EntryStore) *Reconciler {
	return &Reconciler{
		bus:            bus,
		sync:           sync,
		flights:        flights,
		accommodations: accommodations,
		activities:     activities,
	}
}

// ApplyTopology installs the new trip type and leg list, diffs the
// required destinations against both entry stores, removes vanished
// entries and adds missing ones through the sync service so new
// entries inherit propagated defaults.
func (r *Reconciler) ApplyTopology(next models.TripType, legs []models.FlightLeg) ReconcileOutcome {
	prev := r.flights.SetTopology(next, legs)

	required := requiredArrivals(next, r.flights.Legs())
	outcome := ReconcileOutcome{TripType: next}
	requiredKeys := make(map[string]struct{}, len(required))
	for _, ap := range required {
		requiredKeys[models.NormalizeCity(ap.City)] = struct{}{}
		outcome.RequiredCities = append(outcome.RequiredCities, ap.City)
	}

	for _, store := range []*models.EntryStore{r.accommodations, r.activities} {
		outcome.Removed = append(outcome.Removed, r.dropVanished(store, requiredKeys)...)
	}

	for _, ap := range required {
		targets := Targets{}
		if _, ok := r.accommodations.ByCity(ap.City); !ok {
			targets.Accommodation = true
		}
		if _, ok := r.activities.ByCity(ap.City); !ok {
			targets.Activity = true
		}
		if !targets.Accommodation && !targets.Activity {
			continue
		}
		d := r.sync.NormalizeFromFlight(ap, "")
		r.sync.Propagate(d, targets)
		outcome.Added = append(outcome.Added, ap.City)
	}

	r.bus.Publish(events.TripTypeChanged{Previous: prev, Next: next})
	return outcome
}

func (r *Reconciler) dropVanished(store *models.EntryStore, required map[string]struct{}) []string {
	var removed []string
	store.UpdateBatch(func(prev []*models.Entry) []*models.Entry {
		kept := prev[:0]
		for _, e := range prev {
			if _, ok := required[models.NormalizeCity(e.City)]; ok {
				kept = append(kept, e)
				continue
			}
			removed = append(removed, e.City)
		}
		return kept
	})
	for _, city := range removed {
		r.bus.Publish(events.EntryRemoved{Surface: store.Domain(), City: city})
	}
	return removed
}

// requiredArrivals derives the destination set a topology needs: one
// non-origin arrival for one-way and round trips, one per distinct
// non-origin arrival city for multi-destination trips. Origin legs are
// never materialized as destinations.
func requiredArrivals(t models.TripType, legs []*models.FlightLeg) []models.Airport {
	if len(legs) == 0 {
		return nil
	}
	originKey := models.NormalizeCity(legs[0].Origin.City)

	var out []models.Airport
	seen := make(map[string]struct{})
	for _, leg := range legs {
		key := models.NormalizeCity(leg.Arrival.City)
		if key == "" || key == originKey {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, leg.Arrival)
		if t != models.TripMulti {
			break
		}
	}
	return out
}
