package services

import (
	"time"

	"tripsync/internal/events"
	"tripsync/internal/models"
	"tripsync/internal/structures"
)

type TripServiceInterface interface {
	FinalizeFlight(leg models.FlightLeg, isMultiCity bool) SyncOutcome
	ApplyInstruction(inst Instruction) TargetOutcome
	DirectEdit(store models.Source, city string, fields models.EntryFields) (models.ApplyResult, bool)
	ClearProtection(store models.Source, city string, dates, budget bool) bool
	BlockSync(target models.Source, destinationID string)
	UnblockSync(target models.Source, destinationID string)
	SyncStatus(target models.Source, destinationID string) SyncStatus
	SetTopology(t models.TripType, legs []models.FlightLeg) ReconcileOutcome
	UpdateTravelers(fields models.TravelerFields) models.TravelerGroup
	LogInteraction(it models.WidgetInteraction) models.WidgetInteraction
	RecentInteractions(n int) []models.WidgetInteraction
	State(store models.Source) (any, bool)
	States() map[string]any
	EntryCount(store models.Source) int
	TripType() models.TripType
	GetSnapshot() *models.Snapshot
	PutSnapshot(snap *models.Snapshot)
}

// TripService is the composition point of the engine: it owns the
// stores, wires the bus subscriptions that realize cross-surface
// propagation, and exposes the narrow surface the HTTP rim and the
// persistence layer use. No store holds a reference to another; every
// cross-store effect travels over the bus.
type TripService struct {
	bus            *events.Bus
	sync           *SyncService
	resolver       *TargetingResolver
	reconciler     *Reconciler
	accommodations *models.EntryStore
	activities     *models.EntryStore
	flights        *models.FlightStore
	travelers      *models.TravelerStore
	interactions   *models.InteractionLog
}

func NewTripService(conf *structures.Config, bus *events.Bus) TripServiceInterface {
	defaults := models.Defaults{
		BudgetPreset: models.BudgetPreset(conf.Trip.DefaultBudget),
		BudgetMin:    conf.Trip.DefaultBudgetMin,
		BudgetMax:    conf.Trip.DefaultBudgetMax,
	}
	if defaults.BudgetPreset == "" {
		defaults.BudgetPreset = models.BudgetModerate
	}

	accommodations := models.NewEntryStore(models.SourceAccommodation, defaults, bus)
	activities := models.NewEntryStore(models.SourceActivity, defaults, bus)
	flights := models.NewFlightStore(bus)
	travelers := models.NewTravelerStore(bus)
	syncSvc := NewSyncService(bus)

	ts := &TripService{
		bus:            bus,
		sync:           syncSvc,
		accommodations: accommodations,
		activities:     activities,
		flights:        flights,
		travelers:      travelers,
		interactions:   models.NewInteractionLog(conf.Trip.MaxInteractions),
	}
	ts.resolver = NewTargetingResolver(bus, map[models.Source]*models.EntryStore{
		models.SourceAccommodation: accommodations,
		models.SourceActivity:      activities,
	})
	ts.reconciler = NewReconciler(bus, syncSvc, flights, accommodations, activities)

	bus.Subscribe(ts.handleEvent)
	return ts
}

// handleEvent is the engine's internal listener: it plays the role of
// the sync service consumer for FlightFinalized and of each store's
// consumer for propagation events. Dispatch is depth-first, so
// everything triggered here completes before the original Publish
// returns.
func (ts *TripService) handleEvent(e events.Event) {
	switch ev := e.(type) {
	case events.CityPropagated:
		ts.applyCityPropagated(ev)
	case events.DatesPropagated:
		ts.applyDatesPropagated(ev)
	}
}

func (ts *TripService) applyCityPropagated(ev events.CityPropagated) {
	store := ts.storeFor(ev.To)
	if store == nil || ev.From == store.Domain() {
		return
	}
	d := ev.Destination
	if existing, ok := store.ByCity(d.City); ok {
		// Idempotent: the city is already materialized. Rebind the
		// entry to the fresh destination without touching any field
		// the user may own.
		store.UpdateBatch(func(prev []*models.Entry) []*models.Entry {
			for _, e := range prev {
				if e.ID == existing.ID {
					e.DestinationID = d.ID
					e.SyncedAt = d.SyncedAt
				}
			}
			return prev
		})
		return
	}

	def := store.DefaultForNewEntry()
	store.Add(&models.Entry{
		DestinationID:         d.ID,
		City:                  d.City,
		BudgetPreset:          def.BudgetPreset,
		BudgetMin:             def.BudgetMin,
		BudgetMax:             def.BudgetMax,
		SyncedFromDestination: true,
		SyncedAt:              d.SyncedAt,
	})
	ts.bus.Publish(events.EntryUpserted{
		Surface: store.Domain(),
		City:    d.City,
		Origin:  models.OriginAuto,
	})
}

func (ts *TripService) applyDatesPropagated(ev events.DatesPropagated) {
	store := ts.storeFor(ev.To)
	if store == nil || ev.From == store.Domain() {
		return
	}
	entry, ok := store.ByCity(ev.Destination.City)
	if !ok {
		return
	}
	fields := models.EntryFields{}
	if ev.DateFrom != "" {
		fields.DateFrom = &ev.DateFrom
	}
	if ev.DateTo != "" {
		fields.DateTo = &ev.DateTo
	}
	res := store.Update(entry.ID, fields, models.OriginAuto)
	ts.bus.Publish(events.EntryUpdated{
		Surface: store.Domain(),
		City:    entry.City,
		Origin:  models.OriginAuto,
		Applied: res.Applied,
		Skipped: res.Skipped,
	})
}

// FinalizeFlight is the flight surface's push: the leg is recorded,
// its arrival is normalized into a destination and propagated into the
// dependent stores, and its dates follow with origin=auto.
func (ts *TripService) FinalizeFlight(leg models.FlightLeg, isMultiCity bool) SyncOutcome {
	leg.ID = ts.flights.UpsertLeg(leg)

	d := ts.sync.NormalizeFromFlight(leg.Arrival, leg.ID)
	ts.bus.Publish(events.FlightFinalized{
		LegID:       leg.ID,
		Destination: d,
		IsMultiCity: isMultiCity,
	})

	outcome := ts.sync.Propagate(d, AllTargets())
	ts.sync.PropagateDates(d, leg.DepartDate, leg.ReturnDate, AllTargets())
	return outcome
}

func (ts *TripService) ApplyInstruction(inst Instruction) TargetOutcome {
	return ts.resolver.Apply(inst)
}

// DirectEdit is the widget edit path: city-addressed, origin=direct.
// On the flight surface only the travel window is editable; the edit
// then follows the normal automated route into the other stores.
func (ts *TripService) DirectEdit(store models.Source, city string, fields models.EntryFields) (models.ApplyResult, bool) {
	if store == models.SourceFlight {
		return ts.editLegDates(city, fields)
	}
	s := ts.storeFor(store)
	if s == nil {
		return models.ApplyResult{}, false
	}
	entry, ok := s.ByCity(city)
	if !ok {
		return models.ApplyResult{}, false
	}
	res := s.Update(entry.ID, fields, models.OriginDirect)
	ts.bus.Publish(events.EntryUpdated{
		Surface: s.Domain(),
		City:    entry.City,
		Origin:  models.OriginDirect,
		Applied: res.Applied,
		Skipped: res.Skipped,
	})
	return res, true
}

func (ts *TripService) editLegDates(city string, fields models.EntryFields) (models.ApplyResult, bool) {
	leg, ok := ts.flights.LegByArrivalCity(city)
	if !ok {
		return models.ApplyResult{}, false
	}

	var res models.ApplyResult
	var dateFrom, dateTo string
	if fields.DateFrom != nil {
		dateFrom = *fields.DateFrom
		res.Applied = append(res.Applied, "dateFrom")
	}
	if fields.DateTo != nil {
		dateTo = *fields.DateTo
		res.Applied = append(res.Applied, "dateTo")
	}
	if len(res.Applied) == 0 {
		return res, true
	}

	ts.flights.UpdateLegDates(leg.ID, dateFrom, dateTo, models.OriginDirect)
	ts.bus.Publish(events.EntryUpdated{
		Surface: models.SourceFlight,
		City:    leg.Arrival.City,
		Origin:  models.OriginDirect,
		Applied: res.Applied,
	})

	d := ts.sync.NormalizeFromFlight(leg.Arrival, leg.ID)
	ts.sync.PropagateDates(d, dateFrom, dateTo, AllTargets())
	return res, true
}

func (ts *TripService) ClearProtection(store models.Source, city string, dates, budget bool) bool {
	s := ts.storeFor(store)
	if s == nil {
		return false
	}
	entry, ok := s.ByCity(city)
	if !ok {
		return false
	}
	s.ClearProtection(entry.ID, dates, budget)
	return true
}

func (ts *TripService) BlockSync(target models.Source, destinationID string) {
	ts.sync.Block(target, destinationID)
}

func (ts *TripService) UnblockSync(target models.Source, destinationID string) {
	ts.sync.Unblock(target, destinationID)
}

func (ts *TripService) SyncStatus(target models.Source, destinationID string) SyncStatus {
	blocked := ts.sync.IsBlocked(target, destinationID)
	if s := ts.storeFor(target); s != nil {
		if entry, ok := s.ByDestinationID(destinationID); ok {
			source := models.SourceManual
			if entry.SyncedFromDestination {
				source = models.SourceFlight
			}
			return StatusFor(blocked, source, entry.SyncedAt)
		}
	}
	return StatusFor(blocked, models.SourceManual, time.Time{})
}

func (ts *TripService) SetTopology(t models.TripType, legs []models.FlightLeg) ReconcileOutcome {
	return ts.reconciler.ApplyTopology(t, legs)
}

func (ts *TripService) UpdateTravelers(fields models.TravelerFields) models.TravelerGroup {
	group := ts.travelers.Update(fields)
	ts.bus.Publish(events.TravelersChanged{Group: group})
	return group
}

func (ts *TripService) LogInteraction(it models.WidgetInteraction) models.WidgetInteraction {
	stored := ts.interactions.Append(it)
	ts.bus.Publish(events.WidgetInteractionLogged{Interaction: stored})
	return stored
}

func (ts *TripService) RecentInteractions(n int) []models.WidgetInteraction {
	return ts.interactions.Recent(n)
}

func (ts *TripService) State(store models.Source) (any, bool) {
	switch store {
	case models.SourceAccommodation:
		return ts.accommodations.SerializedState(), true
	case models.SourceActivity:
		return ts.activities.SerializedState(), true
	case models.SourceFlight:
		return ts.flights.SerializedState(), true
	default:
		return nil, false
	}
}

func (ts *TripService) States() map[string]any {
	return map[string]any{
		"accommodation": ts.accommodations.SerializedState(),
		"activity":      ts.activities.SerializedState(),
		"flights":       ts.flights.SerializedState(),
		"travelers":     ts.travelers.SerializedState(),
	}
}

func (ts *TripService) EntryCount(store models.Source) int {
	switch store {
	case models.SourceAccommodation:
		return ts.accommodations.Len()
	case models.SourceActivity:
		return ts.activities.Len()
	case models.SourceFlight:
		return ts.flights.Len()
	default:
		return 0
	}
}

func (ts *TripService) TripType() models.TripType {
	return ts.flights.TripType()
}

func (ts *TripService) GetSnapshot() *models.Snapshot {
	legs, tripType := ts.flights.Snapshot()
	accEntries := make([]models.Entry, 0, ts.accommodations.Len())
	for _, e := range ts.accommodations.Active() {
		accEntries = append(accEntries, *e)
	}
	actEntries := make([]models.Entry, 0, ts.activities.Len())
	for _, e := range ts.activities.Active() {
		actEntries = append(actEntries, *e)
	}
	return &models.Snapshot{
		Version: models.SnapshotVersion,
		Data: models.SnapshotData{
			Accommodation: models.StoreSnapshot{Entries: accEntries, Defaults: ts.accommodations.Defaults()},
			Activity:      models.StoreSnapshot{Entries: actEntries, Defaults: ts.activities.Defaults()},
			TripType:      tripType,
			Legs:          legs,
			Travelers:     ts.travelers.Group(),
			Interactions:  ts.interactions.Snapshot(),
		},
	}
}

func (ts *TripService) PutSnapshot(snap *models.Snapshot) {
	if snap == nil {
		return
	}
	restoreEntries := func(store *models.EntryStore, entries []models.Entry) {
		store.UpdateBatch(func([]*models.Entry) []*models.Entry {
			out := make([]*models.Entry, 0, len(entries))
			for i := range entries {
				out = append(out, &entries[i])
			}
			return out
		})
	}
	restoreEntries(ts.accommodations, snap.Data.Accommodation.Entries)
	restoreEntries(ts.activities, snap.Data.Activity.Entries)
	if snap.Data.Accommodation.Defaults.BudgetPreset != "" {
		ts.accommodations.SetDefaults(snap.Data.Accommodation.Defaults)
	}
	if snap.Data.Activity.Defaults.BudgetPreset != "" {
		ts.activities.SetDefaults(snap.Data.Activity.Defaults)
	}
	ts.flights.Restore(snap.Data.Legs, snap.Data.TripType)
	ts.travelers.Restore(snap.Data.Travelers)
	ts.interactions.Restore(snap.Data.Interactions)
}

func (ts *TripService) storeFor(source models.Source) *models.EntryStore {
	switch source {
	case models.SourceAccommodation:
		return ts.accommodations
	case models.SourceActivity:
		return ts.activities
	default:
		return nil
	}
}
