package events

import (
	"tripsync/internal/models"
)

// Event is a closed union: one struct per event name, tagged by the
// unexported marker method. Subscribers dispatch with an exhaustive
// type switch, so adding an event is a compile-time-checked change.
type Event interface {
	Topic() string
	isEvent()
}

// FlightFinalized is emitted by the flight surface when a leg's
// destination is settled.
type FlightFinalized struct {
	LegID       string
	Destination models.Destination
	IsMultiCity bool
}

func (FlightFinalized) Topic() string { return "destination:flightFinalized" }
func (FlightFinalized) isEvent()      {}

// CityPropagated carries a normalized destination from the sync service
// to one target store. From is the provenance tag: a store handler must
// ignore events whose From equals its own surface.
type CityPropagated struct {
	From        models.Source
	To          models.Source
	Destination models.Destination
}

func (CityPropagated) Topic() string { return "sync:cityPropagated" }
func (CityPropagated) isEvent()      {}

// DatesPropagated carries an automated travel-window change (typically
// a flight date edit) into a target store. Applied with origin=auto so
// protected dates are skipped, never overwritten.
type DatesPropagated struct {
	From        models.Source
	To          models.Source
	Destination models.Destination
	DateFrom    string
	DateTo      string
}

func (DatesPropagated) Topic() string { return "sync:datesPropagated" }
func (DatesPropagated) isEvent()      {}

// SyncBlocked reports a propagation attempt rejected by a user override.
type SyncBlocked struct {
	Widget        models.Source
	DestinationID string
	Reason        string
}

func (SyncBlocked) Topic() string { return "sync:blocked" }
func (SyncBlocked) isEvent()      {}

// EntryUpserted is emitted after a store gained an entry.
type EntryUpserted struct {
	Surface models.Source
	City    string
	Origin  models.Origin
}

func (EntryUpserted) Topic() string { return "entry:upserted" }
func (EntryUpserted) isEvent()      {}

// EntryUpdated is emitted after a gated field update; Applied and
// Skipped list field names the policy touched or protected.
type EntryUpdated struct {
	Surface models.Source
	City    string
	Origin  models.Origin
	Applied []string
	Skipped []string
}

func (e EntryUpdated) Topic() string { return string(e.Surface) + ":update" }
func (EntryUpdated) isEvent()        {}

// EntryRemoved is emitted when the topology reconciler drops an entry.
type EntryRemoved struct {
	Surface models.Source
	City    string
}

func (EntryRemoved) Topic() string { return "entry:removed" }
func (EntryRemoved) isEvent()      {}

// TabFlash is the UI-notification side effect of any store mutation.
type TabFlash struct {
	Tab string
}

func (TabFlash) Topic() string { return "tab:flash" }
func (TabFlash) isEvent()      {}

// TripTypeChanged is emitted after the reconciler rewrote the entry set.
type TripTypeChanged struct {
	Previous models.TripType
	Next     models.TripType
}

func (TripTypeChanged) Topic() string { return "trip:typeChanged" }
func (TripTypeChanged) isEvent()      {}

// TravelersChanged is emitted after a traveler group update.
type TravelersChanged struct {
	Group models.TravelerGroup
}

func (TravelersChanged) Topic() string { return "travelers:changed" }
func (TravelersChanged) isEvent()      {}

// WidgetInteractionLogged is observational; it is never synchronized.
type WidgetInteractionLogged struct {
	Interaction models.WidgetInteraction
}

func (WidgetInteractionLogged) Topic() string { return "widget:interaction" }
func (WidgetInteractionLogged) isEvent()      {}
