package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsync/internal/models"
)

func TestBus_Publish_SubscriptionOrder(t *testing.T) {
	b := NewBus()
	var order []string

	b.Subscribe(func(Event) { order = append(order, "first") })
	b.Subscribe(func(Event) { order = append(order, "second") })
	b.Subscribe(func(Event) { order = append(order, "third") })

	b.Publish(TabFlash{Tab: "accommodation"})

	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func TestBus_Publish_DepthFirstReentrancy(t *testing.T) {
	b := NewBus()
	var order []string

	b.Subscribe(func(e Event) {
		switch e.(type) {
		case EntryUpserted:
			order = append(order, "upserted:start")
			b.Publish(TabFlash{Tab: "accommodation"})
			order = append(order, "upserted:end")
		case TabFlash:
			order = append(order, "flash")
		}
	})

	b.Publish(EntryUpserted{Surface: models.SourceAccommodation, City: "Tokyo"})

	// The nested publish completes before the outer handler returns.
	assert.Equal(t, []string{"upserted:start", "flash", "upserted:end"}, order)
}

func TestBus_Publish_NilEventIgnored(t *testing.T) {
	b := NewBus()
	called := false
	b.Subscribe(func(Event) { called = true })

	b.Publish(nil)

	assert.False(t, called)
}

func TestBus_Subscribe_NilHandlerIgnored(t *testing.T) {
	b := NewBus()
	b.Subscribe(nil)

	// Must not panic.
	b.Publish(TabFlash{Tab: "activity"})
}

func TestBus_Flash_PublishesTabFlash(t *testing.T) {
	b := NewBus()
	var got []Event
	b.Subscribe(func(e Event) { got = append(got, e) })

	b.Flash("flight")

	require.Len(t, got, 1)
	flash, ok := got[0].(TabFlash)
	require.True(t, ok)
	assert.Equal(t, "flight", flash.Tab)
}

func TestEvent_Topics(t *testing.T) {
	assert.Equal(t, "destination:flightFinalized", FlightFinalized{}.Topic())
	assert.Equal(t, "sync:cityPropagated", CityPropagated{}.Topic())
	assert.Equal(t, "sync:blocked", SyncBlocked{}.Topic())
	assert.Equal(t, "accommodation:update", EntryUpdated{Surface: models.SourceAccommodation}.Topic())
	assert.Equal(t, "activity:update", EntryUpdated{Surface: models.SourceActivity}.Topic())
	assert.Equal(t, "tab:flash", TabFlash{}.Topic())
}
