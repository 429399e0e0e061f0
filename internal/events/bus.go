package events

import "sync"

// Handler receives every published event and type-switches on the ones
// it cares about.
type Handler func(Event)

// Bus is the sole communication path between chat, widgets and the
// memory stores. Dispatch is synchronous, reentrant and depth-first: a
// handler may publish, and the nested publish runs to completion before
// control returns to the outer emitter. Feedback loops are bounded by
// provenance tags on the events themselves, not by the bus.
//
// The bus is constructed and injected explicitly; there is no package
// singleton.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(h Handler) {
	if h == nil {
		return
	}
	b.mu.Lock()
	b.handlers = append(b.handlers, h)
	b.mu.Unlock()
}

// Publish dispatches the event to every subscriber in subscription
// order and returns only after all of them (and anything they published
// in turn) have run.
func (b *Bus) Publish(e Event) {
	if e == nil {
		return
	}
	b.mu.RLock()
	handlers := b.handlers
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// Flash lets the bus stand in as the stores' Flasher.
func (b *Bus) Flash(tab string) {
	b.Publish(TabFlash{Tab: tab})
}
