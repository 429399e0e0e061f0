package models

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// WidgetInteraction is an append-only observation of a user gesture.
// It is never authoritative for trip state and never synchronized; it
// exists so the assistant can reconstruct recent user intent.
type WidgetInteraction struct {
	ID              string         `json:"id"`
	Timestamp       time.Time      `json:"timestamp"`
	WidgetType      string         `json:"widgetType"`
	InteractionType string         `json:"interactionType"`
	Data            map[string]any `json:"data,omitempty"`
	Summary         string         `json:"summary"`
}

// InteractionLog keeps the most recent maxLen interactions.
type InteractionLog struct {
	mu     sync.RWMutex
	items  []WidgetInteraction
	maxLen int
}

func NewInteractionLog(maxLen int) *InteractionLog {
	if maxLen <= 0 {
		maxLen = 50
	}
	return &InteractionLog{maxLen: maxLen}
}

// Append stores the interaction, stamping id and timestamp when absent,
// and drops the oldest item once the bound is exceeded.
func (l *InteractionLog) Append(it WidgetInteraction) WidgetInteraction {
	l.mu.Lock()
	defer l.mu.Unlock()

	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	if it.Timestamp.IsZero() {
		it.Timestamp = time.Now()
	}
	l.items = append(l.items, it)
	if len(l.items) > l.maxLen {
		l.items = l.items[len(l.items)-l.maxLen:]
	}
	return it
}

// Recent returns up to n interactions, newest first.
func (l *InteractionLog) Recent(n int) []WidgetInteraction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.items) {
		n = len(l.items)
	}
	out := make([]WidgetInteraction, 0, n)
	for i := len(l.items) - 1; i >= len(l.items)-n; i-- {
		out = append(out, l.items[i])
	}
	return out
}

func (l *InteractionLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

func (l *InteractionLog) Snapshot() []WidgetInteraction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]WidgetInteraction(nil), l.items...)
}

func (l *InteractionLog) Restore(items []WidgetInteraction) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(items) > l.maxLen {
		items = items[len(items)-l.maxLen:]
	}
	l.items = append([]WidgetInteraction(nil), items...)
}
