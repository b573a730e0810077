// Package events fans out store-change notifications to view-layer
// connections. Stores publish after every committed mutation; the view
// re-reads the store it cares about when it sees the matching event type.
package events

import (
	"sync"
	"time"
)

// Event types published by the stores.
const (
	TypeSessionChanged   = "session_changed"
	TypeBasketChanged    = "basket_changed"
	TypeFavoritesChanged = "favorites_changed"
	TypeOrdersChanged    = "orders_changed"
	TypeCatalogChanged   = "catalog_changed"
)

// Event is a store-change notification. Payload is a small summary, not the
// full store state.
type Event struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub is an in-process registry of event subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new subscriber and returns its channel plus an
// unsubscribe func. The channel is closed on unsubscribe.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, unsubscribe
}

// Publish delivers an event to every subscriber. A subscriber that cannot
// keep up has the event dropped rather than blocking the publishing store.
// Safe to call on a nil hub.
func (h *Hub) Publish(eventType string, payload interface{}) {
	if h == nil {
		return
	}
	evt := Event{Type: eventType, Payload: payload, Timestamp: time.Now()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- evt:
		default:
		}
	}
}
