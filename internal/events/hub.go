// Package events implements the fire-and-forget push channel for live
// clients. A Hub fans events out to per-user subscriptions plus one global
// stream for room-state changes.
//
// The hub is not part of the authoritative record: sends are non-blocking
// and events are dropped when a subscriber falls behind, so clients must be
// able to recover by re-querying the read API. The hub is an explicit handle
// created at process start and injected into the workflow engine; nothing in
// the business logic reaches for a package-level singleton.
package events

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Event names pushed to subscribers.
const (
	// EventNotification delivers a freshly created notification to its
	// addressee's channel.
	EventNotification = "notification"
	// EventRoomsChanged signals that room state changed somewhere; it carries
	// no payload and consumers re-fetch.
	EventRoomsChanged = "rooms_changed"
)

// Event is a single message pushed to a subscriber.
type Event struct {
	Name    string `json:"name"`
	Payload any    `json:"payload,omitempty"`
}

// subscriber is one live connection: its own buffered channel plus the user
// it authenticated as.
type subscriber struct {
	userID string
	ch     chan Event
}

// Hub routes events to connected subscribers. Safe for concurrent use.
type Hub struct {
	mu   sync.RWMutex
	subs map[*subscriber]struct{}

	buffer int
	closed bool
}

// NewHub constructs a Hub whose subscriber channels buffer up to buffer
// events before drops begin.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		subs:   make(map[*subscriber]struct{}),
		buffer: buffer,
	}
}

// Subscribe registers a live connection for userID and returns the event
// channel plus a cancel function. The cancel function is idempotent and must
// be called when the connection ends.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	s := &subscriber{userID: userID, ch: make(chan Event, h.buffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}
	}
	h.subs[s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			if _, ok := h.subs[s]; ok {
				delete(h.subs, s)
				close(s.ch)
			}
			h.mu.Unlock()
		})
	}
	return s.ch, cancel
}

// NotifyUser pushes an event to every live connection of one user.
// Non-blocking: slow subscribers lose the event.
func (h *Hub) NotifyUser(userID string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		if s.userID != userID {
			continue
		}
		h.send(s, ev)
	}
}

// Broadcast pushes an event to every live connection regardless of user.
func (h *Hub) Broadcast(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		h.send(s, ev)
	}
}

// RoomsChanged broadcasts the global re-sync signal.
func (h *Hub) RoomsChanged() {
	h.Broadcast(Event{Name: EventRoomsChanged})
}

// Len returns the number of live subscriptions (used by tests and metrics).
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close tears down the hub, closing every subscriber channel. Subsequent
// sends are no-ops; subsequent Subscribe calls return a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		delete(h.subs, s)
		close(s.ch)
	}
}

// send delivers without blocking; drops when the subscriber buffer is full.
func (h *Hub) send(s *subscriber, ev Event) {
	select {
	case s.ch <- ev:
	default:
		log.Debug().
			Str("user_id", s.userID).
			Str("event", ev.Name).
			Msg("event dropped: slow subscriber")
	}
}
