package api

import (
	"sync"

	"dutch-auction-lab/internal/domain"
)

// Subscription is one consumer's buffered event feed.
type Subscription struct {
	ch chan domain.Event
}

// C returns the receive side of the feed. It is closed on Unsubscribe.
func (s *Subscription) C() <-chan domain.Event { return s.ch }

// Hub fans engine events out to websocket subscribers. Broadcast never
// blocks; a subscriber whose buffer is full misses the event.
type Hub struct {
	mu   sync.RWMutex
	subs map[*Subscription]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a feed with the given buffer size.
func (h *Hub) Subscribe(buffer int) *Subscription {
	sub := &Subscription{ch: make(chan domain.Event, buffer)}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the feed and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscription) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	h.mu.Unlock()
	if ok {
		close(sub.ch)
	}
}

// Publish broadcasts an engine event to all subscribers.
func (h *Hub) Publish(e domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs {
		select {
		case sub.ch <- e:
		default:
		}
	}
}

var _ domain.EventSink = (*Hub)(nil)
