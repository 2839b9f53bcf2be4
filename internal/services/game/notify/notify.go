// Package notify announces session state changes to interested listeners.
//
// Delivery is best effort: a slow subscriber misses events rather than
// stalling the writer.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Event says a session changed and should be re-read.
type Event struct {
	SessionID string    `json:"session_id"`
	Reason    string    `json:"reason"`
	Version   int64     `json:"version"`
	At        time.Time `json:"at"`
}

// ReasonDeleted is the reason of the last event a session ever emits.
const ReasonDeleted = "delete_session"

// Notifier receives state change signals.
type Notifier interface {
	SessionChanged(ctx context.Context, evt Event) error
}

// Multi fans an event out to several notifiers.
type Multi []Notifier

// SessionChanged calls every notifier and joins their errors.
func (m Multi) SessionChanged(ctx context.Context, evt Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.SessionChanged(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// subscriberBuffer is the per-subscriber channel capacity.
const subscriberBuffer = 8

// Hub is an in-process pub/sub keyed by session id.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan Event]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a listener for sessionID. The returned cancel func
// unregisters it and closes the channel.
func (h *Hub) Subscribe(sessionID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	h.mu.Lock()
	set, ok := h.subs[sessionID]
	if !ok {
		set = make(map[chan Event]struct{})
		h.subs[sessionID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[sessionID], ch)
			if len(h.subs[sessionID]) == 0 {
				delete(h.subs, sessionID)
			}
			close(ch)
		})
	}
}

// SessionChanged delivers evt to every subscriber without blocking.
func (h *Hub) SessionChanged(_ context.Context, evt Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[evt.SessionID] {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

// Subscribers counts listeners on sessionID.
func (h *Hub) Subscribers(sessionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[sessionID])
}
