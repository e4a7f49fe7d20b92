// Package events fans node events out to registered receivers. Every event
// carries the kind of component that raised it so receivers can subscribe
// to only the kinds they care about.
package events

import (
	"fmt"
	"strings"
	"sync"
)

// Event is a single message raised by a component of the node.
type Event struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Parse builds an event from a raw message. Messages are written in the
// form "kind: ..." and the kind is everything before the first colon. A
// message without a kind is given the kind "node".
func Parse(msg string) Event {
	kind, _, found := strings.Cut(msg, ":")
	kind = strings.TrimSpace(kind)
	if !found || kind == "" || strings.ContainsAny(kind, " \t") {
		kind = "node"
	}

	return Event{Kind: kind, Message: msg}
}

// =============================================================================

// receiver is a registered channel and the kinds it accepts. An empty set
// of kinds accepts everything.
type receiver struct {
	ch    chan Event
	kinds map[string]bool
}

func (r receiver) accepts(kind string) bool {
	return len(r.kinds) == 0 || r.kinds[kind]
}

// Events maintains the set of receivers keyed by a unique id.
type Events struct {
	m  map[string]receiver
	mu sync.RWMutex
}

// New constructs an Events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]receiver),
	}
}

// Shutdown closes and removes every receiver.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, r := range evt.m {
		delete(evt.m, id)
		close(r.ch)
	}
}

// Acquire registers a receiver for the id that only gets events of the
// specified kinds, or every event when no kinds are given. Acquiring an id
// that is already registered returns the existing channel and keeps its
// original kinds.
func (evt *Events) Acquire(id string, kinds ...string) <-chan Event {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if r, exists := evt.m[id]; exists {
		return r.ch
	}

	// A message is dropped when the receiver is not ready, so the buffer
	// has to cover a slow websocket write.
	const messageBuffer = 100

	r := receiver{
		ch:    make(chan Event, messageBuffer),
		kinds: make(map[string]bool),
	}
	for _, k := range kinds {
		if k = strings.TrimSpace(k); k != "" {
			r.kinds[k] = true
		}
	}

	evt.m[id] = r
	return r.ch
}

// Release closes and removes the receiver for the id.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	r, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(r.ch)
	return nil
}

// Count returns the number of registered receivers.
func (evt *Events) Count() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Send parses the raw message and publishes it.
func (evt *Events) Send(msg string) {
	evt.Publish(Parse(msg))
}

// Publish delivers the event to every receiver that accepts its kind. It
// never blocks on a receiver that is full.
func (evt *Events) Publish(e Event) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, r := range evt.m {
		if !r.accepts(e.Kind) {
			continue
		}

		select {
		case r.ch <- e:
		default:
		}
	}
}
