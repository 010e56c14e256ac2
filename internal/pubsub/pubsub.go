// Package pubsub is the in-process signal bus between widgets on the same
// page. Delivery is synchronous and same-process only. The contact form
// publishes here so the enquiry manager can refresh without waiting for its
// next poll.
package pubsub

import (
	"sort"
	"sync"
)

// Topics published on the site bus.
const (
	TopicEnquiriesUpdated = "enquiries.updated"
)

// Bus delivers published topics to subscribers synchronously, in
// subscription order.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func()
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{subs: make(map[string]map[int]func())}
}

// Subscribe registers fn for a topic and returns an unsubscribe function.
func (b *Bus) Subscribe(topic string, fn func()) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[topic] == nil {
		b.subs[topic] = make(map[int]func())
	}
	id := b.nextID
	b.nextID++
	b.subs[topic][id] = fn

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[topic], id)
	}
}

// Publish invokes every subscriber for the topic before returning.
func (b *Bus) Publish(topic string) {
	b.mu.RLock()
	ids := make([]int, 0, len(b.subs[topic]))
	for id := range b.subs[topic] {
		ids = append(ids, id)
	}
	// Map order is random; deliver in subscription order.
	sort.Ints(ids)
	handlers := make([]func(), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, b.subs[topic][id])
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn()
	}
}
