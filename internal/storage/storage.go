// Package storage provides the small persistent key-value store the site
// components use for browser-local state: the anonymous visitor identity and
// the legacy enquiry cache. Callers must tolerate every operation failing:
// an unavailable store degrades features, it never breaks the page.
package storage

import "sync"

// Store is a namespaced string key-value store.
type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Keys used across the site. Namespaced so a shared store can host other
// tenants without collisions.
const (
	KeyVisitorID    = "pawsteps.visitor_id"
	KeyEnquiryCache = "pawsteps.enquiries"
)

// Memory is an in-process Store used by tests and by `serve` when
// USE_MEMORY_STORE is set.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
