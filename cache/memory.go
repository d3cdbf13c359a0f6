package cache

import (
	"context"
	"sync"
)

// Memory is the default in-process [Cache]: an unbounded map guarded by a
// single RWMutex. Reads take the read lock; Put, Remove, RemoveWhere, and
// Clear take the write lock, so RemoveWhere trivially observes a consistent
// snapshot of the entries present when it starts.
type Memory[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// NewMemory creates an empty [Memory] cache.
func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{entries: make(map[string]V)}
}

// Put inserts or overwrites the entry for token.
func (m *Memory[V]) Put(_ context.Context, token string, value V) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[token] = value
	return nil
}

// Get returns the entry for token.
func (m *Memory[V]) Get(_ context.Context, token string) (V, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[token]
	return value, ok, nil
}

// Remove deletes the entry for token.
func (m *Memory[V]) Remove(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, token)
	return nil
}

// RemoveWhere deletes every entry matching pred and returns the removed
// tokens.
func (m *Memory[V]) RemoveWhere(_ context.Context, pred func(V) bool) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var removed []string
	for token, value := range m.entries {
		if pred(value) {
			removed = append(removed, token)
		}
	}
	for _, token := range removed {
		delete(m.entries, token)
	}
	return removed, nil
}

// Clear removes all entries.
func (m *Memory[V]) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]V)
	return nil
}

// Len returns the number of live entries.
func (m *Memory[V]) Len(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries), nil
}
