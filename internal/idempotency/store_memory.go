package idempotency

import (
	"context"
	"sync"
)

// InMemoryStore implements Store for single-process deployments. Entries are
// stored by value so readers never observe a partially written entry.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewInMemoryStore creates an empty in-memory idempotency store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]Entry)}
}

// Get returns the entry for key, (nil, nil) on a miss.
func (s *InMemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if entry, exists := s.entries[key]; exists {
		return &entry, nil
	}
	return nil, nil
}

// Put stores entry under key. First write wins; later writes for the same
// key are ignored.
func (s *InMemoryStore) Put(_ context.Context, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; exists {
		return nil
	}
	s.entries[key] = entry
	return nil
}
