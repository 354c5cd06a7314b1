package auth

import (
	"context"
	"sync"
	"time"
)

// MemoryStateStore implements StateStore in memory. Suitable for tests and
// single-process deployments; multi-process deployments use the MongoDB
// store so callbacks can land on any instance.
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
}

// NewMemoryStateStore creates an in-memory OAuth state store.
func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{states: make(map[string]time.Time)}
}

// Store records a state value with its expiry.
func (m *MemoryStateStore) Store(ctx context.Context, state string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[state] = expiresAt
	return nil
}

// Consume atomically removes the state, failing if it is absent or expired.
func (m *MemoryStateStore) Consume(ctx context.Context, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	expiresAt, ok := m.states[state]
	if !ok {
		return ErrStateNotFound
	}
	delete(m.states, state)

	if time.Now().After(expiresAt) {
		return ErrStateNotFound
	}
	return nil
}

var _ StateStore = (*MemoryStateStore)(nil)
