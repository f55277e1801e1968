package sessions

import (
	"context"
	"sync"

	"github.com/kapinzzal02/playgen/internal/shared"
)

// MemoryStore is an in-process [Store] implementation.
//
// Sessions are copied on read and write so callers never share the stored
// struct. Note that nothing serializes two requests for the same session
// racing through the refresh stage; the store only guarantees that each
// individual Get/Save is consistent.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

// Get retrieves a session by ID.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, shared.ErrSessionNotFound
	}
	return &s, nil
}

// Save creates or replaces the stored session.
func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.ID] = *s
	return nil
}

// Delete removes a session by ID. Deleting an unknown ID is not an error.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}
