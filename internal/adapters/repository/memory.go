package repository

import (
	"context"
	"sync"

	"github.com/okian/dutyrota/internal/domain/model"
)

// MemoryStore keeps the state in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	state *model.State
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the saved state.
func (m *MemoryStore) Load(ctx context.Context) (model.State, error) {
	if err := ctx.Err(); err != nil {
		return model.State{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state == nil {
		return model.State{}, ErrNotFound
	}
	return m.state.Clone(), nil
}

// Save stores a copy of s.
func (m *MemoryStore) Save(ctx context.Context, s model.State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := s.Clone()
	m.mu.Lock()
	m.state = &c
	m.mu.Unlock()
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
