package repository

import (
	"context"
	"sync"

	"github.com/okian/formpost/internal/domain/model"
)

// MemoryStore is an in-process Store. Contents are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]model.Submission
	order []string // insertion order, oldest first
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]model.Submission)}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, s model.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[s.ID]; !exists {
		m.order = append(m.order, s.ID)
	}
	m.byID[s.ID] = s
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) (model.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byID[id]
	if !ok {
		return model.Submission{}, ErrNotFound
	}
	return s, nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context, limit int) ([]model.Submission, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := min(limit, len(m.order))
	out := make([]model.Submission, 0, n)
	for i := len(m.order) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, m.byID[m.order[i]])
	}
	return out, nil
}

// Count implements Store.
func (m *MemoryStore) Count(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID), nil
}
