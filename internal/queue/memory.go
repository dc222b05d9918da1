package queue

import (
	"context"
	"sync"

	"stockflow/backend/internal/domain"
)

// MemoryStore keeps the queue in process memory. Used for tests and for
// dev mode, where losing the queue on restart is acceptable.
type MemoryStore struct {
	mu      sync.Mutex
	actions []domain.QueuedAction
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{actions: make([]domain.QueuedAction, 0, 16)}
}

func (s *MemoryStore) Append(_ context.Context, action domain.QueuedAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = append(s.actions, action)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]domain.QueuedAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.QueuedAction, len(s.actions))
	copy(out, s.actions)
	return out, nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions = s.actions[:0]
	return nil
}
