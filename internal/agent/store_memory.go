package agent

import (
	"context"
	"sync"

	"hearth/internal/storage"
)

// InMemoryStore keeps registrations in process memory. It backs unit tests
// and local development; the Postgres store is the production path.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]*Registration
	byUser map[string]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[string]*Registration),
		byUser: make(map[string]string),
	}
}

func (s *InMemoryStore) Insert(_ context.Context, reg *Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byUser[reg.UserID]; exists {
		return storage.ErrDuplicate
	}
	clone := *reg
	s.byID[reg.ID] = &clone
	s.byUser[reg.UserID] = reg.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	reg, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *reg
	return &clone, nil
}

func (s *InMemoryStore) FindByUserID(_ context.Context, userID string) (*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byUser[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *s.byID[id]
	return &clone, nil
}

func (s *InMemoryStore) ListByStatus(_ context.Context, status Status) ([]*Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Registration
	for _, reg := range s.byID {
		if status != "" && reg.Status != status {
			continue
		}
		clone := *reg
		out = append(out, &clone)
	}
	return out, nil
}

func (s *InMemoryStore) ApplyDecision(_ context.Context, id string, from Status, d Decision) (*Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if reg.Status != from {
		return nil, storage.ErrStaleState
	}
	reviewedAt := d.ReviewedAt
	reg.Status = d.Status
	reg.ReviewedAt = &reviewedAt
	reg.ReviewedBy = d.ReviewedBy
	reg.AdminNotes = d.AdminNotes
	reg.RejectionReason = d.RejectionReason
	clone := *reg
	return &clone, nil
}
