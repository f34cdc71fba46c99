package loan

import (
	"context"
	"slices"
	"sync"

	"hearth/internal/storage"
)

// InMemoryStore keeps applications in process memory for tests and local
// development.
type InMemoryStore struct {
	mu   sync.RWMutex
	byID map[string]*Application
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[string]*Application)}
}

func (s *InMemoryStore) Insert(_ context.Context, app *Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *app
	s.byID[app.ID] = &clone
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	app, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	clone := *app
	return &clone, nil
}

func (s *InMemoryStore) ListByApplicant(_ context.Context, applicantID string) ([]*Application, error) {
	return s.listWhere(func(a *Application) bool { return a.ApplicantID == applicantID })
}

func (s *InMemoryStore) ListByAgent(_ context.Context, agentID string) ([]*Application, error) {
	return s.listWhere(func(a *Application) bool { return a.BankAgentID == agentID })
}

func (s *InMemoryStore) List(_ context.Context) ([]*Application, error) {
	return s.listWhere(func(*Application) bool { return true })
}

func (s *InMemoryStore) listWhere(keep func(*Application) bool) ([]*Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Application
	for _, app := range s.byID {
		if keep(app) {
			clone := *app
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (s *InMemoryStore) ApplyDecision(_ context.Context, id string, from []Status, d Decision) (*Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if !slices.Contains(from, app.Status) {
		return nil, storage.ErrStaleState
	}
	app.Status = d.Status
	app.BankAgentDecision = d.DecisionText
	app.BankAgentNotes = d.Notes
	app.UpdatedAt = d.DecidedAt
	clone := *app
	return &clone, nil
}
