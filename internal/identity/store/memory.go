package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"zoowatch/internal/identity"
	"zoowatch/pkg/sentinel"
)

// InMemoryStore holds users for development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*identity.User
	byLogin map[string]*identity.User
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[uuid.UUID]*identity.User),
		byLogin: make(map[string]*identity.User),
	}
}

func (s *InMemoryStore) Create(_ context.Context, u *identity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byLogin[u.Login]; exists {
		return sentinel.ErrConflict
	}
	cp := *u
	s.byID[u.ID] = &cp
	s.byLogin[u.Login] = &cp
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemoryStore) GetByLogin(_ context.Context, login string) (*identity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byLogin[login]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}
