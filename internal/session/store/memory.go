package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"zoowatch/internal/session"
	"zoowatch/pkg/sentinel"
)

// InMemoryStore holds sessions for development and tests. Expired sessions
// are dropped lazily on read.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session.Session
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[uuid.UUID]*session.Session)}
}

func (s *InMemoryStore) Save(_ context.Context, sess *session.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if sess.Expired(time.Now()) {
		delete(s.sessions, id)
		return nil, sentinel.ErrExpired
	}
	cp := *sess
	return &cp, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
