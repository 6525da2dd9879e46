package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"zoowatch/internal/identity"
	"zoowatch/internal/session"
	"zoowatch/pkg/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewInMemoryStore()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newSession(ttl time.Duration) *session.Session {
	now := time.Now()
	return &session.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Role:      identity.RoleKeeper,
		Name:      "Akhil Sharma",
		Login:     "keeper",
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *MemoryStoreSuite) TestSaveAndGet() {
	sess := s.newSession(time.Hour)
	s.Require().NoError(s.store.Save(context.Background(), sess))

	got, err := s.store.Get(context.Background(), sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.UserID, got.UserID)
	s.Equal(sess.Role, got.Role)
	s.Equal(sess.Login, got.Login)
}

func (s *MemoryStoreSuite) TestGetReturnsCopy() {
	sess := s.newSession(time.Hour)
	s.Require().NoError(s.store.Save(context.Background(), sess))

	got, err := s.store.Get(context.Background(), sess.ID)
	s.Require().NoError(err)
	got.Name = "mutated"

	again, err := s.store.Get(context.Background(), sess.ID)
	s.Require().NoError(err)
	s.Equal("Akhil Sharma", again.Name)
}

func (s *MemoryStoreSuite) TestUnknownSession() {
	_, err := s.store.Get(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestExpiredSessionIsDropped() {
	sess := s.newSession(-time.Minute)
	s.Require().NoError(s.store.Save(context.Background(), sess))

	_, err := s.store.Get(context.Background(), sess.ID)
	s.ErrorIs(err, sentinel.ErrExpired)

	// Lazy expiry removed it entirely.
	_, err = s.store.Get(context.Background(), sess.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestDeleteIsIdempotent() {
	sess := s.newSession(time.Hour)
	s.Require().NoError(s.store.Save(context.Background(), sess))

	s.Require().NoError(s.store.Delete(context.Background(), sess.ID))
	s.Require().NoError(s.store.Delete(context.Background(), sess.ID))

	_, err := s.store.Get(context.Background(), sess.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
