//go:build integration

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
	"zoowatch/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	store *RedisStore
}

func (s *RedisStoreSuite) SetupSuite() {
	if testing.Short() {
		s.T().Skip("skipping integration test in short mode")
	}
	s.store = NewRedisStore(containers.StartRedis(s.T()))
}

func TestRedisStoreSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) TestRoundTrip() {
	now := time.Now()
	sess := &session.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Role:      identity.RoleDoctor,
		Name:      "Dr. Meera Nair",
		Login:     "doctor",
		Device:    "Chrome 120 (Linux)",
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}

	s.Require().NoError(s.store.Save(context.Background(), sess))

	got, err := s.store.Get(context.Background(), sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.UserID, got.UserID)
	s.Equal(sess.Role, got.Role)
	s.Equal(sess.Device, got.Device)

	s.Require().NoError(s.store.Delete(context.Background(), sess.ID))
	_, err = s.store.Get(context.Background(), sess.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisStoreSuite) TestExpiredSessionIsRejectedOnSave() {
	now := time.Now()
	sess := &session.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Role:      identity.RoleKeeper,
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	}
	s.ErrorIs(s.store.Save(context.Background(), sess), sentinel.ErrExpired)
}

func (s *RedisStoreSuite) TestShortTTLExpires() {
	now := time.Now()
	sess := &session.Session{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Role:      identity.RoleKeeper,
		CreatedAt: now,
		ExpiresAt: now.Add(1500 * time.Millisecond),
	}
	s.Require().NoError(s.store.Save(context.Background(), sess))

	time.Sleep(2 * time.Second)
	_, err := s.store.Get(context.Background(), sess.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
