package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"zoowatch/pkg/sentinel"
)

type LocalStoreSuite struct {
	suite.Suite
	base  string
	store *LocalStore
}

func (s *LocalStoreSuite) SetupTest() {
	s.base = s.T().TempDir()
	var err error
	s.store, err = NewLocalStore(filepath.Join(s.base, "artifacts"))
	s.Require().NoError(err)
}

func TestLocalStoreSuite(t *testing.T) {
	suite.Run(t, new(LocalStoreSuite))
}

func (s *LocalStoreSuite) TestPutGetDelete() {
	key := "uploads/keeper_2024-05-01_1714550000000.wav"
	data := []byte("wav-bytes")

	s.Require().NoError(s.store.Put(context.Background(), key, data))

	got, err := s.store.Get(context.Background(), key)
	s.Require().NoError(err)
	s.Equal(data, got)

	s.Require().NoError(s.store.Delete(context.Background(), key))
	_, err = s.store.Get(context.Background(), key)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *LocalStoreSuite) TestPutOverwrites() {
	key := "reports/keeper_2024-05-01.txt"
	s.Require().NoError(s.store.Put(context.Background(), key, []byte("v1")))
	s.Require().NoError(s.store.Put(context.Background(), key, []byte("v2")))

	got, err := s.store.Get(context.Background(), key)
	s.Require().NoError(err)
	s.Equal([]byte("v2"), got)
}

func (s *LocalStoreSuite) TestMissingKey() {
	_, err := s.store.Get(context.Background(), "uploads/nope.wav")
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(context.Background(), "uploads/nope.wav"), sentinel.ErrNotFound)
}

func (s *LocalStoreSuite) TestRejectsTraversal() {
	outside := filepath.Join(s.base, "escape.txt")
	s.Require().NoError(os.WriteFile(outside, []byte("secret"), 0o600))

	for _, key := range []string{
		"../escape.txt",
		"uploads/../../escape.txt",
		"/etc/passwd",
		".",
		"",
	} {
		s.Run("key "+key, func() {
			_, err := s.store.Get(context.Background(), key)
			s.Error(err)
			s.NotErrorIs(err, sentinel.ErrNotFound)

			s.Error(s.store.Put(context.Background(), key, []byte("x")))
		})
	}
}
