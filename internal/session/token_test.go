package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type TokenSuite struct {
	suite.Suite
	manager *TokenManager
}

func (s *TokenSuite) SetupTest() {
	s.manager = NewTokenManager("test-secret", 24*time.Hour)
}

func TestTokenSuite(t *testing.T) {
	suite.Run(t, new(TokenSuite))
}

func (s *TokenSuite) TestRoundTrip() {
	sessionID := uuid.New()

	token, err := s.manager.Issue(sessionID, time.Now())
	s.Require().NoError(err)
	s.NotEmpty(token)

	got, err := s.manager.Validate(token)
	s.Require().NoError(err)
	s.Equal(sessionID, got)
}

func (s *TokenSuite) TestRejectsGarbage() {
	_, err := s.manager.Validate("not-a-token")
	s.ErrorIs(err, ErrInvalidToken)

	_, err = s.manager.Validate("")
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *TokenSuite) TestRejectsWrongSecret() {
	other := NewTokenManager("different-secret", 24*time.Hour)
	token, err := other.Issue(uuid.New(), time.Now())
	s.Require().NoError(err)

	_, err = s.manager.Validate(token)
	s.ErrorIs(err, ErrInvalidToken)
}

func (s *TokenSuite) TestRejectsExpired() {
	short := NewTokenManager("test-secret", time.Minute)
	token, err := short.Issue(uuid.New(), time.Now().Add(-time.Hour))
	s.Require().NoError(err)

	_, err = short.Validate(token)
	s.ErrorIs(err, ErrInvalidToken)
}
