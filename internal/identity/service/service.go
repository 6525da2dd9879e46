package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	"zoowatch/internal/access"
	"zoowatch/internal/audit"
	"zoowatch/internal/identity"
	"zoowatch/internal/session"
	"zoowatch/pkg/domainerrors"
	"zoowatch/pkg/sentinel"
)

type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
	GetByLogin(ctx context.Context, login string) (*identity.User, error)
}

type SessionStore interface {
	Save(ctx context.Context, sess *session.Session) error
	Get(ctx context.Context, id uuid.UUID) (*session.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service authenticates users and manages their sessions.
type Service struct {
	users    UserStore
	sessions SessionStore
	tokens   *session.TokenManager
	auditor  *audit.Publisher
	logger   *slog.Logger
}

func New(users UserStore, sessions SessionStore, tokens *session.TokenManager, auditor *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{users: users, sessions: sessions, tokens: tokens, auditor: auditor, logger: logger}
}

// Login verifies credentials and creates a session. The returned token is the
// signed cookie value. Credential failures are indistinguishable to callers.
func (s *Service) Login(ctx context.Context, login, password, userAgent string) (*session.Session, string, error) {
	invalid := domainerrors.New(domainerrors.CodeUnauthorized, "invalid credentials")

	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, "", invalid
		}
		return nil, "", domainerrors.Wrap(domainerrors.CodeInternal, "lookup user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", invalid
	}

	now := time.Now()
	sess := &session.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		Role:      user.Role,
		Name:      user.Name,
		Login:     user.Login,
		Device:    deviceLabel(userAgent),
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, "", domainerrors.Wrap(domainerrors.CodeInternal, "save session", err)
	}

	token, err := s.tokens.Issue(sess.ID, now)
	if err != nil {
		return nil, "", domainerrors.Wrap(domainerrors.CodeInternal, "issue session token", err)
	}

	s.auditor.Emit(ctx, audit.Event{
		ActorID: user.ID,
		Action:  audit.ActionLogin,
		Detail:  sess.Device,
	})
	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID.String(),
		"role", string(user.Role),
		"device", sess.Device,
	)
	return sess, token, nil
}

// Logout deletes the session behind the token. Unknown or expired tokens are
// treated as already logged out.
func (s *Service) Logout(ctx context.Context, token string) error {
	sessionID, err := s.tokens.Validate(token)
	if err != nil {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return domainerrors.Wrap(domainerrors.CodeInternal, "delete session", err)
	}
	return nil
}

// Authenticate resolves a cookie token into a request-scoped identity.
// Used by the auth middleware on every request.
func (s *Service) Authenticate(ctx context.Context, token string) (*access.Identity, error) {
	unauthorized := domainerrors.New(domainerrors.CodeUnauthorized, "authentication required")

	sessionID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, unauthorized
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExpired) {
			return nil, unauthorized
		}
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "load session", err)
	}

	return &access.Identity{
		UserID: sess.UserID,
		Role:   sess.Role,
		Name:   sess.Name,
		Login:  sess.Login,
	}, nil
}

// deviceLabel condenses a User-Agent header into a short display label for
// the session record.
func deviceLabel(ua string) string {
	if ua == "" {
		return ""
	}
	parsed := useragent.New(ua)
	name, version := parsed.Browser()
	if name == "" {
		return parsed.OS()
	}
	if os := parsed.OS(); os != "" {
		return fmt.Sprintf("%s %s (%s)", name, version, os)
	}
	return fmt.Sprintf("%s %s", name, version)
}
