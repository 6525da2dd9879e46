// Package session implements the server-side session layer behind the
// session cookie. Sessions live 24 hours and are stored in Redis when
// configured, in memory otherwise. The cookie value itself is a signed token
// carrying only the session ID.
package session

import (
	"time"

	"github.com/google/uuid"

	"zoowatch/internal/identity"
)

// Session is the server-side state for one authenticated browser or client.
type Session struct {
	ID        uuid.UUID     `json:"id"`
	UserID    uuid.UUID     `json:"userId"`
	Role      identity.Role `json:"role"`
	Name      string        `json:"name"`
	Login     string        `json:"login"`
	Device    string        `json:"device,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

// Expired reports whether the session has passed its expiry at the given time.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
