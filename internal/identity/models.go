package identity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of principal roles. Authorization checks switch
// exhaustively over these; an unknown role never grants access.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDoctor Role = "doctor"
	RoleKeeper Role = "keeper"
)

// ParseRole validates a stored or transmitted role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleDoctor:
		return RoleDoctor, nil
	case RoleKeeper:
		return RoleKeeper, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleKeeper:
		return true
	default:
		return false
	}
}

// User is an account that can authenticate. Immutable after creation except
// profile fields, which are outside this service's scope.
type User struct {
	ID           uuid.UUID
	Login        string
	PasswordHash string
	Role         Role
	Name         string
	CreatedAt    time.Time
}
