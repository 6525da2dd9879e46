package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"zoowatch/internal/identity"
	"zoowatch/pkg/sentinel"
)

// UserWriter is the subset of the store needed for seeding.
type UserWriter interface {
	Create(ctx context.Context, u *identity.User) error
}

// SeedDefaultUsers creates one account per role for development setups.
// Existing logins are left untouched.
func SeedDefaultUsers(ctx context.Context, users UserWriter) error {
	defaults := []struct {
		login    string
		password string
		role     identity.Role
		name     string
	}{
		{"admin", "admin123", identity.RoleAdmin, "Zoo Administrator"},
		{"doctor", "doctor123", identity.RoleDoctor, "Dr. Meera Nair"},
		{"keeper", "keeper123", identity.RoleKeeper, "Akhil Sharma"},
	}

	now := time.Now()
	for _, d := range defaults {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u := &identity.User{
			ID:           uuid.New(),
			Login:        d.login,
			PasswordHash: string(hash),
			Role:         d.role,
			Name:         d.name,
			CreatedAt:    now,
		}
		if err := users.Create(ctx, u); err != nil {
			// An existing login means a previous run already seeded it.
			if errors.Is(err, sentinel.ErrConflict) {
				continue
			}
			return err
		}
	}
	return nil
}
