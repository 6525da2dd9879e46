package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"zoowatch/internal/identity"
	"zoowatch/pkg/sentinel"
)

// PostgresStore persists users.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, u *identity.User) error {
	query := `
		INSERT INTO users (id, login, password_hash, role, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(ctx, query, u.ID, u.Login, u.PasswordHash, string(u.Role), u.Name, u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	return s.get(ctx, `SELECT id, login, password_hash, role, name, created_at FROM users WHERE id = $1`, id)
}

func (s *PostgresStore) GetByLogin(ctx context.Context, login string) (*identity.User, error) {
	return s.get(ctx, `SELECT id, login, password_hash, role, name, created_at FROM users WHERE login = $1`, login)
}

func (s *PostgresStore) get(ctx context.Context, query string, arg any) (*identity.User, error) {
	var (
		u    identity.User
		role string
	)
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Login, &u.PasswordHash, &role, &u.Name, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}

	parsed, err := identity.ParseRole(role)
	if err != nil {
		return nil, fmt.Errorf("stored role: %w", err)
	}
	u.Role = parsed
	return &u, nil
}
