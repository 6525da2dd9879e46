// Package containers starts throwaway backing services for integration tests.
// Tests using it must carry the integration build tag and honor testing.Short.
package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// StartPostgres runs a disposable Postgres, applies no schema, and returns an
// open pool. The container is removed when the test finishes.
func StartPostgres(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("zoowatch_test"),
		tcpostgres.WithUsername("zoowatch"),
		tcpostgres.WithPassword("zoowatch"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}

	pool, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Fatalf("open postgres pool: %v", err)
	}
	t.Cleanup(func() { _ = pool.Close() })

	if err := pool.PingContext(ctx); err != nil {
		t.Fatalf("ping postgres: %v", err)
	}
	return pool
}

// Apply runs DDL statements against the pool, failing the test on error.
func Apply(t *testing.T, pool *sql.DB, statements ...string) {
	t.Helper()
	for i, stmt := range statements {
		if _, err := pool.Exec(stmt); err != nil {
			t.Fatalf("apply statement %d: %v", i, err)
		}
	}
}

// Schema returns the DDL for the core tables, mirroring the goose migrations,
// so integration tests do not depend on the migrations directory location.
func Schema() []string {
	return []string{
		`CREATE TABLE users (
			id UUID PRIMARY KEY,
			login TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE submissions (
			id UUID PRIMARY KEY,
			author_id UUID NOT NULL REFERENCES users (id),
			observation_date TEXT NOT NULL,
			audio_ref TEXT NOT NULL,
			transcript TEXT,
			structured_data JSONB NOT NULL,
			report_ref TEXT,
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE comments (
			id UUID PRIMARY KEY,
			submission_id UUID NOT NULL REFERENCES submissions (id) ON DELETE CASCADE,
			author_id UUID NOT NULL REFERENCES users (id),
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}
}
