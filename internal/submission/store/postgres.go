package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"zoowatch/internal/submission/models"
	"zoowatch/pkg/sentinel"
)

// PostgresStore persists submissions and comments. Structured observation
// data is kept as JSONB so extractor schema changes stay additive.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation, pgForeignKeyViolation:
			return sentinel.ErrConflict
		}
	}
	return err
}

func (s *PostgresStore) Create(ctx context.Context, sub *models.Submission) error {
	structured, err := json.Marshal(sub.Structured)
	if err != nil {
		return fmt.Errorf("marshal structured data: %w", err)
	}

	query := `
		INSERT INTO submissions (id, author_id, observation_date, audio_ref, transcript, structured_data, report_ref, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		sub.ID, sub.AuthorID, sub.ObservationDate, sub.AudioRef, sub.Transcript,
		structured, nullString(sub.ReportRef), string(sub.Status), sub.CreatedAt, sub.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert submission: %w", mapPgError(err))
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	query := `
		SELECT id, author_id, observation_date, audio_ref, transcript, structured_data, report_ref, status, created_at, updated_at
		FROM submissions
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, id)
	sub, err := scanSubmission(row)
	if err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *PostgresStore) GetDetail(ctx context.Context, id uuid.UUID) (*models.SubmissionDetail, error) {
	query := `
		SELECT s.id, s.author_id, s.observation_date, s.audio_ref, s.transcript, s.structured_data, s.report_ref, s.status, s.created_at, s.updated_at,
		       u.name, u.login
		FROM submissions s
		JOIN users u ON u.id = s.author_id
		WHERE s.id = $1
	`
	var (
		detail     models.SubmissionDetail
		structured []byte
		reportRef  sql.NullString
		status     string
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&detail.ID, &detail.AuthorID, &detail.ObservationDate, &detail.AudioRef, &detail.Transcript,
		&structured, &reportRef, &status, &detail.CreatedAt, &detail.UpdatedAt,
		&detail.AuthorName, &detail.AuthorLogin,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select submission detail: %w", err)
	}
	detail.ReportRef = reportRef.String
	detail.Status = models.Status(status)
	if len(structured) > 0 {
		detail.Structured = &models.StructuredObservation{}
		if err := json.Unmarshal(structured, detail.Structured); err != nil {
			return nil, fmt.Errorf("unmarshal structured data: %w", err)
		}
	}

	comments, err := s.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Comments = comments
	return &detail, nil
}

func (s *PostgresStore) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Submission, error) {
	query := `
		SELECT id, author_id, observation_date, audio_ref, transcript, structured_data, report_ref, status, created_at, updated_at
		FROM submissions
		WHERE author_id = $1
		ORDER BY created_at DESC
	`
	return s.querySubmissions(ctx, query, authorID)
}

func (s *PostgresStore) ListAll(ctx context.Context) ([]*models.Submission, error) {
	query := `
		SELECT id, author_id, observation_date, audio_ref, transcript, structured_data, report_ref, status, created_at, updated_at
		FROM submissions
		ORDER BY created_at DESC
	`
	return s.querySubmissions(ctx, query)
}

func (s *PostgresStore) UpdateStructured(ctx context.Context, id uuid.UUID, obs *models.StructuredObservation, updatedAt time.Time) error {
	structured, err := json.Marshal(obs)
	if err != nil {
		return fmt.Errorf("marshal structured data: %w", err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET structured_data = $2, updated_at = $3 WHERE id = $1`,
		id, structured, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update structured data: %w", err)
	}
	return requireOneRow(res)
}

func (s *PostgresStore) SetReportRef(ctx context.Context, id uuid.UUID, ref string, updatedAt time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE submissions SET report_ref = $2, updated_at = $3 WHERE id = $1`,
		id, ref, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("update report ref: %w", err)
	}
	return requireOneRow(res)
}

func (s *PostgresStore) CreateComment(ctx context.Context, c *models.Comment) error {
	query := `
		INSERT INTO comments (id, submission_id, author_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query, c.ID, c.SubmissionID, c.AuthorID, c.Content, c.CreatedAt)
	if err != nil {
		err = mapPgError(err)
		if errors.Is(err, sentinel.ErrConflict) {
			// FK violation: the submission or author does not exist.
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListComments(ctx context.Context, submissionID uuid.UUID) ([]models.Comment, error) {
	query := `
		SELECT c.id, c.submission_id, c.author_id, u.name, c.content, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.submission_id = $1
		ORDER BY c.created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, submissionID)
	if err != nil {
		return nil, fmt.Errorf("select comments: %w", err)
	}
	defer rows.Close()

	var out []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.SubmissionID, &c.AuthorID, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) querySubmissions(ctx context.Context, query string, args ...any) ([]*models.Submission, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select submissions: %w", err)
	}
	defer rows.Close()

	var out []*models.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		sub        models.Submission
		structured []byte
		reportRef  sql.NullString
		status     string
	)
	err := row.Scan(
		&sub.ID, &sub.AuthorID, &sub.ObservationDate, &sub.AudioRef, &sub.Transcript,
		&structured, &reportRef, &status, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan submission: %w", err)
	}
	sub.ReportRef = reportRef.String
	sub.Status = models.Status(status)
	if len(structured) > 0 {
		sub.Structured = &models.StructuredObservation{}
		if err := json.Unmarshal(structured, sub.Structured); err != nil {
			return nil, fmt.Errorf("unmarshal structured data: %w", err)
		}
	}
	return &sub, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
