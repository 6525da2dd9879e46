package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"zoowatch/internal/identity"
	"zoowatch/internal/submission/models"
	"zoowatch/pkg/sentinel"
)

// UserResolver supplies author display data for joined reads. The Postgres
// store joins in SQL; the memory store resolves through the user store.
type UserResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// InMemoryStore is the non-persistent submission store used in development
// and as the fake in service tests.
type InMemoryStore struct {
	mu          sync.RWMutex
	submissions map[uuid.UUID]*models.Submission
	comments    map[uuid.UUID][]models.Comment
	users       UserResolver
}

func NewInMemoryStore(users UserResolver) *InMemoryStore {
	return &InMemoryStore{
		submissions: make(map[uuid.UUID]*models.Submission),
		comments:    make(map[uuid.UUID][]models.Comment),
		users:       users,
	}
}

func (s *InMemoryStore) Create(_ context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.submissions[sub.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *sub
	s.submissions[sub.ID] = &cp
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, id uuid.UUID) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (s *InMemoryStore) GetDetail(ctx context.Context, id uuid.UUID) (*models.SubmissionDetail, error) {
	sub, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &models.SubmissionDetail{Submission: *sub}

	if s.users != nil {
		author, err := s.users.GetByID(ctx, sub.AuthorID)
		if err == nil {
			detail.AuthorName = author.Name
			detail.AuthorLogin = author.Login
		}
	}

	comments, err := s.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	detail.Comments = comments
	return detail, nil
}

func (s *InMemoryStore) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Submission
	for _, sub := range s.submissions {
		if sub.AuthorID == authorID {
			cp := *sub
			out = append(out, &cp)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *InMemoryStore) ListAll(_ context.Context) ([]*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		cp := *sub
		out = append(out, &cp)
	}
	sortNewestFirst(out)
	return out, nil
}

// UpdateStructured replaces the structured data and bumps UpdatedAt.
// CreatedAt is never touched.
func (s *InMemoryStore) UpdateStructured(_ context.Context, id uuid.UUID, obs *models.StructuredObservation, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	cp := *obs
	sub.Structured = &cp
	sub.UpdatedAt = updatedAt
	return nil
}

func (s *InMemoryStore) SetReportRef(_ context.Context, id uuid.UUID, ref string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.submissions[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	sub.ReportRef = ref
	sub.UpdatedAt = updatedAt
	return nil
}

func (s *InMemoryStore) CreateComment(ctx context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.submissions[c.SubmissionID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *c
	if s.users != nil {
		if author, err := s.users.GetByID(ctx, c.AuthorID); err == nil {
			cp.AuthorName = author.Name
		}
	}
	s.comments[c.SubmissionID] = append(s.comments[c.SubmissionID], cp)
	return nil
}

// ListComments returns comments newest-first.
func (s *InMemoryStore) ListComments(_ context.Context, submissionID uuid.UUID) ([]models.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := append([]models.Comment{}, s.comments[submissionID]...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func sortNewestFirst(subs []*models.Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
}
