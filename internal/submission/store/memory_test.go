package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"zoowatch/internal/identity"
	identitystore "zoowatch/internal/identity/store"
	"zoowatch/internal/submission/models"
	"zoowatch/pkg/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	users  *identitystore.InMemoryStore
	store  *InMemoryStore
	author *identity.User
	base   time.Time
}

func (s *MemoryStoreSuite) SetupTest() {
	s.users = identitystore.NewInMemoryStore()
	s.store = NewInMemoryStore(s.users)
	s.base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	s.author = &identity.User{
		ID:        uuid.New(),
		Login:     "keeper",
		Role:      identity.RoleKeeper,
		Name:      "Akhil Sharma",
		CreatedAt: s.base,
	}
	s.Require().NoError(s.users.Create(context.Background(), s.author))
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) submission(createdAt time.Time) *models.Submission {
	return &models.Submission{
		ID:              uuid.New(),
		AuthorID:        s.author.ID,
		ObservationDate: createdAt.Format("2006-01-02"),
		AudioRef:        "uploads/keeper.wav",
		Transcript:      "Processed from audio",
		Structured: &models.StructuredObservation{
			SchemaVersion: models.ObservationSchemaVersion,
			Date:          createdAt.Format("2006-01-02"),
		},
		Status:    models.StatusProcessed,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func (s *MemoryStoreSuite) TestCreateRejectsDuplicateID() {
	sub := s.submission(s.base)
	s.Require().NoError(s.store.Create(context.Background(), sub))
	s.ErrorIs(s.store.Create(context.Background(), sub), sentinel.ErrConflict)
}

func (s *MemoryStoreSuite) TestListingsAreNewestFirst() {
	oldest := s.submission(s.base)
	middle := s.submission(s.base.Add(time.Hour))
	newest := s.submission(s.base.Add(2 * time.Hour))
	for _, sub := range []*models.Submission{middle, oldest, newest} {
		s.Require().NoError(s.store.Create(context.Background(), sub))
	}

	all, err := s.store.ListAll(context.Background())
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(newest.ID, all[0].ID)
	s.Equal(middle.ID, all[1].ID)
	s.Equal(oldest.ID, all[2].ID)

	byAuthor, err := s.store.ListByAuthor(context.Background(), s.author.ID)
	s.Require().NoError(err)
	s.Require().Len(byAuthor, 3)
	s.Equal(newest.ID, byAuthor[0].ID)
}

func (s *MemoryStoreSuite) TestListByAuthorFiltersOtherAuthors() {
	mine := s.submission(s.base)
	other := s.submission(s.base.Add(time.Hour))
	other.AuthorID = uuid.New()
	s.Require().NoError(s.store.Create(context.Background(), mine))
	s.Require().NoError(s.store.Create(context.Background(), other))

	byAuthor, err := s.store.ListByAuthor(context.Background(), s.author.ID)
	s.Require().NoError(err)
	s.Require().Len(byAuthor, 1)
	s.Equal(mine.ID, byAuthor[0].ID)
}

func (s *MemoryStoreSuite) TestUpdateStructuredLeavesCreatedAt() {
	sub := s.submission(s.base)
	s.Require().NoError(s.store.Create(context.Background(), sub))

	edited := &models.StructuredObservation{
		SchemaVersion:         models.ObservationSchemaVersion,
		Date:                  sub.ObservationDate,
		DailyHealthMonitoring: models.StringPtr("revised"),
	}
	later := s.base.Add(3 * time.Hour)
	s.Require().NoError(s.store.UpdateStructured(context.Background(), sub.ID, edited, later))

	got, err := s.store.GetByID(context.Background(), sub.ID)
	s.Require().NoError(err)
	s.Equal(sub.CreatedAt, got.CreatedAt)
	s.Equal(later, got.UpdatedAt)
	s.Equal("revised", *got.Structured.DailyHealthMonitoring)
}

func (s *MemoryStoreSuite) TestGetDetailJoinsAuthorAndComments() {
	sub := s.submission(s.base)
	s.Require().NoError(s.store.Create(context.Background(), sub))

	first := &models.Comment{
		ID:           uuid.New(),
		SubmissionID: sub.ID,
		AuthorID:     s.author.ID,
		Content:      "first",
		CreatedAt:    s.base.Add(time.Minute),
	}
	second := &models.Comment{
		ID:           uuid.New(),
		SubmissionID: sub.ID,
		AuthorID:     s.author.ID,
		Content:      "second",
		CreatedAt:    s.base.Add(2 * time.Minute),
	}
	s.Require().NoError(s.store.CreateComment(context.Background(), first))
	s.Require().NoError(s.store.CreateComment(context.Background(), second))

	detail, err := s.store.GetDetail(context.Background(), sub.ID)
	s.Require().NoError(err)
	s.Equal("Akhil Sharma", detail.AuthorName)
	s.Equal("keeper", detail.AuthorLogin)
	s.Require().Len(detail.Comments, 2)
	s.Equal("second", detail.Comments[0].Content)
	s.Equal("first", detail.Comments[1].Content)
	s.Equal("Akhil Sharma", detail.Comments[0].AuthorName)
}

func (s *MemoryStoreSuite) TestCommentOnUnknownSubmission() {
	c := &models.Comment{
		ID:           uuid.New(),
		SubmissionID: uuid.New(),
		AuthorID:     s.author.ID,
		Content:      "lost",
		CreatedAt:    s.base,
	}
	s.ErrorIs(s.store.CreateComment(context.Background(), c), sentinel.ErrNotFound)
}

func (s *MemoryStoreSuite) TestUnknownSubmission() {
	_, err := s.store.GetByID(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.GetDetail(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.SetReportRef(context.Background(), uuid.New(), "x", s.base), sentinel.ErrNotFound)
}
