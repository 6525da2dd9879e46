// Package service orchestrates the submission pipeline: intake of an audio
// upload, extraction, fallback, report rendering, and persistence. It is the
// only writer of submissions; handlers stay thin and stores stay dumb.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"zoowatch/internal/access"
	"zoowatch/internal/artifact"
	"zoowatch/internal/audit"
	"zoowatch/internal/extraction"
	"zoowatch/internal/platform/metrics"
	"zoowatch/internal/report"
	"zoowatch/internal/submission/models"
	"zoowatch/pkg/domainerrors"
	"zoowatch/pkg/requestcontext"
	"zoowatch/pkg/sentinel"
)

const observationDateFormat = "2006-01-02"

// Transcript markers. Whether extraction succeeded is visible only in the
// record's content, never in the response status.
const (
	transcriptProcessed = "Processed from audio"
	transcriptFallback  = "Audio processing failed - transcript unavailable"
)

// FallbackRequirementsMarker is the fixed manual-review marker placed into
// other_animal_requirements whenever extraction fails.
const FallbackRequirementsMarker = "Audio processing error - manual review required"

// Store is the persistence surface the coordinator needs.
type Store interface {
	Create(ctx context.Context, sub *models.Submission) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*models.SubmissionDetail, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Submission, error)
	ListAll(ctx context.Context) ([]*models.Submission, error)
	UpdateStructured(ctx context.Context, id uuid.UUID, obs *models.StructuredObservation, updatedAt time.Time) error
	SetReportRef(ctx context.Context, id uuid.UUID, ref string, updatedAt time.Time) error
	CreateComment(ctx context.Context, c *models.Comment) error
}

// Service is the submission intake coordinator and query surface.
type Service struct {
	store     Store
	extractor extraction.Extractor
	artifacts artifact.Store
	gate      *access.Gate
	metrics   *metrics.Metrics
	auditor   *audit.Publisher
	logger    *slog.Logger
	tracer    trace.Tracer
	locale    string
}

func New(
	store Store,
	extractor extraction.Extractor,
	artifacts artifact.Store,
	gate *access.Gate,
	m *metrics.Metrics,
	auditor *audit.Publisher,
	logger *slog.Logger,
	locale string,
) *Service {
	return &Service{
		store:     store,
		extractor: extractor,
		artifacts: artifacts,
		gate:      gate,
		metrics:   m,
		auditor:   auditor,
		logger:    logger,
		tracer:    otel.Tracer("zoowatch/submission"),
		locale:    locale,
	}
}

// Submit accepts an audio upload and guarantees a persisted, reviewable
// record. Extraction failures of any kind resolve to a deterministic fallback
// record; the caller never sees an extraction error. Only persistence
// failures escape.
func (s *Service) Submit(ctx context.Context, ident *access.Identity, audio []byte, date string) (*models.Submission, error) {
	if err := s.gate.CanSubmit(ident); err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, domainerrors.New(domainerrors.CodeBadRequest, "audio file is required")
	}
	if date == "" || !govalidator.IsTime(date, observationDateFormat) {
		return nil, domainerrors.New(domainerrors.CodeBadRequest, "date must be YYYY-MM-DD")
	}

	ctx, span := s.tracer.Start(ctx, "submission.submit",
		trace.WithAttributes(
			attribute.String("submission.date", date),
			attribute.Int("submission.audio_bytes", len(audio)),
		))
	defer span.End()

	now := requestcontext.Now(ctx)
	audioRef := artifactKey("uploads", ident.Login, date, now, "wav")
	if err := s.artifacts.Put(ctx, audioRef, audio); err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "store audio artifact", err)
	}

	obs, transcript := s.extractOrFallback(ctx, ident, audio, date)

	reportRef := artifactKey("reports", ident.Login, date, now, "txt")
	if err := s.renderAndStore(ctx, obs, ident.Name, date, reportRef); err != nil {
		// A missing report on a processed submission is recoverable; it is
		// re-rendered on next access.
		s.logger.ErrorContext(ctx, "failed to store report artifact",
			"report_ref", reportRef,
			"error", err,
		)
		reportRef = ""
	}

	sub := &models.Submission{
		ID:              uuid.New(),
		AuthorID:        ident.UserID,
		ObservationDate: date,
		AudioRef:        audioRef,
		Transcript:      transcript,
		Structured:      obs,
		ReportRef:       reportRef,
		Status:          models.StatusProcessed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, sub); err != nil {
		span.RecordError(err)
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "persist submission", err)
	}

	s.metrics.SubmissionsProcessed.Inc()
	s.auditor.Emit(ctx, audit.Event{
		ActorID:      ident.UserID,
		Action:       audit.ActionSubmissionCreated,
		SubmissionID: sub.ID,
		Detail:       date,
	})
	s.logger.InfoContext(ctx, "submission processed",
		"submission_id", sub.ID.String(),
		"author_id", ident.UserID.String(),
		"date", date,
	)
	return sub, nil
}

// extractOrFallback runs the extractor and degrades to the deterministic
// fallback record on any failure. Every failure category is handled
// identically; the category only feeds logs and metrics.
func (s *Service) extractOrFallback(ctx context.Context, ident *access.Identity, audio []byte, date string) (*models.StructuredObservation, string) {
	ctx, span := s.tracer.Start(ctx, "submission.extract")
	defer span.End()

	obs, err := s.extractor.Extract(ctx, audio, date, s.locale)
	if err != nil {
		category := extraction.CategoryOf(err)
		span.SetAttributes(attribute.String("extraction.failure", string(category)))
		s.metrics.IncrementExtractionFailure(string(category))
		s.metrics.FallbackRecords.Inc()
		s.logger.WarnContext(ctx, "extraction failed, using fallback record",
			"category", string(category),
			"date", date,
			"error", err,
		)
		return fallbackObservation(date, ident.Name), transcriptFallback
	}

	obs.SchemaVersion = models.ObservationSchemaVersion
	obs.Date = date
	if obs.InchargeSignature == nil || *obs.InchargeSignature == "" {
		obs.InchargeSignature = models.StringPtr(ident.Name)
	}
	return obs, transcriptProcessed
}

// fallbackObservation is the deterministic placeholder used whenever
// extraction fails: neutral flags plus fixed manual-review markers
// referencing the date.
func fallbackObservation(date, authorName string) *models.StructuredObservation {
	return &models.StructuredObservation{
		SchemaVersion:              models.ObservationSchemaVersion,
		Date:                       date,
		AnimalObservedOnTime:       models.BoolPtr(true),
		CleanDrinkingWaterProvided: models.BoolPtr(true),
		EnclosureCleanedProperly:   models.BoolPtr(true),
		NormalBehaviourStatus:      models.BoolPtr(true),
		FeedSupplementsAvailable:   models.BoolPtr(true),
		FeedGivenAsPrescribed:      models.BoolPtr(true),
		OtherRequirements:          models.StringPtr(FallbackRequirementsMarker),
		InchargeSignature:          models.StringPtr(authorName),
		DailyHealthMonitoring:      models.StringPtr(fmt.Sprintf("Observation recorded on %s - Audio processing encountered an error", date)),
		CarnivoreFeedingChart:      models.StringPtr("Standard feeding schedule followed"),
		MedicineStockRegister:      models.StringPtr("Stock levels adequate"),
		DailyWildlifeMonitoring:    models.StringPtr(fmt.Sprintf("Wildlife monitoring completed on %s", date)),
	}
}

// Get returns a submission joined with author and comments (newest-first).
func (s *Service) Get(ctx context.Context, ident *access.Identity, id uuid.UUID) (*models.SubmissionDetail, error) {
	if err := s.gate.CanView(ident); err != nil {
		return nil, err
	}
	detail, err := s.store.GetDetail(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "load submission")
	}
	return detail, nil
}

// ListMine returns the caller's own submissions, newest-first.
func (s *Service) ListMine(ctx context.Context, ident *access.Identity) ([]*models.Submission, error) {
	if ident == nil {
		return nil, domainerrors.New(domainerrors.CodeUnauthorized, "authentication required")
	}
	if err := s.gate.CanListOwn(ident, ident.UserID); err != nil {
		return nil, err
	}
	subs, err := s.store.ListByAuthor(ctx, ident.UserID)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "list submissions", err)
	}
	return subs, nil
}

// ListAll returns every submission, newest-first. Reviewers only.
func (s *Service) ListAll(ctx context.Context, ident *access.Identity) ([]*models.Submission, error) {
	if err := s.gate.CanListAll(ident); err != nil {
		return nil, err
	}
	subs, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.CodeInternal, "list submissions", err)
	}
	return subs, nil
}

// Update replaces the structured data and re-renders the report artifact.
// CreatedAt never changes; UpdatedAt is bumped.
func (s *Service) Update(ctx context.Context, ident *access.Identity, id uuid.UUID, obs *models.StructuredObservation) (*models.SubmissionDetail, error) {
	if ident == nil {
		return nil, domainerrors.New(domainerrors.CodeUnauthorized, "authentication required")
	}
	if obs == nil {
		return nil, domainerrors.New(domainerrors.CodeBadRequest, "structured data is required")
	}

	detail, err := s.store.GetDetail(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "load submission")
	}
	if err := s.gate.CanEdit(ident, detail.AuthorID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	obs.SchemaVersion = models.ObservationSchemaVersion
	// The observation date is fixed at intake; edits cannot move the record.
	obs.Date = detail.ObservationDate

	if err := s.store.UpdateStructured(ctx, id, obs, now); err != nil {
		return nil, translateStoreError(err, "update submission")
	}

	reportRef := detail.ReportRef
	if reportRef == "" {
		reportRef = artifactKey("reports", detail.AuthorLogin, detail.ObservationDate, now, "txt")
	}
	if err := s.renderAndStore(ctx, obs, detail.AuthorName, detail.ObservationDate, reportRef); err != nil {
		s.logger.ErrorContext(ctx, "failed to re-render report after update",
			"submission_id", id.String(),
			"error", err,
		)
	} else if err := s.store.SetReportRef(ctx, id, reportRef, now); err != nil {
		return nil, translateStoreError(err, "update report ref")
	}

	s.auditor.Emit(ctx, audit.Event{
		ActorID:      ident.UserID,
		Action:       audit.ActionSubmissionUpdated,
		SubmissionID: id,
	})

	updated, err := s.store.GetDetail(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "reload submission")
	}
	return updated, nil
}

// AddComment attaches an append-only reviewer note to an existing submission.
func (s *Service) AddComment(ctx context.Context, ident *access.Identity, id uuid.UUID, content string) (*models.Comment, error) {
	if err := s.gate.CanComment(ident); err != nil {
		return nil, err
	}
	if !govalidator.StringLength(content, "1", "2000") {
		return nil, domainerrors.New(domainerrors.CodeBadRequest, "comment must be 1-2000 characters")
	}

	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, translateStoreError(err, "load submission")
	}

	comment := &models.Comment{
		ID:           uuid.New(),
		SubmissionID: id,
		AuthorID:     ident.UserID,
		AuthorName:   ident.Name,
		Content:      content,
		CreatedAt:    requestcontext.Now(ctx),
	}
	if err := s.store.CreateComment(ctx, comment); err != nil {
		return nil, translateStoreError(err, "create comment")
	}

	s.metrics.CommentsCreated.Inc()
	s.auditor.Emit(ctx, audit.Event{
		ActorID:      ident.UserID,
		Action:       audit.ActionCommentCreated,
		SubmissionID: id,
	})
	return comment, nil
}

// Report returns the rendered report artifact. A processed submission with a
// missing report reference or artifact is recovered by re-rendering.
func (s *Service) Report(ctx context.Context, ident *access.Identity, id uuid.UUID) ([]byte, string, error) {
	if err := s.gate.CanDownloadReport(ident); err != nil {
		return nil, "", err
	}

	detail, err := s.store.GetDetail(ctx, id)
	if err != nil {
		return nil, "", translateStoreError(err, "load submission")
	}
	if detail.Status != models.StatusProcessed || detail.Structured == nil {
		return nil, "", domainerrors.New(domainerrors.CodeNotFound, "report not available")
	}

	now := requestcontext.Now(ctx)
	reportRef := detail.ReportRef
	if reportRef == "" {
		reportRef = artifactKey("reports", detail.AuthorLogin, detail.ObservationDate, now, "txt")
		if err := s.renderAndStore(ctx, detail.Structured, detail.AuthorName, detail.ObservationDate, reportRef); err != nil {
			return nil, "", domainerrors.Wrap(domainerrors.CodeInternal, "render report", err)
		}
		if err := s.store.SetReportRef(ctx, id, reportRef, now); err != nil {
			return nil, "", translateStoreError(err, "update report ref")
		}
	}

	s.auditor.Emit(ctx, audit.Event{
		ActorID:      ident.UserID,
		Action:       audit.ActionReportDownloaded,
		SubmissionID: id,
	})

	data, err := s.artifacts.Get(ctx, reportRef)
	if errors.Is(err, sentinel.ErrNotFound) {
		// The reference exists but the artifact is gone; re-render in place.
		if err := s.renderAndStore(ctx, detail.Structured, detail.AuthorName, detail.ObservationDate, reportRef); err != nil {
			return nil, "", domainerrors.Wrap(domainerrors.CodeInternal, "render report", err)
		}
		data, err = s.artifacts.Get(ctx, reportRef)
	}
	if err != nil {
		return nil, "", domainerrors.Wrap(domainerrors.CodeInternal, "load report artifact", err)
	}
	return data, reportRef, nil
}

func (s *Service) renderAndStore(ctx context.Context, obs *models.StructuredObservation, authorName, date, reportRef string) error {
	ctx, span := s.tracer.Start(ctx, "submission.render")
	defer span.End()

	content := report.Render(obs, authorName, date, time.Now())
	if err := s.artifacts.Put(ctx, reportRef, content); err != nil {
		span.RecordError(err)
		return err
	}
	s.metrics.ReportsRendered.Inc()
	return nil
}

func translateStoreError(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return domainerrors.New(domainerrors.CodeNotFound, "submission not found")
	}
	return domainerrors.Wrap(domainerrors.CodeInternal, action, err)
}

func artifactKey(prefix, login, date string, now time.Time, ext string) string {
	return fmt.Sprintf("%s/%s_%s_%d.%s", prefix, login, date, now.UnixMilli(), ext)
}
