package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"zoowatch/internal/access"
	"zoowatch/internal/platform/middleware"
	"zoowatch/internal/submission/models"
	"zoowatch/internal/transport/http/shared"
	"zoowatch/pkg/domainerrors"
	"zoowatch/pkg/requestcontext"
)

// maxUploadBytes caps a single audio upload. Typical voice notes are a few
// megabytes; anything past this is rejected before buffering.
const maxUploadBytes = 32 << 20

// Service is the submission surface the handler depends on.
type Service interface {
	Submit(ctx context.Context, ident *access.Identity, audio []byte, date string) (*models.Submission, error)
	Get(ctx context.Context, ident *access.Identity, id uuid.UUID) (*models.SubmissionDetail, error)
	ListMine(ctx context.Context, ident *access.Identity) ([]*models.Submission, error)
	ListAll(ctx context.Context, ident *access.Identity) ([]*models.Submission, error)
	Update(ctx context.Context, ident *access.Identity, id uuid.UUID, obs *models.StructuredObservation) (*models.SubmissionDetail, error)
	AddComment(ctx context.Context, ident *access.Identity, id uuid.UUID, content string) (*models.Comment, error)
	Report(ctx context.Context, ident *access.Identity, id uuid.UUID) ([]byte, string, error)
}

// Handler exposes the submission pipeline over HTTP. Every route requires an
// authenticated session; per-role decisions live in the service layer.
type Handler struct {
	submissions Service
	auth        middleware.Authenticator
	logger      *slog.Logger
}

func New(submissions Service, auth middleware.Authenticator, logger *slog.Logger) *Handler {
	return &Handler{submissions: submissions, auth: auth, logger: logger}
}

// Register mounts the submission routes.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.auth, h.logger))

		r.Post("/submissions", h.handleSubmit)
		r.Get("/submissions", h.handleListAll)
		r.Get("/submissions/mine", h.handleListMine)
		r.Get("/submissions/{id}", h.handleGet)
		r.Put("/submissions/{id}", h.handleUpdate)
		r.Post("/submissions/{id}/comments", h.handleAddComment)
		r.Get("/submissions/{id}/report", h.handleReport)
	})
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ident := middleware.GetIdentity(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "multipart form with an audio file is required"))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, _, err := r.FormFile("audio")
	if err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "audio file is required"))
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		shared.WriteError(w, domainerrors.Wrap(domainerrors.CodeBadRequest, "read audio file", err))
		return
	}

	sub, err := h.submissions.Submit(ctx, ident, audio, r.FormValue("date"))
	if err != nil {
		h.logError(ctx, "submit failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"message":        "Audio processed successfully",
		"submissionId":   sub.ID.String(),
		"structuredData": sub.Structured,
	})
}

func (h *Handler) handleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subs, err := h.submissions.ListMine(ctx, middleware.GetIdentity(ctx))
	if err != nil {
		h.logError(ctx, "list own submissions failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subs, err := h.submissions.ListAll(ctx, middleware.GetIdentity(ctx))
	if err != nil {
		h.logError(ctx, "list submissions failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := submissionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	detail, err := h.submissions.Get(ctx, middleware.GetIdentity(ctx), id)
	if err != nil {
		h.logError(ctx, "get submission failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := submissionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		StructuredData *models.StructuredObservation `json:"structuredData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "invalid request body"))
		return
	}

	detail, err := h.submissions.Update(ctx, middleware.GetIdentity(ctx), id, req.StructuredData)
	if err != nil {
		h.logError(ctx, "update submission failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := submissionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "invalid request body"))
		return
	}

	comment, err := h.submissions.AddComment(ctx, middleware.GetIdentity(ctx), id, req.Content)
	if err != nil {
		h.logError(ctx, "add comment failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, comment)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := submissionID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	data, ref, err := h.submissions.Report(ctx, middleware.GetIdentity(ctx), id)
	if err != nil {
		h.logError(ctx, "download report failed", err)
		shared.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", path.Base(ref)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func submissionID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, domainerrors.New(domainerrors.CodeBadRequest, "invalid submission id")
	}
	return id, nil
}

// logError keeps handler logs focused on unexpected failures; expected coded
// errors (validation, auth, not found) already carry their own response shape.
func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if domainerrors.CodeOf(err) != domainerrors.CodeInternal {
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
