package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"zoowatch/internal/access"
	"zoowatch/internal/platform/middleware"
	"zoowatch/internal/session"
	"zoowatch/internal/transport/http/shared"
	"zoowatch/pkg/domainerrors"
	"zoowatch/pkg/requestcontext"
)

// Service defines the auth operations the handler needs.
type Service interface {
	Login(ctx context.Context, login, password, userAgent string) (*session.Session, string, error)
	Logout(ctx context.Context, token string) error
}

// Handler serves login, logout and the current-user endpoint.
type Handler struct {
	auth       Service
	middleware middleware.Authenticator
	logger     *slog.Logger
	sessionTTL time.Duration
}

func New(auth Service, authenticator middleware.Authenticator, logger *slog.Logger, sessionTTL time.Duration) *Handler {
	return &Handler{auth: auth, middleware: authenticator, logger: logger, sessionTTL: sessionTTL}
}

// Register mounts the auth routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.middleware, h.logger))
		r.Get("/auth/user", h.handleCurrentUser)
	})
}

type loginRequest struct {
	UserID   string `json:"userId"`
	Password string `json:"password"`
}

type userResponse struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Role   string `json:"role"`
	Name   string `json:"name"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.UserID == "" || req.Password == "" {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeBadRequest, "userId and password are required"))
		return
	}

	sess, token, err := h.auth.Login(ctx, req.UserID, req.Password, r.UserAgent())
	if err != nil {
		if !domainerrors.Is(err, domainerrors.CodeUnauthorized) {
			h.logger.ErrorContext(ctx, "login failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
		shared.WriteError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   int(h.sessionTTL.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})

	shared.WriteJSON(w, http.StatusOK, map[string]userResponse{
		"user": {
			ID:     sess.UserID.String(),
			UserID: sess.Login,
			Role:   string(sess.Role),
			Name:   sess.Name,
		},
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.auth.Logout(ctx, cookie.Value); err != nil {
			h.logger.ErrorContext(ctx, "logout failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			shared.WriteError(w, err)
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})

	shared.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

func (h *Handler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	ident := middleware.GetIdentity(r.Context())
	if ident == nil {
		shared.WriteError(w, domainerrors.New(domainerrors.CodeUnauthorized, "authentication required"))
		return
	}
	writeIdentity(w, ident)
}

func writeIdentity(w http.ResponseWriter, ident *access.Identity) {
	shared.WriteJSON(w, http.StatusOK, userResponse{
		ID:     ident.UserID.String(),
		UserID: ident.Login,
		Role:   string(ident.Role),
		Name:   ident.Name,
	})
}
