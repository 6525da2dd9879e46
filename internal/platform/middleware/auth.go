package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"zoowatch/internal/access"
	"zoowatch/pkg/requestcontext"
)

// SessionCookieName is the cookie carrying the signed session token.
const SessionCookieName = "session_id"

// Authenticator resolves a session token into a request-scoped identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*access.Identity, error)
}

type contextKeyIdentity struct{}

// ContextKeyIdentity is exported for tests that inject identities directly.
var ContextKeyIdentity = contextKeyIdentity{}

// GetIdentity retrieves the authenticated identity from the context.
// Returns nil when the request carried no valid session.
func GetIdentity(ctx context.Context) *access.Identity {
	ident, ok := ctx.Value(ContextKeyIdentity).(*access.Identity)
	if !ok {
		return nil
	}
	return ident
}

// WithIdentity injects an identity into a context. Test helper.
func WithIdentity(ctx context.Context, ident *access.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, ident)
}

// RequireAuth validates the session cookie (or a Bearer token for API
// clients) and injects the identity into the context. Requests without a
// valid session are rejected with 401.
func RequireAuth(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := tokenFromRequest(r)
			if token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing session",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
				)
				writeUnauthorized(w)
				return
			}

			ident, err := auth.Authenticate(ctx, token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid session",
					"request_id", requestcontext.RequestID(ctx),
					"path", r.URL.Path,
					"error", err,
				)
				writeUnauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, ident)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	const bearerPrefix = "Bearer "
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix); ok {
		return after
	}
	return ""
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","message":"authentication required"}`))
}
