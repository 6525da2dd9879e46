// Package http assembles the public HTTP surface: middleware chain, health
// probe, and the per-feature route groups under /api.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	identityhandler "zoowatch/internal/identity/handler"
	"zoowatch/internal/platform/metrics"
	"zoowatch/internal/platform/middleware"
	submissionhandler "zoowatch/internal/submission/handler"
)

// requestTimeout bounds every request including the extraction subprocess,
// which itself is capped well below this.
const requestTimeout = 90 * time.Second

// Registrar is anything that can mount its routes onto a chi router.
type Registrar interface {
	Register(r chi.Router)
}

// NewRouter builds the full route tree.
func NewRouter(logger *slog.Logger, m *metrics.Metrics, auth *identityhandler.Handler, submissions *submissionhandler.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Latency(m, "api"))
		for _, h := range []Registrar{auth, submissions} {
			h.Register(api)
		}
	})

	return r
}
