// Package httptransport assembles the public router from the per-domain
// handlers. Business logic stays in the services; this layer only wires
// middleware and mounts routes.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hearth/internal/platform/middleware"
)

// Mounter is implemented by every domain handler.
type Mounter interface {
	Register(r chi.Router)
}

// NewRouter builds the top-level router with the common middleware chain,
// health and metrics endpoints, and every domain handler mounted.
func NewRouter(logger *slog.Logger, handlers ...Mounter) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	for _, h := range handlers {
		h.Register(r)
	}
	return r
}
