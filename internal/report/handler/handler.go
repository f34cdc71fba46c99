// Package handler exposes the reporting projection over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hearth/internal/platform/middleware"
	"hearth/internal/report"
	"hearth/internal/transport/http/shared"
)

// Service defines the interface for reporting reads.
type Service interface {
	Summary(ctx context.Context) (*report.Summary, error)
}

// Handler handles reporting endpoints.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{service: service, logger: logger, jwtValidator: jwtValidator}
}

// Register mounts the reporting routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Use(middleware.RequireRole(middleware.RoleAdmin, h.logger))
		r.Get("/summary", h.handleSummary)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "summary rebuild failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, summary)
}
