// Package handler exposes the registration workflow over HTTP. It stays
// thin: decode, delegate to the service, translate errors.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hearth/internal/agent"
	"hearth/internal/platform/middleware"
	"hearth/internal/transport/http/shared"
	dErrors "hearth/pkg/domain-errors"
)

// Service defines the interface for registration operations.
type Service interface {
	Submit(ctx context.Context, userID string, in agent.SubmitInput) (*agent.Registration, error)
	Decide(ctx context.Context, id string, outcome agent.Status, reviewerID, notes, rejectionReason string) (*agent.Registration, error)
	Get(ctx context.Context, id string) (*agent.Registration, error)
	GetByUser(ctx context.Context, userID string) (*agent.Registration, error)
	List(ctx context.Context, status agent.Status) ([]*agent.Registration, error)
	Age(reg *agent.Registration) int
}

// Handler handles registration endpoints.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{service: service, logger: logger, jwtValidator: jwtValidator}
}

// Register mounts the registration routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/registrations", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/", h.handleSubmit)
		r.Get("/me", h.handleGetMine)
		r.Get("/{id}", h.handleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(middleware.RoleAdmin, h.logger))
			r.Get("/", h.handleList)
			r.Post("/{id}/decision", h.handleDecide)
		})
	})
}

type submitRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	NationalID  string `json:"national_id"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`

	BankName        string `json:"bank_name"`
	Position        string `json:"position"`
	EmployeeID      string `json:"employee_id"`
	Department      string `json:"department"`
	WorkAddress     string `json:"work_address"`
	SupervisorName  string `json:"supervisor_name"`
	SupervisorPhone string `json:"supervisor_phone"`

	NationalIDDoc    string `json:"national_id_doc"`
	EmploymentLetter string `json:"employment_letter"`
}

type decideRequest struct {
	Outcome         string `json:"outcome"`
	Notes           string `json:"notes"`
	RejectionReason string `json:"rejection_reason"`
}

type registrationResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Age             int        `json:"age"`
	BankName        string     `json:"bank_name"`
	Position        string     `json:"position"`
	Status          string     `json:"status"`
	SubmittedAt     time.Time  `json:"submitted_at"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
	ReviewedBy      string     `json:"reviewed_by,omitempty"`
	AdminNotes      string     `json:"admin_notes,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

func (h *Handler) toResponse(reg *agent.Registration) registrationResponse {
	return registrationResponse{
		ID:              reg.ID,
		UserID:          reg.UserID,
		FirstName:       reg.FirstName,
		LastName:        reg.LastName,
		Age:             h.service.Age(reg),
		BankName:        reg.BankName,
		Position:        reg.Position,
		Status:          string(reg.Status),
		SubmittedAt:     reg.SubmittedAt,
		ReviewedAt:      reg.ReviewedAt,
		ReviewedBy:      reg.ReviewedBy,
		AdminNotes:      reg.AdminNotes,
		RejectionReason: reg.RejectionReason,
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	reg, err := h.service.Submit(ctx, userID, agent.SubmitInput{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		DateOfBirth:         req.DateOfBirth,
		NationalID:          req.NationalID,
		Phone:               req.Phone,
		Address:             req.Address,
		City:                req.City,
		PostalCode:          req.PostalCode,
		BankName:            req.BankName,
		Position:            req.Position,
		EmployeeID:          req.EmployeeID,
		Department:          req.Department,
		WorkAddress:         req.WorkAddress,
		SupervisorName:      req.SupervisorName,
		SupervisorPhone:     req.SupervisorPhone,
		NationalIDDocRef:    req.NationalIDDoc,
		EmploymentLetterRef: req.EmploymentLetter,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration submit rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]string{
		"id":     reg.ID,
		"status": string(reg.Status),
	})
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	reg, err := h.service.Decide(ctx, id, agent.Status(req.Outcome), middleware.GetUserID(ctx), req.Notes, req.RejectionReason)
	if err != nil {
		h.logger.WarnContext(ctx, "registration decision rejected",
			"request_id", middleware.GetRequestID(ctx),
			"registration_id", id,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, h.toResponse(reg))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	reg, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, h.toResponse(reg))
}

// handleGetMine is the "has existing registration" check buyers hit before
// showing the form.
func (h *Handler) handleGetMine(w http.ResponseWriter, r *http.Request) {
	reg, err := h.service.GetByUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, h.toResponse(reg))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	status := agent.Status(r.URL.Query().Get("status"))
	regs, err := h.service.List(r.Context(), status)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]registrationResponse, 0, len(regs))
	for _, reg := range regs {
		out = append(out, h.toResponse(reg))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"registrations": out})
}
