// Package handler exposes the loan application workflow over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hearth/internal/loan"
	"hearth/internal/platform/middleware"
	"hearth/internal/transport/http/shared"
	dErrors "hearth/pkg/domain-errors"
)

// Service defines the interface for application operations.
type Service interface {
	Submit(ctx context.Context, applicantID string, in loan.SubmitInput) (*loan.Application, error)
	Decide(ctx context.Context, id string, outcome loan.Status, agentID, decisionText, notes string) (*loan.Application, error)
	MarkUnderReview(ctx context.Context, id, agentID string) (*loan.Application, error)
	Get(ctx context.Context, id string) (*loan.Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]*loan.Application, error)
	ListByAgent(ctx context.Context, agentID string) ([]*loan.Application, error)
}

// Handler handles loan application endpoints.
type Handler struct {
	service      Service
	logger       *slog.Logger
	jwtValidator middleware.JWTValidator
}

func New(service Service, logger *slog.Logger, jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{service: service, logger: logger, jwtValidator: jwtValidator}
}

// Register mounts the application routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/applications", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
		r.Post("/", h.handleSubmit)
		r.Get("/", h.handleList)
		r.Get("/{id}", h.handleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(middleware.RoleAgent, h.logger))
			r.Post("/{id}/decision", h.handleDecide)
		})
	})
}

type submitRequest struct {
	PropertyID       string `json:"property_id"`
	PropertyValue    string `json:"property_value"`
	SelectedBankID   string `json:"selected_bank_id"`
	BankInterestRate string `json:"bank_interest_rate"`

	LoanAmount       string `json:"loan_amount"`
	LoanTermYears    string `json:"loan_term_years"`
	EmploymentStatus string `json:"employment_status"`
	AnnualIncome     string `json:"annual_income"`

	IncludeInsurance       bool   `json:"include_insurance"`
	MonthlyInsuranceAmount string `json:"monthly_insurance_amount"`

	IdentityCardImage  string `json:"identity_card_image"`
	ProofOfIncomeImage string `json:"proof_of_income_image"`
}

type decideRequest struct {
	Outcome  string `json:"outcome"`
	Decision string `json:"decision"`
	Notes    string `json:"notes"`
}

type applicationResponse struct {
	ID                     string    `json:"id"`
	ApplicantID            string    `json:"applicant_id"`
	PropertyID             string    `json:"property_id,omitempty"`
	SelectedBankID         string    `json:"selected_bank_id"`
	BankAgentID            string    `json:"bank_agent_id,omitempty"`
	LoanAmount             float64   `json:"loan_amount"`
	LoanTermYears          int       `json:"loan_term_years"`
	InterestRate           *float64  `json:"interest_rate,omitempty"`
	MonthlyPayment         *float64  `json:"monthly_payment,omitempty"`
	TotalMonthlyOutlay     float64   `json:"total_monthly_outlay"`
	IncludeInsurance       bool      `json:"include_insurance"`
	MonthlyInsuranceAmount *float64  `json:"monthly_insurance_amount,omitempty"`
	Status                 string    `json:"status"`
	BankAgentDecision      string    `json:"bank_agent_decision,omitempty"`
	BankAgentNotes         string    `json:"bank_agent_notes,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

func toResponse(app *loan.Application) applicationResponse {
	return applicationResponse{
		ID:                     app.ID,
		ApplicantID:            app.ApplicantID,
		PropertyID:             app.PropertyID,
		SelectedBankID:         app.SelectedBankID,
		BankAgentID:            app.BankAgentID,
		LoanAmount:             app.LoanAmount,
		LoanTermYears:          app.LoanTermYears,
		InterestRate:           app.InterestRate,
		MonthlyPayment:         app.MonthlyPayment,
		TotalMonthlyOutlay:     app.TotalMonthlyOutlay(),
		IncludeInsurance:       app.IncludeInsurance,
		MonthlyInsuranceAmount: app.MonthlyInsuranceAmount,
		Status:                 string(app.Status),
		BankAgentDecision:      app.BankAgentDecision,
		BankAgentNotes:         app.BankAgentNotes,
		CreatedAt:              app.CreatedAt,
		UpdatedAt:              app.UpdatedAt,
	}
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	applicantID := middleware.GetUserID(ctx)

	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	app, err := h.service.Submit(ctx, applicantID, loan.SubmitInput{
		PropertyID:             req.PropertyID,
		PropertyValue:          req.PropertyValue,
		SelectedBankID:         req.SelectedBankID,
		BankInterestRate:       req.BankInterestRate,
		LoanAmount:             req.LoanAmount,
		LoanTermYears:          req.LoanTermYears,
		EmploymentStatus:       req.EmploymentStatus,
		AnnualIncome:           req.AnnualIncome,
		IncludeInsurance:       req.IncludeInsurance,
		MonthlyInsuranceAmount: req.MonthlyInsuranceAmount,
		IdentityCardRef:        req.IdentityCardImage,
		ProofOfIncomeRef:       req.ProofOfIncomeImage,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "application submit rejected",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"id":              app.ID,
		"status":          string(app.Status),
		"interest_rate":   *app.InterestRate,
		"monthly_payment": *app.MonthlyPayment,
	})
}

func (h *Handler) handleDecide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	agentID := middleware.GetUserID(ctx)

	var req decideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	var (
		app *loan.Application
		err error
	)
	// under_review is the optional intermediate step; approved/rejected are
	// final decisions.
	if req.Outcome == string(loan.StatusUnderReview) {
		app, err = h.service.MarkUnderReview(ctx, id, agentID)
	} else {
		app, err = h.service.Decide(ctx, id, loan.Status(req.Outcome), agentID, req.Decision, req.Notes)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "application decision rejected",
			"request_id", middleware.GetRequestID(ctx),
			"application_id", id,
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, toResponse(app))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	app, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	// Buyers may only read their own applications.
	if middleware.GetRole(ctx) == middleware.RoleBuyer && app.ApplicantID != middleware.GetUserID(ctx) {
		shared.WriteError(w, dErrors.New(dErrors.CodeForbidden, "not your application"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(app))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		apps []*loan.Application
		err  error
	)
	switch middleware.GetRole(ctx) {
	case middleware.RoleAgent:
		apps, err = h.service.ListByAgent(ctx, middleware.GetUserID(ctx))
	default:
		apps, err = h.service.ListByApplicant(ctx, middleware.GetUserID(ctx))
	}
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out := make([]applicationResponse, 0, len(apps))
	for _, app := range apps {
		out = append(out, toResponse(app))
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"applications": out})
}
