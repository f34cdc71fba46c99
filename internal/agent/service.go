package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hearth/internal/audit"
	"hearth/internal/platform/metrics"
	"hearth/internal/storage"
	"hearth/internal/validate"
	dErrors "hearth/pkg/domain-errors"
)

// AuditPublisher is the slice of the audit package the service needs.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service runs the registration state machine: one submission per user, one
// administrator decision, no transitions out of a decided state.
type Service struct {
	store   Store
	auditor AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	minAge  int
	now     func() time.Time
}

func NewService(store Store, auditor AuditPublisher, m *metrics.Metrics, logger *slog.Logger, minAge int) *Service {
	return &Service{
		store:   store,
		auditor: auditor,
		metrics: m,
		logger:  logger,
		minAge:  minAge,
		now:     time.Now,
	}
}

// SubmitInput carries the raw form fields of a candidate submission. Dates
// and numbers arrive as strings because that is what the form posts; the
// service owns parsing them.
type SubmitInput struct {
	FirstName   string
	LastName    string
	DateOfBirth string // DD/MM/YYYY
	NationalID  string
	Phone       string
	Address     string
	City        string
	PostalCode  string

	BankName        string
	Position        string
	EmployeeID      string
	Department      string
	WorkAddress     string
	SupervisorName  string
	SupervisorPhone string

	NationalIDDocRef    string
	EmploymentLetterRef string
}

// Submit validates the candidate's fields and persists a pending
// registration. All field failures are collected into one report; nothing is
// persisted unless every check passes. Duplicate submissions are rejected by
// the store's insert-if-absent, not by a separate read.
func (s *Service) Submit(ctx context.Context, userID string, in SubmitInput) (*Registration, error) {
	if userID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "user id is required")
	}

	now := s.now()
	fields := map[string]string{}

	for _, name := range validate.Required(map[string]string{
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"address":    in.Address,
		"city":       in.City,
		"bank_name":  in.BankName,
		"position":   in.Position,
		"department": in.Department,
	}) {
		fields[name] = "is required"
	}

	if !validate.NationalID(in.NationalID) {
		fields["national_id"] = "must be exactly 8 digits"
	}
	if !validate.Phone(in.Phone) {
		fields["phone"] = "must be exactly 8 digits"
	}
	if !validate.Phone(in.SupervisorPhone) {
		fields["supervisor_phone"] = "must be exactly 8 digits"
	}
	if !validate.PostalCode(in.PostalCode) {
		fields["postal_code"] = "must be 4 digits when provided"
	}
	if !validate.EmployeeID(in.EmployeeID) {
		fields["employee_id"] = "must be exactly 6 digits"
	}

	dob, ok := validate.ParseDMY(in.DateOfBirth, now)
	if !ok {
		fields["date_of_birth"] = "must be a valid DD/MM/YYYY date in the past"
	} else if !validate.AgeAtLeast(dob, now, s.minAge) {
		fields["date_of_birth"] = "candidate must be at least 20 years old"
	}

	if in.NationalIDDocRef == "" {
		fields["national_id_doc"] = "document is required"
	}
	if in.EmploymentLetterRef == "" {
		fields["employment_letter"] = "document is required"
	}

	if len(fields) > 0 {
		return nil, dErrors.NewValidation(fields)
	}

	reg := &Registration{
		ID:                  uuid.NewString(),
		UserID:              userID,
		FirstName:           in.FirstName,
		LastName:            in.LastName,
		DateOfBirth:         dob,
		NationalID:          in.NationalID,
		Phone:               in.Phone,
		Address:             in.Address,
		City:                in.City,
		PostalCode:          in.PostalCode,
		BankName:            in.BankName,
		Position:            in.Position,
		EmployeeID:          in.EmployeeID,
		Department:          in.Department,
		WorkAddress:         in.WorkAddress,
		SupervisorName:      in.SupervisorName,
		SupervisorPhone:     in.SupervisorPhone,
		NationalIDDocRef:    in.NationalIDDocRef,
		EmploymentLetterRef: in.EmploymentLetterRef,
		Status:              StatusPending,
		SubmittedAt:         now,
	}

	if err := s.store.Insert(ctx, reg); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "user already has a registration")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist registration")
	}

	s.metrics.IncRegistrationSubmitted()
	s.emit(ctx, audit.Event{
		Actor:    userID,
		Action:   audit.ActionRegistrationSubmitted,
		Entity:   audit.EntityRegistration,
		EntityID: reg.ID,
	})
	return reg, nil
}

// Decide applies an administrator's approve/reject decision to a pending
// registration. Rejections must carry a reason. The write is a conditional
// update: losing a race against another reviewer surfaces a retryable
// conflict instead of silently overwriting the first decision.
func (s *Service) Decide(ctx context.Context, id string, outcome Status, reviewerID, notes, rejectionReason string) (*Registration, error) {
	if outcome != StatusApproved && outcome != StatusRejected {
		return nil, dErrors.New(dErrors.CodeBadRequest, "outcome must be approved or rejected")
	}
	if outcome == StatusRejected && rejectionReason == "" {
		return nil, dErrors.NewValidation(map[string]string{
			"rejection_reason": "is required when rejecting",
		})
	}

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusPending {
		return nil, dErrors.NewInvalidTransition(string(current.Status), string(outcome))
	}

	decided, err := s.store.ApplyDecision(ctx, id, StatusPending, Decision{
		Status:          outcome,
		ReviewedBy:      reviewerID,
		ReviewedAt:      s.now(),
		AdminNotes:      notes,
		RejectionReason: rejectionReason,
	})
	if err != nil {
		if errors.Is(err, storage.ErrStaleState) {
			s.metrics.IncStaleConflict(audit.EntityRegistration)
		}
		return nil, err
	}

	s.metrics.IncRegistrationDecision(string(outcome))
	s.emit(ctx, audit.Event{
		Actor:    reviewerID,
		Action:   audit.ActionRegistrationDecided,
		Entity:   audit.EntityRegistration,
		EntityID: id,
		Outcome:  string(outcome),
		Reason:   rejectionReason,
	})
	return decided, nil
}

// Get returns one registration by id.
func (s *Service) Get(ctx context.Context, id string) (*Registration, error) {
	return s.store.FindByID(ctx, id)
}

// GetByUser returns the caller's registration, if any. Callers use this as
// the "has existing registration" check before showing the form.
func (s *Service) GetByUser(ctx context.Context, userID string) (*Registration, error) {
	return s.store.FindByUserID(ctx, userID)
}

// List returns registrations filtered by status; empty status lists all.
func (s *Service) List(ctx context.Context, status Status) ([]*Registration, error) {
	return s.store.ListByStatus(ctx, status)
}

// Age derives a registration's age against the service clock.
func (s *Service) Age(reg *Registration) int {
	return reg.Age(s.now())
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", event.Action,
			"entity_id", event.EntityID,
			"error", err,
		)
	}
}
