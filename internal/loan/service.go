package loan

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"hearth/internal/amortize"
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

// Config holds the injected product defaults; they are deployment
// configuration, not transition logic.
type Config struct {
	// DefaultAnnualRatePercent is quoted when the selected bank supplies no
	// rate of its own.
	DefaultAnnualRatePercent float64
	// DefaultBankAgentID receives applications that no specific agent is
	// routed to.
	DefaultBankAgentID string
}

// Service runs the loan application state machine.
type Service struct {
	store   Store
	auditor AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
	cfg     Config
	now     func() time.Time
}

func NewService(store Store, auditor AuditPublisher, m *metrics.Metrics, logger *slog.Logger, cfg Config) *Service {
	return &Service{
		store:   store,
		auditor: auditor,
		metrics: m,
		logger:  logger,
		cfg:     cfg,
		now:     time.Now,
	}
}

// SubmitInput carries the raw fields of the five-step application form.
// Numeric fields arrive as strings; the service owns parsing them.
type SubmitInput struct {
	PropertyID       string // empty for pre-approval requests
	PropertyValue    string // optional, enables LTV/down-payment ratios
	SelectedBankID   string
	BankInterestRate string // optional rate supplied by the bank selection

	LoanAmount       string
	LoanTermYears    string
	EmploymentStatus string
	AnnualIncome     string

	IncludeInsurance       bool
	MonthlyInsuranceAmount string

	IdentityCardRef  string
	ProofOfIncomeRef string
}

func parsePositiveFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil && v > 0
}

// Submit validates the application, computes the quoted rate and monthly
// payment, and persists a pending record. Field failures are collected into
// one report; nothing is persisted unless every check passes.
func (s *Service) Submit(ctx context.Context, applicantID string, in SubmitInput) (*Application, error) {
	if applicantID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "applicant id is required")
	}

	fields := map[string]string{}

	for _, name := range validate.Required(map[string]string{
		"employment_status": in.EmploymentStatus,
		"selected_bank_id":  in.SelectedBankID,
	}) {
		fields[name] = "is required"
	}

	loanAmount, loanOK := parsePositiveFloat(in.LoanAmount)
	if !loanOK {
		fields["loan_amount"] = "must be a positive number"
	}

	termYears, err := strconv.Atoi(in.LoanTermYears)
	if err != nil || termYears <= 0 {
		fields["loan_term_years"] = "must be a positive whole number of years"
	}

	annualIncome, ok := parsePositiveFloat(in.AnnualIncome)
	if !ok {
		fields["annual_income"] = "must be a positive number"
	}

	if in.IdentityCardRef == "" {
		fields["identity_card_image"] = "document is required"
	}
	if in.ProofOfIncomeRef == "" {
		fields["proof_of_income_image"] = "document is required"
	}

	var insuranceAmount *float64
	if in.IncludeInsurance {
		amount, ok := parsePositiveFloat(in.MonthlyInsuranceAmount)
		if !ok {
			fields["monthly_insurance_amount"] = "must be a positive number when insurance is included"
		} else {
			insuranceAmount = &amount
		}
	}

	rate := s.cfg.DefaultAnnualRatePercent
	if in.BankInterestRate != "" {
		parsed, ok := parsePositiveFloat(in.BankInterestRate)
		if !ok {
			fields["bank_interest_rate"] = "must be a positive number when provided"
		} else {
			rate = parsed
		}
	}

	var propertyValue float64
	if in.PropertyValue != "" {
		parsed, ok := parsePositiveFloat(in.PropertyValue)
		if !ok || (loanOK && parsed < loanAmount) {
			fields["property_value"] = "must be a positive number no smaller than the loan amount"
		} else {
			propertyValue = parsed
		}
	}

	if len(fields) > 0 {
		return nil, dErrors.NewValidation(fields)
	}

	// The quote is derived state: computed once here, never user-editable.
	var quote amortize.Quote
	if propertyValue > 0 {
		quote = amortize.Purchase(propertyValue, propertyValue-loanAmount, rate, termYears)
	} else {
		quote = amortize.Loan(loanAmount, rate, termYears)
	}

	now := s.now()
	monthly := quote.MonthlyPayment
	app := &Application{
		ID:                     uuid.NewString(),
		ApplicantID:            applicantID,
		PropertyID:             in.PropertyID,
		SelectedBankID:         in.SelectedBankID,
		BankAgentID:            s.cfg.DefaultBankAgentID,
		LoanAmount:             loanAmount,
		LoanTermYears:          termYears,
		InterestRate:           &rate,
		MonthlyPayment:         &monthly,
		EmploymentStatus:       in.EmploymentStatus,
		AnnualIncome:           annualIncome,
		IncludeInsurance:       in.IncludeInsurance,
		MonthlyInsuranceAmount: insuranceAmount,
		IdentityCardRef:        in.IdentityCardRef,
		ProofOfIncomeRef:       in.ProofOfIncomeRef,
		Status:                 StatusPending,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	if err := s.store.Insert(ctx, app); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist application")
	}

	s.metrics.IncApplicationSubmitted()
	s.emit(ctx, audit.Event{
		Actor:    applicantID,
		Action:   audit.ActionApplicationSubmitted,
		Entity:   audit.EntityApplication,
		EntityID: app.ID,
	})
	return app, nil
}

// Decide applies a bank agent's final decision. Legal from pending or
// under_review; the intermediate review step is optional. The write is a
// conditional update so a lost race surfaces as a retryable conflict.
func (s *Service) Decide(ctx context.Context, id string, outcome Status, agentID, decisionText, notes string) (*Application, error) {
	if outcome != StatusApproved && outcome != StatusRejected {
		return nil, dErrors.New(dErrors.CodeBadRequest, "outcome must be approved or rejected")
	}

	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, dErrors.NewInvalidTransition(string(current.Status), string(outcome))
	}

	decided, err := s.store.ApplyDecision(ctx, id, decidableFrom, Decision{
		Status:       outcome,
		DecisionText: decisionText,
		Notes:        notes,
		DecidedAt:    s.now(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrStaleState) {
			s.metrics.IncStaleConflict(audit.EntityApplication)
		}
		return nil, err
	}

	s.metrics.IncApplicationDecision(string(outcome))
	s.emit(ctx, audit.Event{
		Actor:    agentID,
		Action:   audit.ActionApplicationDecided,
		Entity:   audit.EntityApplication,
		EntityID: id,
		Outcome:  string(outcome),
		Reason:   decisionText,
	})
	return decided, nil
}

// MarkUnderReview moves a pending application into the optional review step.
func (s *Service) MarkUnderReview(ctx context.Context, id, agentID string) (*Application, error) {
	current, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status != StatusPending {
		return nil, dErrors.NewInvalidTransition(string(current.Status), string(StatusUnderReview))
	}

	updated, err := s.store.ApplyDecision(ctx, id, []Status{StatusPending}, Decision{
		Status:    StatusUnderReview,
		DecidedAt: s.now(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrStaleState) {
			s.metrics.IncStaleConflict(audit.EntityApplication)
		}
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Actor:    agentID,
		Action:   audit.ActionApplicationReviewed,
		Entity:   audit.EntityApplication,
		EntityID: id,
	})
	return updated, nil
}

// Get returns one application by id.
func (s *Service) Get(ctx context.Context, id string) (*Application, error) {
	return s.store.FindByID(ctx, id)
}

// ListByApplicant returns a buyer's applications.
func (s *Service) ListByApplicant(ctx context.Context, applicantID string) ([]*Application, error) {
	return s.store.ListByApplicant(ctx, applicantID)
}

// ListByAgent returns the applications routed to one bank agent.
func (s *Service) ListByAgent(ctx context.Context, agentID string) ([]*Application, error) {
	return s.store.ListByAgent(ctx, agentID)
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
