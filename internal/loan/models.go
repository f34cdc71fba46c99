package loan

import "time"

// Status is the lifecycle state of a loan application.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// decidableFrom are the states a final decision may be taken from. A bank
// agent may decide straight from pending without marking the application
// under review first; both paths are legal.
var decidableFrom = []Status{StatusPending, StatusUnderReview}

// Application is a buyer's loan request. PropertyID is empty for
// pre-approval requests; the core never resolves it. InterestRate and
// MonthlyPayment are computed at submission time and never user-editable.
type Application struct {
	ID             string
	ApplicantID    string
	PropertyID     string
	SelectedBankID string
	BankAgentID    string

	LoanAmount       float64
	LoanTermYears    int
	InterestRate     *float64
	MonthlyPayment   *float64
	EmploymentStatus string
	AnnualIncome     float64

	IncludeInsurance       bool
	MonthlyInsuranceAmount *float64

	IdentityCardRef  string
	ProofOfIncomeRef string

	Status            Status
	BankAgentDecision string
	BankAgentNotes    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TotalMonthlyOutlay is the quoted payment plus the insurance rider when one
// is attached.
func (a *Application) TotalMonthlyOutlay() float64 {
	if a.MonthlyPayment == nil {
		return 0
	}
	total := *a.MonthlyPayment
	if a.IncludeInsurance && a.MonthlyInsuranceAmount != nil {
		total += *a.MonthlyInsuranceAmount
	}
	return total
}

// Decision carries the fields a bank agent's decision writes onto an open
// application.
type Decision struct {
	Status       Status
	DecisionText string
	Notes        string
	DecidedAt    time.Time
}
