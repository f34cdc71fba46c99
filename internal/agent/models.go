package agent

import (
	"time"

	"hearth/internal/validate"
)

// Status is the lifecycle state of a bank-agent registration. Both decided
// states are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Registration is a bank-agent candidate's submitted credentials awaiting an
// administrator's decision. Records are never deleted; a decided registration
// keeps its review trail forever.
type Registration struct {
	ID     string
	UserID string

	FirstName   string
	LastName    string
	DateOfBirth time.Time
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

	// Opaque document references; capture and storage live outside the core.
	NationalIDDocRef    string
	EmploymentLetterRef string

	Status          Status
	SubmittedAt     time.Time
	ReviewedAt      *time.Time
	ReviewedBy      string
	AdminNotes      string
	RejectionReason string
}

// Age derives the candidate's age from the stored date of birth. It is
// computed at read time and never persisted.
func (r *Registration) Age(now time.Time) int {
	return validate.AgeAt(r.DateOfBirth, now)
}

// Decision carries the fields an administrator's decision writes onto a
// pending registration.
type Decision struct {
	Status          Status
	ReviewedBy      string
	ReviewedAt      time.Time
	AdminNotes      string
	RejectionReason string
}
