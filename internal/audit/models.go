package audit

import "time"

// Event captures a workflow action for the decision trail. Keep it
// transport-agnostic so sinks (memory, Kafka) can fan out.
type Event struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Outcome   string    `json:"outcome,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// Actions emitted by the workflow services.
const (
	ActionRegistrationSubmitted = "registration_submitted"
	ActionRegistrationDecided   = "registration_decided"
	ActionApplicationSubmitted  = "application_submitted"
	ActionApplicationDecided    = "application_decided"
	ActionApplicationReviewed   = "application_marked_under_review"
)

// Entities referenced by audit events.
const (
	EntityRegistration = "bank_agent_registration"
	EntityApplication  = "loan_application"
)
