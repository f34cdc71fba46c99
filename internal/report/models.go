package report

import "time"

// Summary is the on-demand reporting projection: status counts for both
// workflows plus the top-performing agents. It is recomputed from the
// persisted records at read time, never incrementally maintained.
type Summary struct {
	Registrations map[string]int     `json:"registrations"`
	Applications  map[string]int     `json:"applications"`
	TopAgents     []AgentPerformance `json:"top_agents"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// AgentPerformance tallies one bank agent's applications. Open applications
// count toward Pending and Total but are excluded from the approval-rate
// denominator.
type AgentPerformance struct {
	AgentID      string  `json:"agent_id"`
	Approved     int     `json:"approved"`
	Rejected     int     `json:"rejected"`
	Pending      int     `json:"pending"`
	Total        int     `json:"total"`
	ApprovalRate float64 `json:"approval_rate"`
}
