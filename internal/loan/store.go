package loan

import "context"

// Store persists applications. ApplyDecision must be a conditional update on
// status so concurrent decisions cannot double-apply.
type Store interface {
	Insert(ctx context.Context, app *Application) error
	FindByID(ctx context.Context, id string) (*Application, error)
	ListByApplicant(ctx context.Context, applicantID string) ([]*Application, error)
	ListByAgent(ctx context.Context, agentID string) ([]*Application, error)

	// List returns every application; the reporting projection recomputes its
	// summaries from this read.
	List(ctx context.Context) ([]*Application, error)

	// ApplyDecision writes the decision only if the current status is one of
	// from. Returns storage.ErrNotFound for unknown ids and
	// storage.ErrStaleState when the state moved concurrently.
	ApplyDecision(ctx context.Context, id string, from []Status, d Decision) (*Application, error)
}
