package agent

import "context"

// Store persists registrations. Implementations must make Insert an atomic
// insert-if-absent keyed by UserID and ApplyDecision a conditional update
// that only succeeds while the record is still in the expected state.
type Store interface {
	// Insert stores a new registration. Returns storage.ErrDuplicate when the
	// user already has one, whatever its status.
	Insert(ctx context.Context, reg *Registration) error

	FindByID(ctx context.Context, id string) (*Registration, error)
	FindByUserID(ctx context.Context, userID string) (*Registration, error)

	// ListByStatus returns registrations in the given state; the empty status
	// lists everything.
	ListByStatus(ctx context.Context, status Status) ([]*Registration, error)

	// ApplyDecision writes the decision only if the record's current status
	// still equals from. Returns storage.ErrNotFound for unknown ids and
	// storage.ErrStaleState when another writer got there first.
	ApplyDecision(ctx context.Context, id string, from Status, d Decision) (*Registration, error)
}
