package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Sink receives audit events. It is append-only so tests can swap in an
// in-memory implementation.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher stamps and forwards audit events to a sink.
type Publisher struct {
	sink Sink
}

func NewPublisher(sink Sink) *Publisher {
	return &Publisher{sink: sink}
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.sink.Append(ctx, event)
}
