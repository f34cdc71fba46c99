package audit

import (
	"context"
	"log/slog"
)

// ChannelSink decouples request handling from the downstream sink: Append
// enqueues without blocking the caller, and a Worker drains the queue. A full
// queue drops the event rather than stalling a decision write.
type ChannelSink struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewChannelSink(size int, logger *slog.Logger) *ChannelSink {
	return &ChannelSink{inbox: make(chan Event, size), logger: logger}
}

func (s *ChannelSink) Append(_ context.Context, event Event) error {
	select {
	case s.inbox <- event:
	default:
		s.logger.Warn("audit queue full, dropping event",
			"action", event.Action,
			"entity_id", event.EntityID,
		)
	}
	return nil
}

// Worker consumes queued events and forwards them to the terminal sink.
type Worker struct {
	source *ChannelSink
	sink   Sink
	logger *slog.Logger
}

func NewWorker(source *ChannelSink, sink Sink, logger *slog.Logger) *Worker {
	return &Worker{source: source, sink: sink, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.source.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				w.logger.Error("audit sink append failed",
					"error", err,
					"action", event.Action,
					"entity_id", event.EntityID,
				)
			}
		}
	}
}
