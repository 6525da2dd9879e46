// Package audit records key actions in the submission pipeline. Events flow
// through a buffered channel into a background worker, so emitting never
// blocks or fails a request; at worst events are dropped and logged.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"zoowatch/pkg/requestcontext"
)

// Sink receives audit events. Implementations: in-memory ring (development),
// Kafka (production).
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher accepts events from services and hands them to the worker.
type Publisher struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewPublisher(buffer int, logger *slog.Logger) *Publisher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Publisher{
		inbox:  make(chan Event, buffer),
		logger: logger,
	}
}

// Emit enriches and enqueues an event. A full inbox drops the event with a
// warning rather than blocking the request path.
func (p *Publisher) Emit(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"action", event.Action,
			"actor_id", event.ActorID.String(),
		)
	}
}

// Inbox exposes the channel for the worker.
func (p *Publisher) Inbox() <-chan Event {
	return p.inbox
}

// Worker consumes audit events from the publisher and persists them to the
// sink. Sink failures are logged, never propagated.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to append audit event",
					"action", event.Action,
					"error", err,
				)
			}
		}
	}
}
