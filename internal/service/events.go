package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	tfotel "github.com/Strob0t/TaskForge/internal/adapter/otel"
	"github.com/Strob0t/TaskForge/internal/domain/event"
	"github.com/Strob0t/TaskForge/internal/logger"
	"github.com/Strob0t/TaskForge/internal/port/broadcast"
	"github.com/Strob0t/TaskForge/internal/port/messagequeue"
	"github.com/Strob0t/TaskForge/internal/resilience"
)

// EventSink receives change events after a mutation has committed.
type EventSink interface {
	Publish(ctx context.Context, ch event.Change)
}

// EventPublisher fans change events out to connected websocket clients and
// to the message queue. Delivery is best-effort: a failing queue never
// fails the mutation that produced the event.
type EventPublisher struct {
	hub     broadcast.Broadcaster
	queue   messagequeue.Queue
	breaker *resilience.Breaker
	metrics *tfotel.Metrics
	now     func() time.Time
}

// NewEventPublisher creates a publisher. queue may be nil when no message
// broker is configured; hub may be nil when no websocket hub is mounted.
func NewEventPublisher(hub broadcast.Broadcaster, queue messagequeue.Queue, breaker *resilience.Breaker) *EventPublisher {
	if hub == nil {
		hub = broadcast.Nop{}
	}
	return &EventPublisher{hub: hub, queue: queue, breaker: breaker, now: time.Now}
}

// SetMetrics attaches the drop counter.
func (p *EventPublisher) SetMetrics(m *tfotel.Metrics) { p.metrics = m }

// Publish implements EventSink.
func (p *EventPublisher) Publish(ctx context.Context, ch event.Change) {
	if ch.OccurredAt.IsZero() {
		ch.OccurredAt = p.now().UTC()
	}
	if ch.RequestID == "" {
		ch.RequestID = logger.RequestID(ctx)
	}

	p.hub.BroadcastEvent(ctx, string(ch.Type), ch)

	if p.queue == nil {
		return
	}
	subject, ok := messagequeue.SubjectFor(ch.Type)
	if !ok {
		slog.WarnContext(ctx, "no subject for change event", "type", ch.Type)
		return
	}
	data, err := json.Marshal(ch)
	if err != nil {
		p.dropped(ctx, ch, subject, err)
		return
	}

	publish := func(ctx context.Context) error {
		return p.queue.Publish(ctx, subject, data)
	}
	if p.breaker != nil {
		err = p.breaker.Execute(ctx, publish)
	} else {
		err = publish(ctx)
	}
	if err != nil {
		p.dropped(ctx, ch, subject, err)
	}
}

func (p *EventPublisher) dropped(ctx context.Context, ch event.Change, subject string, err error) {
	slog.WarnContext(ctx, "change event dropped",
		"type", ch.Type, "entity_id", ch.EntityID, "subject", subject, "error", err)
	if p.metrics != nil {
		p.metrics.Inc(ctx, p.metrics.EventsDropped, attribute.String("event.type", string(ch.Type)))
	}
}
