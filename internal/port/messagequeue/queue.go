// Package messagequeue defines the message queue port (interface).
package messagequeue

import "context"

// Handler processes a message received from the queue.
// The context carries request-scoped values such as the request ID.
type Handler func(ctx context.Context, subject string, data []byte) error

// Queue is the port interface for publishing and subscribing to messages.
type Queue interface {
	// Publish sends a message to the given subject.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe registers a handler for messages on the given subject.
	// The returned function cancels the subscription.
	Subscribe(ctx context.Context, subject string, handler Handler) (cancel func(), err error)

	// Drain gracefully drains all subscriptions before closing.
	Drain() error

	// Close shuts down the queue connection immediately.
	Close() error

	// IsConnected reports whether the queue is currently connected.
	IsConnected() bool
}

// Subjects carrying change events. Every subject lives under one of the
// two stream prefixes.
const (
	SubjectTaskCreated       = "tasks.created"
	SubjectTaskUpdated       = "tasks.updated"
	SubjectTaskStatusChanged = "tasks.status_changed"
	SubjectTaskDeleted       = "tasks.deleted"

	SubjectWorkflowCreated        = "workflows.created"
	SubjectWorkflowUpdated        = "workflows.updated"
	SubjectWorkflowDeleted        = "workflows.deleted"
	SubjectWorkflowDefaultChanged = "workflows.default_changed"
)

// StreamSubjects are the wildcard subjects captured by the JetStream stream.
var StreamSubjects = []string{"tasks.>", "workflows.>"}
