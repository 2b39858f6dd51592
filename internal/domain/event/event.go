// Package event defines the change notifications emitted after every
// successful task or workflow mutation.
package event

import "time"

// Type identifies the kind of change.
type Type string

const (
	TypeTaskCreated       Type = "task.created"
	TypeTaskUpdated       Type = "task.updated"
	TypeTaskStatusChanged Type = "task.status_changed"
	TypeTaskDeleted       Type = "task.deleted"

	TypeWorkflowCreated        Type = "workflow.created"
	TypeWorkflowUpdated        Type = "workflow.updated"
	TypeWorkflowDeleted        Type = "workflow.deleted"
	TypeWorkflowDefaultChanged Type = "workflow.default_changed"
)

// Change is the envelope delivered to real-time observers and to the
// message queue.
type Change struct {
	Type       Type      `json:"type"`
	EntityID   string    `json:"entity_id"`
	ProjectID  string    `json:"project_id"`
	Status     string    `json:"status,omitempty"`
	PrevStatus string    `json:"prev_status,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Payload    any       `json:"payload,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
