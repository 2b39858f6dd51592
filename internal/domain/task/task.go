// Package task defines the Task domain entity and its lifecycle rules.
package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/Strob0t/TaskForge/internal/domain"
)

// Status represents the current state of a task.
type Status string

const (
	StatusCreated          Status = "created"
	StatusAssigned         Status = "assigned"
	StatusInProgress       Status = "in_progress"
	StatusReview           Status = "review"
	StatusChangesRequested Status = "changes_requested"
	StatusDone             Status = "done"
	StatusCancelled        Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusCreated, StatusAssigned, StatusInProgress, StatusReview,
		StatusChangesRequested, StatusDone, StatusCancelled:
		return true
	}
	return false
}

// Completed reports whether s counts as finished for completion stamping and
// subtask rollup.
func (s Status) Completed() bool {
	return s == StatusDone || s == StatusCancelled
}

// Priority ranks tasks for agents picking up work.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Task represents a unit of work belonging to a project, optionally nested
// under a parent task.
type Task struct {
	ID              string     `json:"id"`
	ProjectID       string     `json:"project_id"`
	ParentTaskID    string     `json:"parent_task_id,omitempty"`
	Title           string     `json:"title"`
	Description     string     `json:"description,omitempty"`
	Priority        Priority   `json:"priority"`
	Category        string     `json:"category,omitempty"`
	AssignedAgentID string     `json:"assigned_agent_id,omitempty"`
	Status          Status     `json:"status"`
	Result          string     `json:"result,omitempty"`
	Branch          string     `json:"branch,omitempty"`
	SessionID       string     `json:"session_id,omitempty"`
	CostUSD         float64    `json:"cost_usd"`
	TokensIn        int64      `json:"tokens_in"`
	TokensOut       int64      `json:"tokens_out"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at"`

	// Rollup fields, computed at read time for list responses only.
	SubtaskCount          int `json:"subtask_count"`
	CompletedSubtaskCount int `json:"completed_subtask_count"`
}

// CreateRequest holds the fields needed to create a new task.
type CreateRequest struct {
	ProjectID       string   `json:"project_id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Priority        Priority `json:"priority"`
	Category        string   `json:"category"`
	AssignedAgentID string   `json:"assigned_agent_id"`
	ParentTaskID    string   `json:"parent_task_id"`
}

// Validate checks required fields and fills in defaults.
func (r *CreateRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	if r.ProjectID == "" {
		return fmt.Errorf("%w: project_id is required", domain.ErrValidation)
	}
	if r.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if r.Priority == "" {
		r.Priority = PriorityMedium
	}
	if !r.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, r.Priority)
	}
	return nil
}

// UpdateRequest is a partial update. Only non-nil fields are applied.
type UpdateRequest struct {
	Title           *string   `json:"title,omitempty"`
	Description     *string   `json:"description,omitempty"`
	Priority        *Priority `json:"priority,omitempty"`
	Category        *string   `json:"category,omitempty"`
	AssignedAgentID *string   `json:"assigned_agent_id,omitempty"`
	Status          *Status   `json:"status,omitempty"`
	Result          *string   `json:"result,omitempty"`
	Branch          *string   `json:"branch,omitempty"`
	SessionID       *string   `json:"session_id,omitempty"`
	CostUSD         *float64  `json:"cost_usd,omitempty"`
	TokensIn        *int64    `json:"tokens_in,omitempty"`
	TokensOut       *int64    `json:"tokens_out,omitempty"`
}

// Validate checks the values present in the patch.
func (r *UpdateRequest) Validate() error {
	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		if trimmed == "" {
			return fmt.Errorf("%w: title must not be empty", domain.ErrValidation)
		}
		r.Title = &trimmed
	}
	if r.Priority != nil && !r.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", domain.ErrValidation, *r.Priority)
	}
	if r.Status != nil && !r.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrValidation, *r.Status)
	}
	return nil
}

// SetsStatus reports whether the patch writes the given status.
func (r *UpdateRequest) SetsStatus(s Status) bool {
	return r.Status != nil && *r.Status == s
}

// Apply merges the patch into t. completed_at is stamped with now when the
// patch moves the task to done or cancelled and is never cleared. The caller
// is responsible for updated_at.
func (r *UpdateRequest) Apply(t *Task, now time.Time) {
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Priority != nil {
		t.Priority = *r.Priority
	}
	if r.Category != nil {
		t.Category = *r.Category
	}
	if r.AssignedAgentID != nil {
		t.AssignedAgentID = *r.AssignedAgentID
	}
	if r.Result != nil {
		t.Result = *r.Result
	}
	if r.Branch != nil {
		t.Branch = *r.Branch
	}
	if r.SessionID != nil {
		t.SessionID = *r.SessionID
	}
	if r.CostUSD != nil {
		t.CostUSD = *r.CostUSD
	}
	if r.TokensIn != nil {
		t.TokensIn = *r.TokensIn
	}
	if r.TokensOut != nil {
		t.TokensOut = *r.TokensOut
	}
	if r.Status != nil {
		t.Status = *r.Status
		if t.Status.Completed() {
			ts := now
			t.CompletedAt = &ts
		}
	}
}
