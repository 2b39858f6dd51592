// Package database defines the database store port (interface).
package database

import (
	"context"

	"github.com/Strob0t/TaskForge/internal/domain/agent"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/domain/workflow"
)

// TaskMutator edits a task in place inside the store's update transaction.
// Returning an error aborts the update and leaves the task untouched.
type TaskMutator func(t *task.Task) error

// TaskStore persists tasks.
type TaskStore interface {
	CreateTask(ctx context.Context, req task.CreateRequest) (*task.Task, error)
	GetTask(ctx context.Context, id string) (*task.Task, error)
	ListTasks(ctx context.Context, filter task.ListFilter) ([]task.Task, error)
	// UpdateTask locks the row, runs mutate on the current record and writes
	// the result back in one transaction. updated_at is stamped on success.
	UpdateTask(ctx context.Context, id string, mutate TaskMutator) (*task.Task, error)
	// DeleteTask removes the task and its subtasks. A missing id reports
	// deleted=false without an error.
	DeleteTask(ctx context.Context, id string) (deleted bool, err error)
	ListSubtasks(ctx context.Context, parentID string) ([]task.Task, error)
	CountSubtasks(ctx context.Context, parentIDs []string) (map[string]task.SubtaskCounts, error)
}

// WorkflowStore persists workflows. Every method that can set is_default
// clears the other defaults of the project in the same transaction.
type WorkflowStore interface {
	CreateWorkflow(ctx context.Context, req workflow.CreateRequest) (*workflow.Workflow, error)
	GetWorkflow(ctx context.Context, id string) (*workflow.Workflow, error)
	ListWorkflows(ctx context.Context, projectID string) ([]workflow.Workflow, error)
	UpdateWorkflow(ctx context.Context, id string, patch workflow.UpdateRequest) (*workflow.Workflow, error)
	DeleteWorkflow(ctx context.Context, id string) (deleted bool, err error)
	PromoteWorkflowDefault(ctx context.Context, id string) (*workflow.Workflow, error)
}

// AgentDirectory is the read-only view of agents the task core depends on.
type AgentDirectory interface {
	HasActiveTechLead(ctx context.Context) (bool, error)
	ListAgents(ctx context.Context) ([]agent.Agent, error)
}

// AgentRegistry is used by operator tooling to maintain the agent table.
type AgentRegistry interface {
	AgentDirectory
	RegisterAgent(ctx context.Context, req agent.RegisterRequest) (*agent.Agent, error)
	SetAgentActive(ctx context.Context, id string, active bool) error
}

// Store combines every persistence port implemented by the postgres adapter.
type Store interface {
	TaskStore
	WorkflowStore
	AgentRegistry
	Ping(ctx context.Context) error
}
