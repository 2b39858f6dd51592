package service

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/agent"
	"github.com/Strob0t/TaskForge/internal/domain/event"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/domain/workflow"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

var (
	_ database.TaskStore     = (*mockStore)(nil)
	_ database.WorkflowStore = (*mockStore)(nil)
	_ database.AgentRegistry = (*mockAgents)(nil)
)

// mockStore is an in-memory task and workflow store. Timestamps come from a
// monotonic fake clock so ordering is deterministic.
type mockStore struct {
	mu        sync.Mutex
	tasks     map[string]task.Task
	workflows map[string]workflow.Workflow
	clock     time.Time

	// Error hooks to inject failures.
	updateTaskErr error
	countErr      error
	mutatorCalls  int
	promoteCalls  int
}

func newMockStore() *mockStore {
	return &mockStore{
		tasks:     make(map[string]task.Task),
		workflows: make(map[string]workflow.Workflow),
		clock:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick must be called with m.mu held.
func (m *mockStore) tick() time.Time {
	m.clock = m.clock.Add(time.Millisecond)
	return m.clock
}

func (m *mockStore) CreateTask(_ context.Context, req task.CreateRequest) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.ParentTaskID != "" {
		if _, ok := m.tasks[req.ParentTaskID]; !ok {
			return nil, domain.ErrValidation
		}
	}
	now := m.tick()
	t := task.Task{
		ID:              uuid.NewString(),
		ProjectID:       req.ProjectID,
		ParentTaskID:    req.ParentTaskID,
		Title:           req.Title,
		Description:     req.Description,
		Priority:        req.Priority,
		Category:        req.Category,
		AssignedAgentID: req.AssignedAgentID,
		Status:          task.StatusCreated,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.tasks[t.ID] = t
	return &t, nil
}

func (m *mockStore) GetTask(_ context.Context, id string) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (m *mockStore) ListTasks(_ context.Context, f task.ListFilter) ([]task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []task.Task
	for _, t := range m.tasks {
		if f.ProjectID != "" && t.ProjectID != f.ProjectID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if !f.IncludeSubtasks && t.ParentTaskID != "" {
			continue
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b task.Task) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	if f.Offset >= len(out) {
		return []task.Task{}, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *mockStore) UpdateTask(_ context.Context, id string, mutate database.TaskMutator) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateTaskErr != nil {
		return nil, m.updateTaskErr
	}
	cur, ok := m.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	m.mutatorCalls++
	if err := mutate(&cur); err != nil {
		return nil, err
	}
	cur.UpdatedAt = m.tick()
	m.tasks[id] = cur
	return &cur, nil
}

func (m *mockStore) DeleteTask(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return false, nil
	}
	m.deleteTree(id)
	return true, nil
}

// deleteTree must be called with m.mu held.
func (m *mockStore) deleteTree(id string) {
	for childID, t := range m.tasks {
		if t.ParentTaskID == id {
			m.deleteTree(childID)
		}
	}
	delete(m.tasks, id)
}

func (m *mockStore) ListSubtasks(_ context.Context, parentID string) ([]task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []task.Task
	for _, t := range m.tasks {
		if t.ParentTaskID == parentID {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b task.Task) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (m *mockStore) CountSubtasks(_ context.Context, parentIDs []string) (map[string]task.SubtaskCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.countErr != nil {
		return nil, m.countErr
	}
	var subtasks []task.Task
	for _, t := range m.tasks {
		if slices.Contains(parentIDs, t.ParentTaskID) {
			subtasks = append(subtasks, t)
		}
	}
	return task.CountByParent(subtasks), nil
}

func (m *mockStore) CreateWorkflow(_ context.Context, req workflow.CreateRequest) (*workflow.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if req.IsDefault {
		m.clearDefaults(req.ProjectID, "")
	}
	now := m.tick()
	w := workflow.Workflow{
		ID:          uuid.NewString(),
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		Nodes:       req.Nodes,
		Edges:       req.Edges,
		IsDefault:   req.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.workflows[w.ID] = w
	return &w, nil
}

func (m *mockStore) GetWorkflow(_ context.Context, id string) (*workflow.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workflows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &w, nil
}

func (m *mockStore) ListWorkflows(_ context.Context, projectID string) ([]workflow.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []workflow.Workflow
	for _, w := range m.workflows {
		if projectID == "" || w.ProjectID == projectID {
			out = append(out, w)
		}
	}
	slices.SortFunc(out, func(a, b workflow.Workflow) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *mockStore) UpdateWorkflow(_ context.Context, id string, patch workflow.UpdateRequest) (*workflow.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.workflows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.SetsDefault() && !w.IsDefault {
		m.clearDefaults(w.ProjectID, id)
	}
	patch.Apply(&w)
	w.UpdatedAt = m.tick()
	m.workflows[id] = w
	return &w, nil
}

func (m *mockStore) DeleteWorkflow(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.workflows[id]; !ok {
		return false, nil
	}
	delete(m.workflows, id)
	return true, nil
}

func (m *mockStore) PromoteWorkflowDefault(_ context.Context, id string) (*workflow.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promoteCalls++
	w, ok := m.workflows[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	m.clearDefaults(w.ProjectID, id)
	w.IsDefault = true
	w.UpdatedAt = m.tick()
	m.workflows[id] = w
	return &w, nil
}

// clearDefaults must be called with m.mu held.
func (m *mockStore) clearDefaults(projectID, keepID string) {
	for id, w := range m.workflows {
		if w.ProjectID == projectID && w.IsDefault && id != keepID {
			w.IsDefault = false
			m.workflows[id] = w
		}
	}
}

func (m *mockStore) countDefaults(projectID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, w := range m.workflows {
		if w.ProjectID == projectID && w.IsDefault {
			n++
		}
	}
	return n
}

// mockAgents is an in-memory agent directory, separate from mockStore so
// the gate can consult it while a task update holds the store lock.
type mockAgents struct {
	mu     sync.Mutex
	agents []agent.Agent
	err    error
}

func (m *mockAgents) HasActiveTechLead(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for i := range m.agents {
		if m.agents[i].IsActiveTechLead() {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAgents) ListAgents(_ context.Context) ([]agent.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.agents), m.err
}

func (m *mockAgents) RegisterAgent(_ context.Context, req agent.RegisterRequest) (*agent.Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.agents {
		if m.agents[i].Name == req.Name {
			m.agents[i].Role = req.Role
			m.agents[i].IsActive = req.IsActive
			a := m.agents[i]
			return &a, nil
		}
	}
	a := agent.Agent{ID: uuid.NewString(), Name: req.Name, Role: req.Role, IsActive: req.IsActive}
	m.agents = append(m.agents, a)
	return &a, nil
}

func (m *mockAgents) SetAgentActive(_ context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.agents {
		if m.agents[i].ID == id {
			m.agents[i].IsActive = active
			return nil
		}
	}
	return domain.ErrNotFound
}

// mockEvents records published change events.
type mockEvents struct {
	mu      sync.Mutex
	changes []event.Change
}

func (m *mockEvents) Publish(_ context.Context, ch event.Change) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, ch)
}

func (m *mockEvents) types() []event.Type {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]event.Type, len(m.changes))
	for i := range m.changes {
		out[i] = m.changes[i].Type
	}
	return out
}

func (m *mockEvents) last() event.Change {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.changes[len(m.changes)-1]
}
