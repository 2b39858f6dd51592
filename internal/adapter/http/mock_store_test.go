package http_test

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/agent"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/domain/workflow"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

// memStore is an in-memory database.TaskStore, database.WorkflowStore and
// database.AgentDirectory.
type memStore struct {
	mu        sync.Mutex
	seq       int
	clock     time.Time
	tasks     []task.Task
	workflows []workflow.Workflow

	// agentMu guards agents. The assignment gate reads agents from inside
	// UpdateTask's mutator while mu is held.
	agentMu sync.Mutex
	agents  []agent.Agent
}

func newMemStore() *memStore {
	return &memStore{clock: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return prefix + "-" + strconv.Itoa(m.seq)
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

// --- tasks ---

func (m *memStore) CreateTask(_ context.Context, req task.CreateRequest) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	t := task.Task{
		ID:              m.nextID("task"),
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
	m.tasks = append(m.tasks, t)
	return &t, nil
}

func (m *memStore) findTask(id string) int {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *memStore) GetTask(_ context.Context, id string) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.findTask(id)
	if i < 0 {
		return nil, fmt.Errorf("get task %s: %w", id, domain.ErrNotFound)
	}
	t := m.tasks[i]
	return &t, nil
}

func (m *memStore) ListTasks(_ context.Context, f task.ListFilter) ([]task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []task.Task
	for i := len(m.tasks) - 1; i >= 0; i-- {
		t := m.tasks[i]
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
	if f.Offset >= len(out) {
		return nil, nil
	}
	out = out[f.Offset:]
	if len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memStore) UpdateTask(_ context.Context, id string, mutate database.TaskMutator) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.findTask(id)
	if i < 0 {
		return nil, fmt.Errorf("update task %s: %w", id, domain.ErrNotFound)
	}
	cur := m.tasks[i]
	if err := mutate(&cur); err != nil {
		return nil, err
	}
	cur.UpdatedAt = m.tick()
	m.tasks[i] = cur
	return &cur, nil
}

func (m *memStore) DeleteTask(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findTask(id) < 0 {
		return false, nil
	}
	doomed := map[string]bool{id: true}
	for changed := true; changed; {
		changed = false
		for _, t := range m.tasks {
			if t.ParentTaskID != "" && doomed[t.ParentTaskID] && !doomed[t.ID] {
				doomed[t.ID] = true
				changed = true
			}
		}
	}
	kept := m.tasks[:0]
	for _, t := range m.tasks {
		if !doomed[t.ID] {
			kept = append(kept, t)
		}
	}
	m.tasks = kept
	return true, nil
}

func (m *memStore) ListSubtasks(_ context.Context, parentID string) ([]task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []task.Task
	for _, t := range m.tasks {
		if t.ParentTaskID == parentID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) CountSubtasks(_ context.Context, parentIDs []string) (map[string]task.SubtaskCounts, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	want := make(map[string]bool, len(parentIDs))
	for _, id := range parentIDs {
		want[id] = true
	}
	var subtasks []task.Task
	for _, t := range m.tasks {
		if want[t.ParentTaskID] {
			subtasks = append(subtasks, t)
		}
	}
	return task.CountByParent(subtasks), nil
}

// --- workflows ---

func (m *memStore) findWorkflow(id string) int {
	for i := range m.workflows {
		if m.workflows[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *memStore) clearDefaults(projectID, except string) {
	for i := range m.workflows {
		if m.workflows[i].ProjectID == projectID && m.workflows[i].ID != except {
			m.workflows[i].IsDefault = false
		}
	}
}

func (m *memStore) CreateWorkflow(_ context.Context, req workflow.CreateRequest) (*workflow.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.tick()
	w := workflow.Workflow{
		ID:          m.nextID("wf"),
		ProjectID:   req.ProjectID,
		Name:        req.Name,
		Description: req.Description,
		Nodes:       req.Nodes,
		Edges:       req.Edges,
		IsDefault:   req.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if w.IsDefault {
		m.clearDefaults(w.ProjectID, w.ID)
	}
	m.workflows = append(m.workflows, w)
	return &w, nil
}

func (m *memStore) GetWorkflow(_ context.Context, id string) (*workflow.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.findWorkflow(id)
	if i < 0 {
		return nil, fmt.Errorf("get workflow %s: %w", id, domain.ErrNotFound)
	}
	w := m.workflows[i]
	return &w, nil
}

func (m *memStore) ListWorkflows(_ context.Context, projectID string) ([]workflow.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []workflow.Workflow
	for _, w := range m.workflows {
		if projectID == "" || w.ProjectID == projectID {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memStore) UpdateWorkflow(_ context.Context, id string, patch workflow.UpdateRequest) (*workflow.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.findWorkflow(id)
	if i < 0 {
		return nil, fmt.Errorf("update workflow %s: %w", id, domain.ErrNotFound)
	}
	patch.Apply(&m.workflows[i])
	m.workflows[i].UpdatedAt = m.tick()
	if patch.SetsDefault() {
		m.clearDefaults(m.workflows[i].ProjectID, id)
	}
	w := m.workflows[i]
	return &w, nil
}

func (m *memStore) DeleteWorkflow(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.findWorkflow(id)
	if i < 0 {
		return false, nil
	}
	m.workflows = append(m.workflows[:i], m.workflows[i+1:]...)
	return true, nil
}

func (m *memStore) PromoteWorkflowDefault(_ context.Context, id string) (*workflow.Workflow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.findWorkflow(id)
	if i < 0 {
		return nil, fmt.Errorf("promote workflow %s: %w", id, domain.ErrNotFound)
	}
	m.clearDefaults(m.workflows[i].ProjectID, id)
	m.workflows[i].IsDefault = true
	m.workflows[i].UpdatedAt = m.tick()
	w := m.workflows[i]
	return &w, nil
}

// --- agents ---

func (m *memStore) HasActiveTechLead(_ context.Context) (bool, error) {
	m.agentMu.Lock()
	defer m.agentMu.Unlock()
	for i := range m.agents {
		if m.agents[i].IsActiveTechLead() {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) ListAgents(_ context.Context) ([]agent.Agent, error) {
	m.agentMu.Lock()
	defer m.agentMu.Unlock()
	return append([]agent.Agent(nil), m.agents...), nil
}

func (m *memStore) addTechLead() {
	m.agentMu.Lock()
	defer m.agentMu.Unlock()
	m.agents = append(m.agents, agent.Agent{ID: "agent-" + strconv.Itoa(len(m.agents)+1), Name: "lead", Role: agent.RoleTechLead, IsActive: true})
}
