package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	tfotel "github.com/Strob0t/TaskForge/internal/adapter/otel"
	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/event"
	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

// TaskService owns the task lifecycle: creation under a parent, filtered
// listing with subtask rollup, the tech lead gate on assignment and
// completion stamping.
type TaskService struct {
	store   database.TaskStore
	agents  database.AgentDirectory
	events  EventSink
	metrics *tfotel.Metrics
	strict  bool
	now     func() time.Time
}

// NewTaskService creates a new TaskService. events may be nil.
func NewTaskService(store database.TaskStore, agents database.AgentDirectory, events EventSink) *TaskService {
	return &TaskService{store: store, agents: agents, events: events, now: time.Now}
}

// SetMetrics attaches metric instruments.
func (s *TaskService) SetMetrics(m *tfotel.Metrics) { s.metrics = m }

// SetStrictTransitions makes Update reject status changes that are not
// edges of the task state machine.
func (s *TaskService) SetStrictTransitions(strict bool) { s.strict = strict }

// Create validates req and stores a new task. A parent must exist in the
// same project.
func (s *TaskService) Create(ctx context.Context, req task.CreateRequest) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ParentTaskID != "" {
		parent, err := s.store.GetTask(ctx, req.ParentTaskID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: parent task %s not found", domain.ErrValidation, req.ParentTaskID)
		}
		if err != nil {
			return nil, fmt.Errorf("get parent task: %w", err)
		}
		if parent.ProjectID != req.ProjectID {
			return nil, fmt.Errorf("%w: parent task %s belongs to another project", domain.ErrValidation, req.ParentTaskID)
		}
	}

	ctx, span := tfotel.StartTaskSpan(ctx, "create", "")
	start := time.Now()
	t, err := s.store.CreateTask(ctx, req)
	s.metrics.RecordStoreCall(ctx, "create_task", time.Since(start).Seconds(), err)
	tfotel.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Inc(ctx, s.metrics.TasksCreated, attribute.String("project.id", t.ProjectID))
	}
	s.emit(ctx, event.Change{
		Type:      event.TypeTaskCreated,
		EntityID:  t.ID,
		ProjectID: t.ProjectID,
		Status:    string(t.Status),
		Payload:   t,
	})
	return t, nil
}

// Get returns a task by ID.
func (s *TaskService) Get(ctx context.Context, id string) (*task.Task, error) {
	return s.store.GetTask(ctx, id)
}

// List returns one page of tasks matching filter, each carrying the rollup
// of its direct subtasks.
func (s *TaskService) List(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	if err := filter.Normalize(); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(tasks) == 0 {
		return []task.Task{}, nil
	}

	counts, err := s.store.CountSubtasks(ctx, task.IDs(tasks))
	if err != nil {
		return nil, fmt.Errorf("count subtasks: %w", err)
	}
	task.ApplyRollup(tasks, counts)
	return tasks, nil
}

// ListSubtasks returns the direct subtasks of parentID, oldest first.
func (s *TaskService) ListSubtasks(ctx context.Context, parentID string) ([]task.Task, error) {
	if _, err := s.store.GetTask(ctx, parentID); err != nil {
		return nil, err
	}
	subtasks, err := s.store.ListSubtasks(ctx, parentID)
	if err != nil {
		return nil, err
	}
	if subtasks == nil {
		subtasks = []task.Task{}
	}
	return subtasks, nil
}

// Update applies a partial update. Moving a task to assigned requires an
// active tech lead at the time of the call; in strict mode the status
// change must also be an edge of the state machine. A rejected update
// leaves the task untouched.
func (s *TaskService) Update(ctx context.Context, id string, req task.UpdateRequest) (*task.Task, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tfotel.StartTaskSpan(ctx, "update", id)
	var prev task.Status
	start := time.Now()
	t, err := s.store.UpdateTask(ctx, id, func(cur *task.Task) error {
		prev = cur.Status
		if err := s.checkStatusChange(ctx, cur, req); err != nil {
			return err
		}
		req.Apply(cur, s.now().UTC())
		return nil
	})
	s.metrics.RecordStoreCall(ctx, "update_task", time.Since(start).Seconds(), err)
	tfotel.EndSpan(span, err)
	if err != nil {
		if errors.Is(err, domain.ErrNoTechLeadAvailable) {
			slog.WarnContext(ctx, "task assignment rejected", "task_id", id, "reason", "no active tech lead")
			if s.metrics != nil {
				s.metrics.Inc(ctx, s.metrics.GateRejections)
			}
		}
		return nil, err
	}

	s.emit(ctx, event.Change{
		Type:      event.TypeTaskUpdated,
		EntityID:  t.ID,
		ProjectID: t.ProjectID,
		Status:    string(t.Status),
		Payload:   t,
	})
	if t.Status != prev {
		slog.InfoContext(ctx, "task status changed", "task_id", t.ID, "from", prev, "to", t.Status)
		s.metrics.RecordStatusChange(ctx, string(prev), string(t.Status))
		s.emit(ctx, event.Change{
			Type:       event.TypeTaskStatusChanged,
			EntityID:   t.ID,
			ProjectID:  t.ProjectID,
			Status:     string(t.Status),
			PrevStatus: string(prev),
			Payload:    t,
		})
	}
	return t, nil
}

// checkStatusChange runs inside the store transaction, before the patch is
// applied to cur.
func (s *TaskService) checkStatusChange(ctx context.Context, cur *task.Task, req task.UpdateRequest) error {
	if req.Status == nil {
		return nil
	}
	if req.SetsStatus(task.StatusAssigned) {
		ok, err := s.agents.HasActiveTechLead(ctx)
		if err != nil {
			return fmt.Errorf("check tech lead: %w", err)
		}
		if !ok {
			return domain.ErrNoTechLeadAvailable
		}
	}
	if s.strict && !task.CanTransition(cur.Status, *req.Status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, cur.Status, *req.Status)
	}
	return nil
}

// Delete removes a task and its subtasks.
func (s *TaskService) Delete(ctx context.Context, id string) error {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	ctx, span := tfotel.StartTaskSpan(ctx, "delete", id)
	deleted, err := s.store.DeleteTask(ctx, id)
	tfotel.EndSpan(span, err)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.emit(ctx, event.Change{
		Type:      event.TypeTaskDeleted,
		EntityID:  t.ID,
		ProjectID: t.ProjectID,
		Status:    string(t.Status),
	})
	return nil
}

func (s *TaskService) emit(ctx context.Context, ch event.Change) {
	if s.events != nil {
		s.events.Publish(ctx, ch)
	}
}
