package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	tfotel "github.com/Strob0t/TaskForge/internal/adapter/otel"
	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/event"
	"github.com/Strob0t/TaskForge/internal/domain/workflow"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

// WorkflowService manages workflow graphs and the single default workflow
// of each project.
type WorkflowService struct {
	store   database.WorkflowStore
	events  EventSink
	metrics *tfotel.Metrics
}

// NewWorkflowService creates a new WorkflowService. events may be nil.
func NewWorkflowService(store database.WorkflowStore, events EventSink) *WorkflowService {
	return &WorkflowService{store: store, events: events}
}

// SetMetrics attaches metric instruments.
func (s *WorkflowService) SetMetrics(m *tfotel.Metrics) { s.metrics = m }

// Create validates req and stores a new workflow. A default workflow
// replaces the current default of the project.
func (s *WorkflowService) Create(ctx context.Context, req workflow.CreateRequest) (*workflow.Workflow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tfotel.StartWorkflowSpan(ctx, "create", "", req.ProjectID)
	start := time.Now()
	w, err := s.store.CreateWorkflow(ctx, req)
	s.metrics.RecordStoreCall(ctx, "create_workflow", time.Since(start).Seconds(), err)
	tfotel.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, event.TypeWorkflowCreated, w)
	if w.IsDefault {
		s.defaultChanged(ctx, w)
	}
	return w, nil
}

// Get returns a workflow by ID.
func (s *WorkflowService) Get(ctx context.Context, id string) (*workflow.Workflow, error) {
	return s.store.GetWorkflow(ctx, id)
}

// List returns the workflows of a project, newest first. An empty
// projectID lists every project.
func (s *WorkflowService) List(ctx context.Context, projectID string) ([]workflow.Workflow, error) {
	wfs, err := s.store.ListWorkflows(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if wfs == nil {
		wfs = []workflow.Workflow{}
	}
	return wfs, nil
}

// GetDefault returns the default workflow of a project.
func (s *WorkflowService) GetDefault(ctx context.Context, projectID string) (*workflow.Workflow, error) {
	wfs, err := s.store.ListWorkflows(ctx, projectID)
	if err != nil {
		return nil, err
	}
	for i := range wfs {
		if wfs[i].IsDefault {
			return &wfs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

// Update applies a partial update. Setting is_default to true makes the
// workflow the only default of its project.
func (s *WorkflowService) Update(ctx context.Context, id string, req workflow.UpdateRequest) (*workflow.Workflow, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := tfotel.StartWorkflowSpan(ctx, "update", id, "")
	start := time.Now()
	w, err := s.store.UpdateWorkflow(ctx, id, req)
	s.metrics.RecordStoreCall(ctx, "update_workflow", time.Since(start).Seconds(), err)
	tfotel.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, event.TypeWorkflowUpdated, w)
	if req.SetsDefault() {
		s.defaultChanged(ctx, w)
	}
	return w, nil
}

// Delete removes a workflow. Deleting the default leaves the project
// without one.
func (s *WorkflowService) Delete(ctx context.Context, id string) error {
	w, err := s.store.GetWorkflow(ctx, id)
	if err != nil {
		return err
	}

	ctx, span := tfotel.StartWorkflowSpan(ctx, "delete", id, w.ProjectID)
	deleted, err := s.store.DeleteWorkflow(ctx, id)
	tfotel.EndSpan(span, err)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrNotFound
	}

	s.emit(ctx, event.TypeWorkflowDeleted, &workflow.Workflow{ID: w.ID, ProjectID: w.ProjectID})
	return nil
}

// Promote makes the workflow the default of its project, clearing any
// other default atomically.
func (s *WorkflowService) Promote(ctx context.Context, id string) (*workflow.Workflow, error) {
	ctx, span := tfotel.StartWorkflowSpan(ctx, "promote", id, "")
	start := time.Now()
	w, err := s.store.PromoteWorkflowDefault(ctx, id)
	s.metrics.RecordStoreCall(ctx, "promote_workflow", time.Since(start).Seconds(), err)
	tfotel.EndSpan(span, err)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "workflow default promoted", "workflow_id", w.ID, "project_id", w.ProjectID)
	s.defaultChanged(ctx, w)
	return w, nil
}

func (s *WorkflowService) defaultChanged(ctx context.Context, w *workflow.Workflow) {
	if s.metrics != nil {
		s.metrics.Inc(ctx, s.metrics.WorkflowDefaults, attribute.String("project.id", w.ProjectID))
	}
	s.emit(ctx, event.TypeWorkflowDefaultChanged, w)
}

func (s *WorkflowService) emit(ctx context.Context, t event.Type, w *workflow.Workflow) {
	if s.events == nil {
		return
	}
	ch := event.Change{Type: t, EntityID: w.ID, ProjectID: w.ProjectID}
	if t != event.TypeWorkflowDeleted {
		ch.Payload = w
	}
	s.events.Publish(ctx, ch)
}
