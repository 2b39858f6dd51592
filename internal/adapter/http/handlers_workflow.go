package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/TaskForge/internal/domain/workflow"
)

// CreateWorkflow handles POST /api/v1/workflows.
func (h *Handlers) CreateWorkflow(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.Workflows.Create, nil)(w, r)
}

// CreateProjectWorkflow handles POST /api/v1/projects/{id}/workflows.
func (h *Handlers) CreateProjectWorkflow(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.Workflows.Create, func(r *http.Request, req *workflow.CreateRequest) {
		req.ProjectID = chi.URLParam(r, "id")
	})(w, r)
}

// ListWorkflows handles GET /api/v1/workflows.
func (h *Handlers) ListWorkflows(w http.ResponseWriter, r *http.Request) {
	wfs, err := h.Workflows.List(r.Context(), r.URL.Query().Get("project_id"))
	if err != nil {
		writeDomainError(w, r, err, "workflows not found")
		return
	}
	writeJSON(w, http.StatusOK, wfs)
}

// ListProjectWorkflows handles GET /api/v1/projects/{id}/workflows.
func (h *Handlers) ListProjectWorkflows(w http.ResponseWriter, r *http.Request) {
	handleListByParam("id", h.Workflows.List, "workflows not found")(w, r)
}

// GetProjectDefaultWorkflow handles GET /api/v1/projects/{id}/workflows/default.
func (h *Handlers) GetProjectDefaultWorkflow(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Workflows.GetDefault, "project has no default workflow")(w, r)
}

// GetWorkflow handles GET /api/v1/workflows/{id}.
func (h *Handlers) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Workflows.Get, "workflow not found")(w, r)
}

// UpdateWorkflow handles PATCH /api/v1/workflows/{id}.
func (h *Handlers) UpdateWorkflow(w http.ResponseWriter, r *http.Request) {
	handleUpdate(h.Workflows.Update, "workflow not found")(w, r)
}

// DeleteWorkflow handles DELETE /api/v1/workflows/{id}.
func (h *Handlers) DeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Workflows.Delete, "workflow not found")(w, r)
}

// PromoteWorkflow handles POST /api/v1/workflows/{id}/default.
func (h *Handlers) PromoteWorkflow(w http.ResponseWriter, r *http.Request) {
	handleAction(h.Workflows.Promote, "workflow not found")(w, r)
}
