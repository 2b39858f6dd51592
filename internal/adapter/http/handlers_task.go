package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Strob0t/TaskForge/internal/domain/task"
)

// CreateTask handles POST /api/v1/tasks.
func (h *Handlers) CreateTask(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.Tasks.Create, nil)(w, r)
}

// CreateProjectTask handles POST /api/v1/projects/{id}/tasks. The project
// in the path wins over any project_id in the body.
func (h *Handlers) CreateProjectTask(w http.ResponseWriter, r *http.Request) {
	handleCreate(h.Tasks.Create, func(r *http.Request, req *task.CreateRequest) {
		req.ProjectID = chi.URLParam(r, "id")
	})(w, r)
}

// ListTasks handles GET /api/v1/tasks.
func (h *Handlers) ListTasks(w http.ResponseWriter, r *http.Request) {
	h.listTasks(w, r, r.URL.Query().Get("project_id"))
}

// ListProjectTasks handles GET /api/v1/projects/{id}/tasks.
func (h *Handlers) ListProjectTasks(w http.ResponseWriter, r *http.Request) {
	h.listTasks(w, r, chi.URLParam(r, "id"))
}

func (h *Handlers) listTasks(w http.ResponseWriter, r *http.Request, projectID string) {
	filter, ok := parseTaskFilter(w, r)
	if !ok {
		return
	}
	filter.ProjectID = projectID

	tasks, err := h.Tasks.List(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err, "tasks not found")
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func parseTaskFilter(w http.ResponseWriter, r *http.Request) (task.ListFilter, bool) {
	var f task.ListFilter
	var ok bool
	f.Status = task.Status(r.URL.Query().Get("status"))
	if f.IncludeSubtasks, ok = queryBool(w, r, "include_subtasks"); !ok {
		return f, false
	}
	if f.Limit, ok = queryInt(w, r, "limit"); !ok {
		return f, false
	}
	if f.Offset, ok = queryInt(w, r, "offset"); !ok {
		return f, false
	}
	return f, true
}

// GetTask handles GET /api/v1/tasks/{id}.
func (h *Handlers) GetTask(w http.ResponseWriter, r *http.Request) {
	handleGet(h.Tasks.Get, "task not found")(w, r)
}

// UpdateTask handles PATCH /api/v1/tasks/{id}.
func (h *Handlers) UpdateTask(w http.ResponseWriter, r *http.Request) {
	handleUpdate(h.Tasks.Update, "task not found")(w, r)
}

// DeleteTask handles DELETE /api/v1/tasks/{id}.
func (h *Handlers) DeleteTask(w http.ResponseWriter, r *http.Request) {
	handleDelete(h.Tasks.Delete, "task not found")(w, r)
}

// ListSubtasks handles GET /api/v1/tasks/{id}/subtasks.
func (h *Handlers) ListSubtasks(w http.ResponseWriter, r *http.Request) {
	handleListByParam("id", h.Tasks.ListSubtasks, "task not found")(w, r)
}

type transitionsResponse struct {
	Status task.Status   `json:"status"`
	Next   []task.Status `json:"next"`
}

// TaskTransitions handles GET /api/v1/tasks/{id}/transitions.
func (h *Handlers) TaskTransitions(w http.ResponseWriter, r *http.Request) {
	t, err := h.Tasks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, r, err, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, transitionsResponse{Status: t.Status, Next: task.NextStatuses(t.Status)})
}
