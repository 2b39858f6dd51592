package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router. Mutating
// routes are wrapped in mutating, typically the idempotency middleware.
func MountRoutes(r chi.Router, h *Handlers, mutating ...func(http.Handler) http.Handler) {
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		// Version
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"version":"0.1.0"}`))
		})

		// Read routes
		r.Get("/tasks", h.ListTasks)
		r.Get("/tasks/{id}", h.GetTask)
		r.Get("/tasks/{id}/subtasks", h.ListSubtasks)
		r.Get("/tasks/{id}/transitions", h.TaskTransitions)
		r.Get("/projects/{id}/tasks", h.ListProjectTasks)

		r.Get("/workflows", h.ListWorkflows)
		r.Get("/workflows/{id}", h.GetWorkflow)
		r.Get("/projects/{id}/workflows", h.ListProjectWorkflows)
		r.Get("/projects/{id}/workflows/default", h.GetProjectDefaultWorkflow)

		// Mutating routes
		r.Group(func(r chi.Router) {
			r.Use(mutating...)

			r.Post("/tasks", h.CreateTask)
			r.Post("/projects/{id}/tasks", h.CreateProjectTask)
			r.Patch("/tasks/{id}", h.UpdateTask)
			r.Delete("/tasks/{id}", h.DeleteTask)

			r.Post("/workflows", h.CreateWorkflow)
			r.Post("/projects/{id}/workflows", h.CreateProjectWorkflow)
			r.Patch("/workflows/{id}", h.UpdateWorkflow)
			r.Delete("/workflows/{id}", h.DeleteWorkflow)
			r.Post("/workflows/{id}/default", h.PromoteWorkflow)
		})
	})
}
