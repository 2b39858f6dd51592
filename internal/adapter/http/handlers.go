package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Strob0t/TaskForge/internal/service"
)

const healthProbeTimeout = 2 * time.Second

// Probe checks one dependency. A nil error means healthy.
type Probe func(ctx context.Context) error

// Handlers holds the service dependencies for HTTP handlers.
type Handlers struct {
	Tasks     *service.TaskService
	Workflows *service.WorkflowService
	// Probes are run by the health endpoint, keyed by dependency name.
	Probes map[string]Probe
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health reports "ok" when every probe passes and 503 "degraded" otherwise.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.Probes))}
	status := http.StatusOK
	for name, probe := range h.Probes {
		if err := probe(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	writeJSON(w, status, resp)
}
