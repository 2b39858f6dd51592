// Package agent defines the Agent entity as seen by the task core. Agents are
// owned elsewhere; the core only reads their role and activity flag.
package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/Strob0t/TaskForge/internal/domain"
)

// RoleTechLead is the role that must be present and active before any task
// can be assigned.
const RoleTechLead = "tech_lead"

// Agent represents an autonomous agent registered for a project.
type Agent struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsActiveTechLead reports whether a can coordinate assigned tasks.
func (a *Agent) IsActiveTechLead() bool {
	return a.IsActive && a.Role == RoleTechLead
}

// RegisterRequest is used by operator tooling to add or refresh an agent.
type RegisterRequest struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// Validate checks required fields.
func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Role = strings.TrimSpace(r.Role)
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if r.Role == "" {
		return fmt.Errorf("%w: role is required", domain.ErrValidation)
	}
	return nil
}
