package service

import (
	"context"

	"github.com/Strob0t/TaskForge/internal/domain/agent"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

// AgentService maintains the agent directory consulted by the assignment
// gate. Agents are normally owned by the runtime; this service exists for
// operator tooling.
type AgentService struct {
	store database.AgentRegistry
}

// NewAgentService creates a new AgentService.
func NewAgentService(store database.AgentRegistry) *AgentService {
	return &AgentService{store: store}
}

// List returns all agents ordered by name.
func (s *AgentService) List(ctx context.Context) ([]agent.Agent, error) {
	return s.store.ListAgents(ctx)
}

// Register adds an agent or refreshes the role and activity of an existing
// agent with the same name.
func (s *AgentService) Register(ctx context.Context, req agent.RegisterRequest) (*agent.Agent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.store.RegisterAgent(ctx, req)
}

// SetActive activates or deactivates an agent.
func (s *AgentService) SetActive(ctx context.Context, id string, active bool) error {
	return s.store.SetAgentActive(ctx, id, active)
}

// TechLeadAvailable reports whether an assignment would pass the gate
// right now.
func (s *AgentService) TechLeadAvailable(ctx context.Context) (bool, error) {
	return s.store.HasActiveTechLead(ctx)
}
