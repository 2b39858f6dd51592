package postgres

import (
	"context"
	"fmt"

	"github.com/Strob0t/TaskForge/internal/domain/agent"
)

const agentColumns = `id, name, role, is_active, created_at, updated_at`

// --- Agents ---

// HasActiveTechLead reports whether any active agent holds the tech_lead
// role. It always reads the current table state.
func (s *Store) HasActiveTechLead(ctx context.Context) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM agents WHERE role = $1 AND is_active)`, agent.RoleTechLead).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check tech lead: %w", err)
	}
	return ok, nil
}

func (s *Store) ListAgents(ctx context.Context) ([]agent.Agent, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+agentColumns+` FROM agents ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []agent.Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, fmt.Errorf("list agents: %w", err)
		}
		agents = append(agents, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	return orEmpty(agents), nil
}

// RegisterAgent inserts an agent or refreshes the role and activity of the
// agent with the same name.
func (s *Store) RegisterAgent(ctx context.Context, req agent.RegisterRequest) (*agent.Agent, error) {
	a, err := scanAgent(s.pool.QueryRow(ctx,
		`INSERT INTO agents (name, role, is_active)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE
		   SET role = EXCLUDED.role, is_active = EXCLUDED.is_active, updated_at = now()
		 RETURNING `+agentColumns,
		req.Name, req.Role, req.IsActive))
	if err != nil {
		return nil, fmt.Errorf("register agent %s: %w", req.Name, err)
	}
	return &a, nil
}

func (s *Store) SetAgentActive(ctx context.Context, id string, active bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE agents SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	return execExpectOne(tag, err, "set agent %s active", id)
}

func scanAgent(row scannable) (agent.Agent, error) {
	var a agent.Agent
	err := row.Scan(&a.ID, &a.Name, &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
