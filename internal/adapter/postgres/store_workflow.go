package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/TaskForge/internal/domain/workflow"
)

const workflowColumns = `id, project_id, name, description, nodes, edges, is_default, created_at, updated_at`

// --- Workflows ---

// lockProjectDefaults serializes default changes within one project for the
// rest of the transaction. It must be taken before any workflow row lock.
func lockProjectDefaults(ctx context.Context, tx pgx.Tx, projectID string) error {
	if _, err := tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended('workflow_default:' || $1, 0))`, projectID); err != nil {
		return fmt.Errorf("lock project %s defaults: %w", projectID, err)
	}
	return nil
}

// clearProjectDefaults unsets is_default on every workflow of the project
// except keepID.
func clearProjectDefaults(ctx context.Context, tx pgx.Tx, projectID, keepID string) error {
	if _, err := tx.Exec(ctx,
		`UPDATE workflows SET is_default = FALSE, updated_at = now()
		 WHERE project_id = $1 AND is_default AND id <> $2`, projectID, keepID); err != nil {
		return fmt.Errorf("clear defaults of project %s: %w", projectID, err)
	}
	return nil
}

// workflowProject reads the owning project without locking. project_id never
// changes after insert.
func workflowProject(ctx context.Context, tx pgx.Tx, id string) (string, error) {
	var projectID string
	if err := tx.QueryRow(ctx, `SELECT project_id FROM workflows WHERE id = $1`, id).Scan(&projectID); err != nil {
		return "", notFoundWrap(err, "get workflow %s", id)
	}
	return projectID, nil
}

// CreateWorkflow inserts a workflow. When it is created as the default, the
// previous default of the project is cleared in the same transaction.
func (s *Store) CreateWorkflow(ctx context.Context, req workflow.CreateRequest) (*workflow.Workflow, error) {
	var w workflow.Workflow
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if req.IsDefault {
			if err := lockProjectDefaults(ctx, tx, req.ProjectID); err != nil {
				return err
			}
			if err := clearProjectDefaults(ctx, tx, req.ProjectID, ""); err != nil {
				return err
			}
		}

		var err error
		w, err = scanWorkflow(tx.QueryRow(ctx,
			`INSERT INTO workflows (project_id, name, description, nodes, edges, is_default)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING `+workflowColumns,
			req.ProjectID, req.Name, req.Description, []byte(req.Nodes), []byte(req.Edges), req.IsDefault))
		if err != nil {
			return constraintWrap(err, "create workflow")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) GetWorkflow(ctx context.Context, id string) (*workflow.Workflow, error) {
	w, err := scanWorkflow(s.pool.QueryRow(ctx, `SELECT `+workflowColumns+` FROM workflows WHERE id = $1`, id))
	if err != nil {
		return nil, notFoundWrap(err, "get workflow %s", id)
	}
	return &w, nil
}

// ListWorkflows returns workflows newest first. An empty projectID lists
// every project.
func (s *Store) ListWorkflows(ctx context.Context, projectID string) ([]workflow.Workflow, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if projectID == "" {
		rows, err = s.pool.Query(ctx,
			`SELECT `+workflowColumns+` FROM workflows ORDER BY created_at DESC, id DESC`)
	} else {
		rows, err = s.pool.Query(ctx,
			`SELECT `+workflowColumns+` FROM workflows WHERE project_id = $1 ORDER BY created_at DESC, id DESC`, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var workflows []workflow.Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("list workflows: %w", err)
		}
		workflows = append(workflows, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	return orEmpty(workflows), nil
}

// UpdateWorkflow applies patch to the workflow. Setting is_default on a
// workflow that is not yet the default clears the other defaults first.
func (s *Store) UpdateWorkflow(ctx context.Context, id string, patch workflow.UpdateRequest) (*workflow.Workflow, error) {
	var w workflow.Workflow
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if patch.SetsDefault() {
			projectID, err := workflowProject(ctx, tx, id)
			if err != nil {
				return err
			}
			if err := lockProjectDefaults(ctx, tx, projectID); err != nil {
				return err
			}
		}

		current, err := scanWorkflow(tx.QueryRow(ctx,
			`SELECT `+workflowColumns+` FROM workflows WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return notFoundWrap(err, "update workflow %s", id)
		}

		if patch.SetsDefault() && !current.IsDefault {
			if err := clearProjectDefaults(ctx, tx, current.ProjectID, id); err != nil {
				return err
			}
		}
		patch.Apply(&current)

		w, err = scanWorkflow(tx.QueryRow(ctx,
			`UPDATE workflows SET name = $2, description = $3, nodes = $4, edges = $5, is_default = $6, updated_at = now()
			 WHERE id = $1
			 RETURNING `+workflowColumns,
			id, current.Name, current.Description, []byte(current.Nodes), []byte(current.Edges), current.IsDefault))
		if err != nil {
			return constraintWrap(err, "update workflow %s", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// DeleteWorkflow removes the workflow. No other workflow inherits its
// default flag.
func (s *Store) DeleteWorkflow(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete workflow %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// PromoteWorkflowDefault makes id the only default of its project,
// whatever its previous state.
func (s *Store) PromoteWorkflowDefault(ctx context.Context, id string) (*workflow.Workflow, error) {
	var w workflow.Workflow
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		projectID, err := workflowProject(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := lockProjectDefaults(ctx, tx, projectID); err != nil {
			return err
		}
		if err := clearProjectDefaults(ctx, tx, projectID, id); err != nil {
			return err
		}

		w, err = scanWorkflow(tx.QueryRow(ctx,
			`UPDATE workflows SET is_default = TRUE, updated_at = now()
			 WHERE id = $1
			 RETURNING `+workflowColumns, id))
		if err != nil {
			return notFoundWrap(err, "promote workflow %s", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func scanWorkflow(row scannable) (workflow.Workflow, error) {
	var (
		w            workflow.Workflow
		nodes, edges []byte
	)
	err := row.Scan(&w.ID, &w.ProjectID, &w.Name, &w.Description, &nodes, &edges,
		&w.IsDefault, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return w, err
	}
	w.Nodes = json.RawMessage(nodes)
	w.Edges = json.RawMessage(edges)
	return w, nil
}
