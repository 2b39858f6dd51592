package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Strob0t/TaskForge/internal/domain/task"
	"github.com/Strob0t/TaskForge/internal/port/database"
)

const taskColumns = `id, project_id, parent_task_id, title, description, priority, category,
	assigned_agent_id, status, result, branch, session_id, cost_usd, tokens_in, tokens_out,
	created_at, updated_at, completed_at`

// --- Tasks ---

func (s *Store) CreateTask(ctx context.Context, req task.CreateRequest) (*task.Task, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO tasks (project_id, parent_task_id, title, description, priority, category, assigned_agent_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+taskColumns,
		req.ProjectID, nullIfEmpty(req.ParentTaskID), req.Title, req.Description,
		string(req.Priority), req.Category, nullIfEmpty(req.AssignedAgentID))

	t, err := scanTask(row)
	if err != nil {
		return nil, constraintWrap(err, "create task")
	}
	return &t, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (*task.Task, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	t, err := scanTask(row)
	if err != nil {
		return nil, notFoundWrap(err, "get task %s", id)
	}
	return &t, nil
}

// ListTasks returns one page of tasks, newest first. Subtasks are excluded
// unless the filter asks for them.
func (s *Store) ListTasks(ctx context.Context, filter task.ListFilter) ([]task.Task, error) {
	if err := filter.Normalize(); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		where = append(where, fmt.Sprintf("project_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if !filter.IncludeSubtasks {
		where = append(where, "parent_task_id IS NULL")
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask locks the task row, lets mutate edit the current record and
// writes every mutable column back. A mutate error rolls the transaction
// back and is returned unchanged.
func (s *Store) UpdateTask(ctx context.Context, id string, mutate database.TaskMutator) (*task.Task, error) {
	var updated task.Task
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		current, err := scanTask(tx.QueryRow(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return notFoundWrap(err, "update task %s", id)
		}

		if err := mutate(&current); err != nil {
			return err
		}

		updated, err = scanTask(tx.QueryRow(ctx,
			`UPDATE tasks SET
				title = $2, description = $3, priority = $4, category = $5, assigned_agent_id = $6,
				status = $7, result = $8, branch = $9, session_id = $10, cost_usd = $11,
				tokens_in = $12, tokens_out = $13, completed_at = $14, updated_at = now()
			 WHERE id = $1
			 RETURNING `+taskColumns,
			id, current.Title, current.Description, string(current.Priority), current.Category,
			nullIfEmpty(current.AssignedAgentID), string(current.Status), current.Result,
			current.Branch, current.SessionID, current.CostUSD, current.TokensIn, current.TokensOut,
			current.CompletedAt))
		if err != nil {
			return constraintWrap(err, "update task %s", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *Store) DeleteTask(ctx context.Context, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete task %s: %w", id, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListSubtasks returns the direct children of parentID, oldest first.
func (s *Store) ListSubtasks(ctx context.Context, parentID string) ([]task.Task, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE parent_task_id = $1 ORDER BY created_at ASC, id ASC`, parentID)
	if err != nil {
		return nil, fmt.Errorf("list subtasks of %s: %w", parentID, err)
	}
	defer rows.Close()

	tasks, err := collectTasks(rows)
	if err != nil {
		return nil, fmt.Errorf("list subtasks of %s: %w", parentID, err)
	}
	return tasks, nil
}

// CountSubtasks returns direct subtask totals for each of parentIDs that has
// at least one subtask.
func (s *Store) CountSubtasks(ctx context.Context, parentIDs []string) (map[string]task.SubtaskCounts, error) {
	counts := make(map[string]task.SubtaskCounts, len(parentIDs))
	if len(parentIDs) == 0 {
		return counts, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT parent_task_id,
		        count(*),
		        count(*) FILTER (WHERE status IN ('done', 'cancelled'))
		 FROM tasks
		 WHERE parent_task_id = ANY($1)
		 GROUP BY parent_task_id`, parentIDs)
	if err != nil {
		return nil, fmt.Errorf("count subtasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			parent string
			c      task.SubtaskCounts
		)
		if err := rows.Scan(&parent, &c.Total, &c.Completed); err != nil {
			return nil, fmt.Errorf("count subtasks: %w", err)
		}
		counts[parent] = c
	}
	return counts, rows.Err()
}

func collectTasks(rows pgx.Rows) ([]task.Task, error) {
	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orEmpty(tasks), nil
}

func scanTask(row scannable) (task.Task, error) {
	var (
		t         task.Task
		parentID  *string
		agentID   *string
		priority  string
		status    string
		completed *time.Time
	)
	err := row.Scan(&t.ID, &t.ProjectID, &parentID, &t.Title, &t.Description, &priority, &t.Category,
		&agentID, &status, &t.Result, &t.Branch, &t.SessionID, &t.CostUSD, &t.TokensIn, &t.TokensOut,
		&t.CreatedAt, &t.UpdatedAt, &completed)
	if err != nil {
		return t, err
	}
	t.ParentTaskID = derefString(parentID)
	t.AssignedAgentID = derefString(agentID)
	t.Priority = task.Priority(priority)
	t.Status = task.Status(status)
	t.CompletedAt = completed
	return t, nil
}
