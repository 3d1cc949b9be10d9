// AngelaMos | 2026
// repository.go

package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/carterperez-dev/taskflow/internal/core"
)

type Repository interface {
	Create(ctx context.Context, task *Task) error
	GetByID(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, params ListParams) ([]Task, error)
	Update(ctx context.Context, task *Task) error
	// Delete reports whether a row was actually removed. Deleting an
	// already-absent task is not an error.
	Delete(ctx context.Context, id string) (bool, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const taskColumns = `
	id, title, description, status, due_date, completed_at,
	user_id, created_at, updated_at`

func (r *repository) Create(ctx context.Context, task *Task) error {
	query := `
		INSERT INTO tasks (id, title, description, status, due_date, completed_at, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, task, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.CompletedAt,
		task.UserID,
	)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Task, error) {
	query := `SELECT` + taskColumns + `
		FROM tasks
		WHERE id = $1`

	var task Task
	err := r.db.GetContext(ctx, &task, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get task: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	return &task, nil
}

// List returns tasks newest first. Created-at descending keeps freshly
// added tasks at the top of every view.
func (r *repository) List(
	ctx context.Context,
	params ListParams,
) ([]Task, error) {
	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, params.UserID)
		argIdx++
	}

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	query := fmt.Sprintf(`SELECT`+taskColumns+`
		FROM tasks
		WHERE %s
		ORDER BY created_at DESC`,
		strings.Join(conditions, " AND "))

	tasks := []Task{}
	if err := r.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

func (r *repository) Update(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks
		SET title = $2,
		    description = $3,
		    status = $4,
		    due_date = $5,
		    completed_at = $6,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &task.UpdatedAt, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.DueDate,
		task.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update task: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}

	return affected > 0, nil
}
