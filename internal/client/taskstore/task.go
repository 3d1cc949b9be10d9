// AngelaMos | 2026
// task.go

package taskstore

import (
	"time"

	"github.com/carterperez-dev/taskflow/internal/client/backend"
)

// Task is the application-side task shape: camelCase fields and the UI
// status vocabulary.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	CompletedAt *time.Time `json:"completedAt"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// AddInput is the caller's payload for a new task. The owner is never part
// of the input; it always comes from the signed-in user.
type AddInput struct {
	Title       string
	Description string
	// Status uses the UI vocabulary and defaults to todo.
	Status  string
	DueDate time.Time
}

// Update is a typed partial update; nil fields are left untouched.
// CompletedAt is intentionally absent: it is derived from status
// transitions and is never independently settable.
type Update struct {
	Title       *string
	Description *string
	Status      *string
	DueDate     *time.Time
}

func fromRow(row backend.TaskRow) Task {
	description := ""
	if row.Description != nil {
		description = *row.Description
	}

	return Task{
		ID:          row.ID,
		Title:       row.Title,
		Description: description,
		Status:      StatusToUI(row.Status),
		DueDate:     row.DueDate,
		CompletedAt: row.CompletedAt,
		UserID:      row.UserID,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}
}

func fromRows(rows []backend.TaskRow) []Task {
	tasks := make([]Task, 0, len(rows))
	for _, row := range rows {
		tasks = append(tasks, fromRow(row))
	}
	return tasks
}
