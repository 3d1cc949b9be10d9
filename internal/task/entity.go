// AngelaMos | 2026
// entity.go

package task

import (
	"time"
)

// Task statuses are stored in their display form. Clients that prefer a
// slug vocabulary translate at their own edge.
const (
	StatusTodo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

type Task struct {
	ID          string     `db:"id"`
	Title       string     `db:"title"`
	Description *string    `db:"description"`
	Status      string     `db:"status"`
	DueDate     *time.Time `db:"due_date"`
	CompletedAt *time.Time `db:"completed_at"`
	UserID      string     `db:"user_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (t *Task) IsDone() bool {
	return t.Status == StatusDone
}

func ValidStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}
