// AngelaMos | 2026
// dto.go

package task

import (
	"time"
)

type CreateTaskRequest struct {
	Title       string     `json:"title"                 validate:"required,min=1,max=255"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      string     `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// UpdateTaskRequest carries a partial update. Pointer fields distinguish
// "leave alone" from "set to zero value"; description and due date can be
// cleared by sending null explicitly, which decodes as a set-to-nil via the
// presence flags below.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"       validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *string    `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CompletedAt *time.Time `json:"completed_at"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ListParams struct {
	// UserID scopes the query. Empty means all users (admin view).
	UserID string
	Status string
}

func ToTaskResponse(t *Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func ToTaskResponseList(tasks []Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, ToTaskResponse(&tasks[i]))
	}
	return responses
}
