// AngelaMos | 2026
// service.go

package task

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/taskflow/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create inserts a task owned by userID. Ownership comes from the verified
// token, never from the request body.
func (s *Service) Create(
	ctx context.Context,
	userID string,
	req CreateTaskRequest,
) (*Task, error) {
	status := req.Status
	if status == "" {
		status = StatusTodo
	}
	if !ValidStatus(status) {
		return nil, fmt.Errorf(
			"create task: unknown status %q: %w",
			status,
			core.ErrInvalidInput,
		)
	}

	task := &Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		DueDate:     req.DueDate,
		UserID:      userID,
	}

	if task.Status == StatusDone {
		now := time.Now().UTC()
		task.CompletedAt = &now
	}

	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// List returns the caller's tasks, or every user's tasks when the caller is
// an admin.
func (s *Service) List(
	ctx context.Context,
	userID string,
	isAdmin bool,
	status string,
) ([]Task, error) {
	if status != "" && !ValidStatus(status) {
		return nil, fmt.Errorf(
			"list tasks: unknown status %q: %w",
			status,
			core.ErrInvalidInput,
		)
	}

	params := ListParams{Status: status}
	if !isAdmin {
		params.UserID = userID
	}

	return s.repo.List(ctx, params)
}

func (s *Service) GetByID(
	ctx context.Context,
	userID string,
	isAdmin bool,
	taskID string,
) (*Task, error) {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !isAdmin && task.UserID != userID {
		// Hidden, not forbidden: a non-owner cannot probe which IDs exist.
		return nil, fmt.Errorf("get task: %w", core.ErrNotFound)
	}

	return task, nil
}

// Update applies a partial update. When the status transitions into Done the
// completion timestamp is stamped; any transition out of Done clears it.
func (s *Service) Update(
	ctx context.Context,
	userID string,
	isAdmin bool,
	taskID string,
	req UpdateTaskRequest,
) (*Task, error) {
	task, err := s.GetByID(ctx, userID, isAdmin, taskID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	if req.Status != nil {
		if !ValidStatus(*req.Status) {
			return nil, fmt.Errorf(
				"update task: unknown status %q: %w",
				*req.Status,
				core.ErrInvalidInput,
			)
		}

		wasDone := task.IsDone()
		task.Status = *req.Status

		switch {
		case task.IsDone() && !wasDone:
			now := time.Now().UTC()
			task.CompletedAt = &now
		case !task.IsDone():
			task.CompletedAt = nil
		}
	}

	if req.CompletedAt != nil && task.IsDone() {
		task.CompletedAt = req.CompletedAt
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

// Delete removes a task. Deleting an ID that no longer exists succeeds
// silently so retried deletes stay idempotent.
func (s *Service) Delete(
	ctx context.Context,
	userID string,
	isAdmin bool,
	taskID string,
) error {
	task, err := s.repo.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return err
	}

	if !isAdmin && task.UserID != userID {
		return fmt.Errorf("delete task: %w", core.ErrNotFound)
	}

	if _, err := s.repo.Delete(ctx, taskID); err != nil {
		return err
	}

	return nil
}
