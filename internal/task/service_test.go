// AngelaMos | 2026
// service_test.go

package task

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskflow/internal/core"
)

type fakeRepo struct {
	tasks map[string]*Task
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{tasks: make(map[string]*Task)}
}

func (r *fakeRepo) Create(_ context.Context, task *Task) error {
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*Task, error) {
	task, ok := r.tasks[id]
	if !ok {
		return nil, fmt.Errorf("get task: %w", core.ErrNotFound)
	}
	clone := *task
	return &clone, nil
}

func (r *fakeRepo) List(_ context.Context, params ListParams) ([]Task, error) {
	var out []Task
	for _, task := range r.tasks {
		if params.UserID != "" && task.UserID != params.UserID {
			continue
		}
		if params.Status != "" && task.Status != params.Status {
			continue
		}
		out = append(out, *task)
	}
	return out, nil
}

func (r *fakeRepo) Update(_ context.Context, task *Task) error {
	if _, ok := r.tasks[task.ID]; !ok {
		return fmt.Errorf("update task: %w", core.ErrNotFound)
	}
	task.UpdatedAt = time.Now()
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.tasks[id]; !ok {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

func TestCreateForcesOwnerAndDefaults(t *testing.T) {
	svc := NewService(newFakeRepo())

	task, err := svc.Create(context.Background(), "owner1", CreateTaskRequest{
		Title: "Write tests",
	})
	require.NoError(t, err)

	assert.Equal(t, "owner1", task.UserID)
	assert.Equal(t, StatusTodo, task.Status)
	assert.Nil(t, task.CompletedAt)
	assert.NotEmpty(t, task.ID)
}

func TestCreateDoneStampsCompletedAt(t *testing.T) {
	svc := NewService(newFakeRepo())

	before := time.Now()
	task, err := svc.Create(context.Background(), "owner1", CreateTaskRequest{
		Title:  "Already finished",
		Status: StatusDone,
	})
	require.NoError(t, err)

	require.NotNil(t, task.CompletedAt)
	assert.WithinDuration(t, before, *task.CompletedAt, 5*time.Second)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Create(context.Background(), "owner1", CreateTaskRequest{
		Title:  "Bad",
		Status: "Archived",
	})

	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdateStatusCoupling(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), "owner1", CreateTaskRequest{
		Title:  "Toggle me",
		Status: StatusDone,
	})
	require.NoError(t, err)
	require.NotNil(t, created.CompletedAt)

	todo := StatusTodo
	updated, err := svc.Update(
		context.Background(),
		"owner1",
		false,
		created.ID,
		UpdateTaskRequest{Status: &todo},
	)
	require.NoError(t, err)
	assert.Nil(t, updated.CompletedAt, "leaving done clears the timestamp")

	done := StatusDone
	updated, err = svc.Update(
		context.Background(),
		"owner1",
		false,
		created.ID,
		UpdateTaskRequest{Status: &done},
	)
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)
}

func TestUpdateHidesForeignTasks(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), "owner1", CreateTaskRequest{
		Title: "Private",
	})
	require.NoError(t, err)

	title := "Hijacked"
	_, err = svc.Update(
		context.Background(),
		"intruder",
		false,
		created.ID,
		UpdateTaskRequest{Title: &title},
	)

	assert.ErrorIs(t, err, core.ErrNotFound, "non-owners cannot probe ids")
}

func TestAdminSeesAllTasks(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), "a", CreateTaskRequest{Title: "A"})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "b", CreateTaskRequest{Title: "B"})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), "admin1", true, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	own, err := svc.List(context.Background(), "a", false, "")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "a", own[0].UserID)
}

func TestDeleteMissingTaskIsNoOp(t *testing.T) {
	svc := NewService(newFakeRepo())

	err := svc.Delete(context.Background(), "owner1", false, "ghost")

	assert.NoError(t, err)
}

func TestDeleteForeignTaskHidden(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), "owner1", CreateTaskRequest{
		Title: "Mine",
	})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), "intruder", false, created.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = repo.GetByID(context.Background(), created.ID)
	assert.NoError(t, err, "task still present")
}
