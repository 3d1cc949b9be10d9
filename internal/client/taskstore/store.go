// AngelaMos | 2026
// store.go

// Package taskstore owns the in-memory task collection for the current
// viewer. Fetch replaces the set wholesale, writes keep it in sync with the
// rows the backend returns, and the two query operations are pure reads
// over the snapshot. Visibility is role-scoped: admins see every task,
// everyone else only their own.
package taskstore

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/carterperez-dev/taskflow/internal/client/authstore"
	"github.com/carterperez-dev/taskflow/internal/client/backend"
	"github.com/carterperez-dev/taskflow/internal/client/session"
	"github.com/carterperez-dev/taskflow/internal/client/state"
)

type State struct {
	Tasks   []Task
	Loading bool
	// Error holds the last failed operation's message; empty means none.
	// It clears on the next operation's entry.
	Error string
}

// AuthSource exposes the viewer identity the store scopes its data by.
type AuthSource interface {
	Get() authstore.State
}

type Config struct {
	Backend *backend.Client
	Auth    AuthSource
	Logger  *slog.Logger
}

type Store struct {
	backend *backend.Client
	auth    AuthSource
	logger  *slog.Logger
	state   *state.Store[State]
}

func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		backend: cfg.Backend,
		auth:    cfg.Auth,
		logger:  logger,
		state:   state.New(State{Tasks: []Task{}}),
	}
}

func (s *Store) Get() State {
	return s.state.Get()
}

func (s *Store) Subscribe(fn func(State)) func() {
	return s.state.Subscribe(fn)
}

// FetchTasks replaces the task set with the viewer's visible rows, newest
// first. A backend failure is recorded in the error field and not returned;
// reads degrade to a visible error state rather than failing the caller.
// The only returned error is ErrNotAuthenticated, raised before any call.
func (s *Store) FetchTasks(ctx context.Context) error {
	viewer := s.auth.Get().User
	if viewer == nil {
		return authstore.ErrNotAuthenticated
	}

	s.begin()

	rows, err := s.backend.Tasks.List(ctx, backend.TaskFilter{})
	if err != nil {
		s.logger.Warn("fetch tasks failed", "error", err)
		s.fail(err)
		return nil
	}

	tasks := fromRows(rows)
	s.state.Update(func(st State) State {
		st.Tasks = tasks
		st.Loading = false
		return st
	})

	return nil
}

// AddTask inserts a task owned by the viewer and prepends the created row.
// Write failures are recorded in the error field AND returned, so callers
// never mistake a failed insert for success.
func (s *Store) AddTask(ctx context.Context, input AddInput) (*Task, error) {
	viewer := s.auth.Get().User
	if viewer == nil {
		return nil, authstore.ErrNotAuthenticated
	}

	status := input.Status
	if status == "" {
		status = StatusTodo
	}

	s.begin()

	insert := backend.TaskInsert{
		Title:  input.Title,
		Status: StatusToBackend(status),
	}
	if input.Description != "" {
		insert.Description = &input.Description
	}
	if !input.DueDate.IsZero() {
		insert.DueDate = &input.DueDate
	}

	row, err := s.backend.Tasks.Insert(ctx, insert)
	if err != nil {
		s.fail(err)
		return nil, err
	}

	task := fromRow(*row)
	s.state.Update(func(st State) State {
		st.Tasks = append([]Task{task}, st.Tasks...)
		st.Loading = false
		return st
	})

	return &task, nil
}

// UpdateTask sends a partial update and merges the returned authoritative
// row into the matching in-memory task. A status change carries the
// coupled completedAt transition: into done stamps it, out of done clears
// it, whether or not the caller mentioned the timestamp.
func (s *Store) UpdateTask(
	ctx context.Context,
	id string,
	update Update,
) (*Task, error) {
	s.begin()

	patch := backend.TaskPatch{
		Title:       update.Title,
		Description: update.Description,
		DueDate:     update.DueDate,
	}

	if update.Status != nil {
		backendStatus := StatusToBackend(*update.Status)
		patch.Status = &backendStatus

		// Both directions of the coupling ride in the patch itself: into
		// done stamps the timestamp, every other status sends an explicit
		// null, whether or not the backend also enforces it.
		if backendStatus == "Done" {
			now := time.Now().UTC()
			patch.SetCompletedAt(&now)
		} else {
			patch.SetCompletedAt(nil)
		}
	}

	row, err := s.backend.Tasks.Update(ctx, id, patch)
	if err != nil {
		s.fail(err)
		return nil, err
	}

	task := fromRow(*row)
	s.state.Update(func(st State) State {
		for i := range st.Tasks {
			if st.Tasks[i].ID == id {
				st.Tasks[i] = task
				break
			}
		}
		st.Loading = false
		return st
	})

	return &task, nil
}

// DeleteTask removes the task remotely and drops it from the snapshot. A
// delete of an id that no longer exists succeeds; there is simply no
// matching row to remove locally.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.begin()

	if err := s.backend.Tasks.Delete(ctx, id); err != nil {
		s.fail(err)
		return err
	}

	s.state.Update(func(st State) State {
		kept := st.Tasks[:0:0]
		for _, t := range st.Tasks {
			if t.ID != id {
				kept = append(kept, t)
			}
		}
		st.Tasks = kept
		st.Loading = false
		return st
	})

	return nil
}

// GetTasksByStatus is a pure read over the current snapshot: role-filtered,
// then filtered by UI status. It never triggers a fetch.
func (s *Store) GetTasksByStatus(status string) []Task {
	visible := s.visibleTasks()

	matched := make([]Task, 0, len(visible))
	for _, t := range visible {
		if t.Status == status {
			matched = append(matched, t)
		}
	}
	return matched
}

// SearchTasks is a pure read: role-filtered, then a case-insensitive
// substring match on title or description. An empty query returns the
// role-filtered set as is.
func (s *Store) SearchTasks(query string) []Task {
	visible := s.visibleTasks()
	if query == "" {
		return visible
	}

	needle := strings.ToLower(query)
	matched := make([]Task, 0, len(visible))
	for _, t := range visible {
		if strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) {
			matched = append(matched, t)
		}
	}
	return matched
}

// visibleTasks re-applies role scoping on read. The fetched set is already
// scoped by the backend, but the queries never rely on that alone.
func (s *Store) visibleTasks() []Task {
	st := s.state.Get()
	viewer := s.auth.Get().User

	if viewer == nil {
		return []Task{}
	}
	if viewer.Role == session.RoleAdmin {
		return st.Tasks
	}

	own := make([]Task, 0, len(st.Tasks))
	for _, t := range st.Tasks {
		if t.UserID == viewer.ID {
			own = append(own, t)
		}
	}
	return own
}

func (s *Store) begin() {
	s.state.Update(func(st State) State {
		st.Loading = true
		st.Error = ""
		return st
	})
}

func (s *Store) fail(err error) {
	s.state.Update(func(st State) State {
		st.Loading = false
		st.Error = err.Error()
		return st
	})
}
