// AngelaMos | 2026
// store_test.go

package taskstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskflow/internal/client/authstore"
	"github.com/carterperez-dev/taskflow/internal/client/backend"
	"github.com/carterperez-dev/taskflow/internal/client/session"
)

type fakeAuth struct {
	state authstore.State
}

func (f *fakeAuth) Get() authstore.State {
	return f.state
}

func viewerAuth(id, role string) *fakeAuth {
	return &fakeAuth{state: authstore.State{
		User: &session.User{
			ID:    id,
			Email: id + "@example.com",
			Role:  role,
		},
		IsAuthenticated: true,
	}}
}

// fakeTaskAPI serves the tasks endpoints over a mutable row set. PATCH
// merges the patch verbatim with no coupling of its own, so the tests
// prove the container's patches carry the status/completed_at coupling
// end to end.
type fakeTaskAPI struct {
	srv  *httptest.Server
	rows []map[string]any
	fail bool
}

func newFakeTaskAPI(t *testing.T, rows []map[string]any) *fakeTaskAPI {
	t.Helper()

	f := &fakeTaskAPI{rows: rows}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		if f.fail {
			writeErr(w, http.StatusInternalServerError, "backend down")
			return
		}
		writeData(w, http.StatusOK, f.rows)
	})

	mux.HandleFunc("POST /v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		if f.fail {
			writeErr(w, http.StatusInternalServerError, "backend down")
			return
		}

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		row := map[string]any{
			"id":           "new1",
			"title":        req["title"],
			"description":  req["description"],
			"status":       req["status"],
			"due_date":     req["due_date"],
			"completed_at": nil,
			"user_id":      "viewer1",
			"created_at":   time.Now().Format(time.RFC3339),
			"updated_at":   time.Now().Format(time.RFC3339),
		}
		if req["status"] == "Done" {
			row["completed_at"] = time.Now().Format(time.RFC3339)
		}

		writeData(w, http.StatusCreated, row)
	})

	mux.HandleFunc("PATCH /v1/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		var patch map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))

		for _, row := range f.rows {
			if row["id"] != id {
				continue
			}
			for k, v := range patch {
				row[k] = v
			}
			row["updated_at"] = time.Now().Format(time.RFC3339)
			writeData(w, http.StatusOK, row)
			return
		}

		writeErr(w, http.StatusNotFound, "task not found")
	})

	mux.HandleFunc("DELETE /v1/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		if f.fail {
			writeErr(w, http.StatusInternalServerError, "backend down")
			return
		}
		// Missing ids are a silent no-op, like the real API.
		w.WriteHeader(http.StatusNoContent)
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // test helper
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": true,
		"data":    data,
	})
}

func writeErr(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // test helper
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   map[string]string{"code": "ERR", "message": message},
	})
}

func taskRow(id, title, status, userID string) map[string]any {
	row := map[string]any{
		"id":           id,
		"title":        title,
		"description":  nil,
		"status":       status,
		"due_date":     nil,
		"completed_at": nil,
		"user_id":      userID,
		"created_at":   time.Now().Format(time.RFC3339),
		"updated_at":   time.Now().Format(time.RFC3339),
	}
	if status == "Done" {
		row["completed_at"] = time.Now().Format(time.RFC3339)
	}
	return row
}

func newTestStore(t *testing.T, f *fakeTaskAPI, auth AuthSource) *Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(
		testWriter{t},
		&slog.HandlerOptions{Level: slog.LevelError},
	))

	client := backend.New(backend.Config{
		BaseURL: f.srv.URL,
		Logger:  logger,
	})

	return New(Config{Backend: client, Auth: auth, Logger: logger})
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func TestFetchTasksRequiresUser(t *testing.T) {
	f := newFakeTaskAPI(t, nil)
	store := newTestStore(t, f, &fakeAuth{})

	err := store.FetchTasks(context.Background())

	assert.ErrorIs(t, err, authstore.ErrNotAuthenticated)
}

func TestFetchTasksReplacesSetAndMapsStatus(t *testing.T) {
	f := newFakeTaskAPI(t, []map[string]any{
		taskRow("t2", "Newest", "In Progress", "viewer1"),
		taskRow("t1", "Oldest", "Done", "viewer1"),
	})
	store := newTestStore(t, f, viewerAuth("viewer1", session.RoleUser))

	require.NoError(t, store.FetchTasks(context.Background()))

	st := store.Get()
	require.Len(t, st.Tasks, 2)
	assert.Equal(t, "t2", st.Tasks[0].ID, "server order preserved")
	assert.Equal(t, StatusInProgress, st.Tasks[0].Status)
	assert.Equal(t, StatusDone, st.Tasks[1].Status)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
}

func TestFetchTasksFailureRecordsErrorWithoutReturning(t *testing.T) {
	f := newFakeTaskAPI(t, nil)
	f.fail = true
	store := newTestStore(t, f, viewerAuth("viewer1", session.RoleUser))

	err := store.FetchTasks(context.Background())

	assert.NoError(t, err, "read failures degrade to the error flag")
	st := store.Get()
	assert.False(t, st.Loading)
	assert.Contains(t, st.Error, "backend down")
}

func TestAddTaskDonePrependsWithCompletedAt(t *testing.T) {
	f := newFakeTaskAPI(t, []map[string]any{
		taskRow("t1", "Existing", "To Do", "viewer1"),
	})
	store := newTestStore(t, f, viewerAuth("viewer1", session.RoleUser))
	require.NoError(t, store.FetchTasks(context.Background()))

	before := time.Now()
	task, err := store.AddTask(context.Background(), AddInput{
		Title:   "X",
		Status:  StatusDone,
		DueDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "viewer1", task.UserID)
	require.NotNil(t, task.CompletedAt)
	assert.WithinDuration(t, before, *task.CompletedAt, 5*time.Second)

	st := store.Get()
	require.Len(t, st.Tasks, 2)
	assert.Equal(t, task.ID, st.Tasks[0].ID, "new task lands at the front")
}

func TestAddTaskFailureRecordsAndReturns(t *testing.T) {
	f := newFakeTaskAPI(t, nil)
	f.fail = true
	store := newTestStore(t, f, viewerAuth("viewer1", session.RoleUser))

	_, err := store.AddTask(context.Background(), AddInput{
		Title:   "X",
		DueDate: time.Now(),
	})

	require.Error(t, err, "write failures must propagate")
	st := store.Get()
	assert.False(t, st.Loading)
	assert.Contains(t, st.Error, "backend down")
}

func TestUpdateTaskOutOfDoneClearsCompletedAt(t *testing.T) {
	f := newFakeTaskAPI(t, []map[string]any{
		taskRow("t1", "Was done", "Done", "viewer1"),
		taskRow("t2", "Untouched", "To Do", "viewer1"),
	})
	store := newTestStore(t, f, viewerAuth("viewer1", session.RoleUser))
	require.NoError(t, store.FetchTasks(context.Background()))
	require.NotNil(t, store.Get().Tasks[0].CompletedAt)

	status := StatusTodo
	task, err := store.UpdateTask(context.Background(), "t1", Update{
		Status: &status,
	})
	require.NoError(t, err)

	// The fake merges the patch verbatim, so a nil timestamp here means
	// the container itself sent the explicit null.
	assert.Equal(t, StatusTodo, task.Status)
	assert.Nil(t, task.CompletedAt)

	st := store.Get()
	assert.Nil(t, st.Tasks[0].CompletedAt, "merged row replaces the old one")
	assert.Equal(t, "Untouched", st.Tasks[1].Title, "other tasks untouched")
}

func TestUpdateTaskIntoDoneSetsCompletedAt(t *testing.T) {
	f := newFakeTaskAPI(t, []map[string]any{
		taskRow("t1", "Pending", "To Do", "viewer1"),
	})
	store := newTestStore(t, f, viewerAuth("viewer1", session.RoleUser))
	require.NoError(t, store.FetchTasks(context.Background()))

	status := StatusDone
	task, err := store.UpdateTask(context.Background(), "t1", Update{
		Status: &status,
	})
	require.NoError(t, err)

	assert.Equal(t, StatusDone, task.Status)
	assert.NotNil(t, task.CompletedAt)
}

func TestDeleteTaskRemovesRow(t *testing.T) {
	f := newFakeTaskAPI(t, []map[string]any{
		taskRow("t1", "Keep", "To Do", "viewer1"),
		taskRow("t2", "Drop", "To Do", "viewer1"),
	})
	store := newTestStore(t, f, viewerAuth("viewer1", session.RoleUser))
	require.NoError(t, store.FetchTasks(context.Background()))

	require.NoError(t, store.DeleteTask(context.Background(), "t2"))

	st := store.Get()
	require.Len(t, st.Tasks, 1)
	assert.Equal(t, "t1", st.Tasks[0].ID)
}

func TestDeleteMissingTaskResolvesWithoutMutation(t *testing.T) {
	f := newFakeTaskAPI(t, []map[string]any{
		taskRow("t1", "Keep", "To Do", "viewer1"),
	})
	store := newTestStore(t, f, viewerAuth("viewer1", session.RoleUser))
	require.NoError(t, store.FetchTasks(context.Background()))

	require.NoError(t, store.DeleteTask(context.Background(), "ghost"))

	st := store.Get()
	assert.Len(t, st.Tasks, 1)
	assert.Empty(t, st.Error)
}

func TestGetTasksByStatusRoleScoped(t *testing.T) {
	rows := []map[string]any{
		taskRow("a1", "Admin done", "Done", "admin1"),
		taskRow("b1", "B done", "Done", "userB"),
		taskRow("b2", "B pending", "To Do", "userB"),
	}

	// Regular user B sees only their own done task.
	fB := newFakeTaskAPI(t, rows)
	storeB := newTestStore(t, fB, viewerAuth("userB", session.RoleUser))
	require.NoError(t, storeB.FetchTasks(context.Background()))

	doneB := storeB.GetTasksByStatus(StatusDone)
	require.Len(t, doneB, 1)
	assert.Equal(t, "b1", doneB[0].ID)
	for _, task := range doneB {
		assert.Equal(t, "userB", task.UserID)
	}

	// Admin sees every done task system-wide.
	fA := newFakeTaskAPI(t, rows)
	storeA := newTestStore(t, fA, viewerAuth("admin1", session.RoleAdmin))
	require.NoError(t, storeA.FetchTasks(context.Background()))

	doneA := storeA.GetTasksByStatus(StatusDone)
	assert.Len(t, doneA, 2)
}

func TestSearchTasks(t *testing.T) {
	groceries := taskRow("t1", "Buy groceries", "To Do", "viewer1")
	groceries["description"] = "milk and EGGS"

	f := newFakeTaskAPI(t, []map[string]any{
		groceries,
		taskRow("t2", "Write report", "To Do", "viewer1"),
		taskRow("t3", "Other user's task", "To Do", "someoneelse"),
	})
	store := newTestStore(t, f, viewerAuth("viewer1", session.RoleUser))
	require.NoError(t, store.FetchTasks(context.Background()))

	assert.Len(t, store.SearchTasks(""), 2, "empty query returns visible set")

	byTitle := store.SearchTasks("GROC")
	require.Len(t, byTitle, 1)
	assert.Equal(t, "t1", byTitle[0].ID)

	byDescription := store.SearchTasks("eggs")
	require.Len(t, byDescription, 1)
	assert.Equal(t, "t1", byDescription[0].ID)

	assert.Empty(t, store.SearchTasks("nomatch"))
}
