// AngelaMos | 2026
// store_test.go

package authstore

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/taskflow/internal/client/backend"
	"github.com/carterperez-dev/taskflow/internal/client/session"
)

type memStorage struct {
	m map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{m: make(map[string][]byte)}
}

func (s *memStorage) Get(key string) ([]byte, bool, error) {
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *memStorage) Set(key string, value []byte) error {
	s.m[key] = value
	return nil
}

func (s *memStorage) Delete(key string) error {
	delete(s.m, key)
	return nil
}

// fakeAPI emulates the auth and profile endpoints the container talks to.
type fakeAPI struct {
	srv *httptest.Server

	calls          atomic.Int64
	profileCalls   atomic.Int64
	needsConfirm   bool
	hasLiveSession bool
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()

	f := &fakeAPI{}
	mux := http.NewServeMux()

	mux.HandleFunc("POST /v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		if req.Email != "jane@example.com" || req.Password != "password123" {
			writeErr(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		writeData(w, http.StatusOK, f.session())
	})

	mux.HandleFunc("POST /v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if f.needsConfirm {
			writeData(w, http.StatusCreated, map[string]any{
				"user":               f.user(),
				"needs_confirmation": true,
			})
			return
		}
		writeData(w, http.StatusCreated, map[string]any{
			"user":               f.user(),
			"session":            f.session(),
			"needs_confirmation": false,
		})
	})

	mux.HandleFunc("POST /v1/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		if !f.hasLiveSession {
			writeErr(w, http.StatusUnauthorized, "token invalid")
			return
		}
		writeData(w, http.StatusOK, f.session())
	})

	mux.HandleFunc("POST /v1/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /v1/profiles/u1", func(w http.ResponseWriter, r *http.Request) {
		f.calls.Add(1)
		f.profileCalls.Add(1)
		writeData(w, http.StatusOK, map[string]any{
			"id":         "u1",
			"first_name": "Jane",
			"last_name":  "Doe",
			"role":       "admin",
		})
	})

	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAPI) user() map[string]any {
	return map[string]any{
		"id":    "u1",
		"email": "jane@example.com",
		"metadata": map[string]any{
			"first_name": "Jane",
			"last_name":  "Doe",
		},
	}
}

func (f *fakeAPI) session() map[string]any {
	return map[string]any{
		"access_token":  "access-token-value",
		"refresh_token": "refresh-token-value",
		"token_type":    "Bearer",
		"expires_in":    900,
		"expires_at":    time.Now().Add(15 * time.Minute).Format(time.RFC3339),
		"user":          f.user(),
	}
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

func newTestStore(t *testing.T, f *fakeAPI, storage Storage) *Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(
		testWriter{t},
		&slog.HandlerOptions{Level: slog.LevelError},
	))

	client := backend.New(backend.Config{
		BaseURL: f.srv.URL,
		Logger:  logger,
	})

	return New(Config{Backend: client, Storage: storage, Logger: logger})
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func TestLoginSuccess(t *testing.T) {
	f := newFakeAPI(t)
	storage := newMemStorage()
	store := newTestStore(t, f, storage)

	err := store.Login(context.Background(), "jane@example.com", "password123")
	require.NoError(t, err)

	st := store.Get()
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "jane@example.com", st.User.Email)
	assert.Equal(t, "Jane", st.User.FirstName)
	assert.Equal(t, "admin", st.User.Role, "role resolved from profile")
	assert.Equal(t, "access-token-value", st.Token)
}

func TestLoginFetchesProfileOnce(t *testing.T) {
	f := newFakeAPI(t)
	store := newTestStore(t, f, newMemStorage())

	require.NoError(
		t,
		store.Login(context.Background(), "jane@example.com", "password123"),
	)

	assert.True(t, store.Get().IsAuthenticated)
	assert.EqualValues(
		t,
		1,
		f.profileCalls.Load(),
		"subscription and caller must not each map the same session",
	)
}

func TestLoginFailureLeavesStateUnchanged(t *testing.T) {
	f := newFakeAPI(t)
	store := newTestStore(t, f, newMemStorage())

	err := store.Login(context.Background(), "jane@example.com", "wrongpass")

	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "invalid email or password", authErr.Message)

	st := store.Get()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Empty(t, st.Token)
}

func TestLoginValidationSkipsNetwork(t *testing.T) {
	f := newFakeAPI(t)
	store := newTestStore(t, f, newMemStorage())

	err := store.Login(context.Background(), "", "password123")

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "email", valErr.Field)
	assert.Zero(t, f.calls.Load(), "no request before validation passes")
}

func TestSnapshotExcludesToken(t *testing.T) {
	f := newFakeAPI(t)
	storage := newMemStorage()
	store := newTestStore(t, f, storage)

	require.NoError(
		t,
		store.Login(context.Background(), "jane@example.com", "password123"),
	)

	raw, ok, err := storage.Get(StorageKey)
	require.NoError(t, err)
	require.True(t, ok, "snapshot persisted on state change")

	assert.NotContains(t, string(raw), "access-token-value")
	assert.NotContains(t, string(raw), "refresh-token-value")

	snap, err := decodeSnapshot(raw)
	require.NoError(t, err)
	assert.True(t, snap.State.IsAuthenticated)
	require.NotNil(t, snap.State.User)
	assert.Equal(t, "u1", snap.State.User.ID)
}

func TestSignupNeedsConfirmation(t *testing.T) {
	f := newFakeAPI(t)
	f.needsConfirm = true
	store := newTestStore(t, f, newMemStorage())

	needsConfirmation, err := store.Signup(context.Background(), SignupParams{
		Email:           "jane@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		FirstName:       "Jane",
		LastName:        "Doe",
	})
	require.NoError(t, err)

	assert.True(t, needsConfirmation)
	assert.False(t, store.Get().IsAuthenticated)
	assert.Nil(t, store.Get().User)
}

func TestSignupWithImmediateSession(t *testing.T) {
	f := newFakeAPI(t)
	store := newTestStore(t, f, newMemStorage())

	needsConfirmation, err := store.Signup(context.Background(), SignupParams{
		Email:           "jane@example.com",
		Password:        "password123",
		ConfirmPassword: "password123",
		FirstName:       "Jane",
		LastName:        "Doe",
	})
	require.NoError(t, err)

	assert.False(t, needsConfirmation)
	assert.True(t, store.Get().IsAuthenticated)
}

func TestSignupPasswordMismatch(t *testing.T) {
	f := newFakeAPI(t)
	store := newTestStore(t, f, newMemStorage())

	_, err := store.Signup(context.Background(), SignupParams{
		Email:           "jane@example.com",
		Password:        "password123",
		ConfirmPassword: "different123",
		FirstName:       "Jane",
		LastName:        "Doe",
	})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "confirm_password", valErr.Field)
	assert.Zero(t, f.calls.Load())
}

func TestLogoutClearsStateAndSnapshot(t *testing.T) {
	f := newFakeAPI(t)
	storage := newMemStorage()
	store := newTestStore(t, f, storage)

	require.NoError(
		t,
		store.Login(context.Background(), "jane@example.com", "password123"),
	)

	store.Logout(context.Background())

	st := store.Get()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
	assert.Empty(t, st.Token)

	_, ok, err := storage.Get(StorageKey)
	require.NoError(t, err)
	assert.False(t, ok, "persisted snapshot removed on logout")
}

func TestRestoreSessionWithNoSessionClearsState(t *testing.T) {
	f := newFakeAPI(t)
	store := newTestStore(t, f, newMemStorage())

	store.RestoreSession(context.Background())

	assert.False(t, store.Get().IsAuthenticated)
	assert.Nil(t, store.Get().User)
}

func TestRestoreSessionIdempotent(t *testing.T) {
	f := newFakeAPI(t)
	f.hasLiveSession = true

	sessionStorage := backend.NewFileStorage(t.TempDir() + "/session.json")
	require.NoError(t, sessionStorage.Save(&backend.StoredSession{
		RefreshToken: "refresh-token-value",
		UserID:       "u1",
	}))

	logger := slog.New(slog.NewTextHandler(
		testWriter{t},
		&slog.HandlerOptions{Level: slog.LevelError},
	))
	client := backend.New(backend.Config{
		BaseURL: f.srv.URL,
		Logger:  logger,
		Storage: sessionStorage,
	})
	store := New(Config{
		Backend: client,
		Storage: newMemStorage(),
		Logger:  logger,
	})

	store.RestoreSession(context.Background())
	first := store.Get()
	require.True(t, first.IsAuthenticated)

	store.RestoreSession(context.Background())
	second := store.Get()

	assert.Equal(t, first.IsAuthenticated, second.IsAuthenticated)
	assert.Equal(t, *first.User, *second.User)
}

func TestSnapshotHintDoesNotAuthenticate(t *testing.T) {
	f := newFakeAPI(t)
	storage := newMemStorage()

	data, err := encodeSnapshot(&session.User{
		ID:        "u1",
		Email:     "jane@example.com",
		FirstName: "Jane",
	}, true)
	require.NoError(t, err)
	require.NoError(t, storage.Set(StorageKey, data))

	store := newTestStore(t, f, storage)

	st := store.Get()
	require.NotNil(t, st.User, "snapshot user available as a UI hint")
	assert.Equal(t, "Jane", st.User.FirstName)
	assert.False(
		t,
		st.IsAuthenticated,
		"persisted flag never trusted before verification",
	)
}

func TestAuthChangeSameUserOnlyRotatesToken(t *testing.T) {
	f := newFakeAPI(t)
	store := newTestStore(t, f, newMemStorage())

	require.NoError(
		t,
		store.Login(context.Background(), "jane@example.com", "password123"),
	)
	before := store.Get()

	store.handleAuthChange(backend.EventTokenRefreshed, &backend.Session{
		AccessToken:  "rotated-token",
		RefreshToken: "rotated-refresh",
		ExpiresAt:    time.Now().Add(15 * time.Minute),
		User: backend.RemoteUser{
			ID:    "u1",
			Email: "jane@example.com",
		},
	})

	st := store.Get()
	assert.True(t, st.IsAuthenticated)
	assert.Equal(t, "rotated-token", st.Token)
	assert.Same(t, before.User, st.User, "no user remap for an unchanged id")
}

func TestAuthChangeNilSessionSignsOut(t *testing.T) {
	f := newFakeAPI(t)
	store := newTestStore(t, f, newMemStorage())

	require.NoError(
		t,
		store.Login(context.Background(), "jane@example.com", "password123"),
	)

	store.handleAuthChange(backend.EventSignedOut, nil)

	st := store.Get()
	assert.False(t, st.IsAuthenticated)
	assert.Nil(t, st.User)
}
