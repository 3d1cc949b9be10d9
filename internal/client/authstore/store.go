// AngelaMos | 2026
// store.go

// Package authstore owns the authenticated-user record: one process-wide
// container holding the current user and token, fed by explicit operations
// (login, signup, logout, restore) and by the backend's auth-change
// notifications. A safe subset of the state survives restarts; the token
// never does.
package authstore

import (
	"context"
	"log/slog"
	"time"

	"github.com/carterperez-dev/taskflow/internal/client/backend"
	"github.com/carterperez-dev/taskflow/internal/client/session"
	"github.com/carterperez-dev/taskflow/internal/client/state"
)

const minPasswordLength = 8

// profileFetchTimeout bounds the best-effort profile lookup during
// notification handling.
const profileFetchTimeout = 5 * time.Second

type State struct {
	User            *session.User
	Token           string
	IsAuthenticated bool
	Loading         bool
}

type Config struct {
	Backend *backend.Client
	Storage Storage
	Logger  *slog.Logger
}

type Store struct {
	backend *backend.Client
	storage Storage
	logger  *slog.Logger
	state   *state.Store[State]
}

// New builds the container and starts its push subscription. The persisted
// snapshot, if any, seeds the user field as a UI hint only: IsAuthenticated
// stays false until RestoreSession verifies a live session.
func New(cfg Config) *Store {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		backend: cfg.Backend,
		storage: cfg.Storage,
		logger:  logger,
		state:   state.New(State{}),
	}

	if hint := s.loadSnapshot(); hint != nil && hint.State.User != nil {
		s.state.Set(State{User: hint.State.User})
	}

	// The subscription lives for the process lifetime; the container is a
	// singleton and is never torn down.
	s.backend.Auth.OnAuthStateChange(s.handleAuthChange)

	return s
}

func (s *Store) Get() State {
	return s.state.Get()
}

// Subscribe registers fn for every state change and returns an unsubscribe
// function.
func (s *Store) Subscribe(fn func(State)) func() {
	return s.state.Subscribe(fn)
}

// Login signs in with email and password. On failure the state is left
// exactly as it was.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	sess, err := s.backend.Auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return newAuthError(err)
	}

	s.applySession(ctx, sess)
	return nil
}

type SignupParams struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// Signup registers an account. When the backend requires email
// confirmation it returns no session; the container then clears its state
// and reports needsConfirmation=true so the UI can prompt for the
// confirmation step instead of treating the user as signed in.
func (s *Store) Signup(
	ctx context.Context,
	params SignupParams,
) (needsConfirmation bool, err error) {
	if err := validateSignup(params); err != nil {
		return false, err
	}

	result, err := s.backend.Auth.SignUp(ctx, backend.SignUpParams{
		Email:     params.Email,
		Password:  params.Password,
		FirstName: params.FirstName,
		LastName:  params.LastName,
	})
	if err != nil {
		return false, newAuthError(err)
	}

	if result.Session == nil {
		s.clear()
		return true, nil
	}

	s.applySession(ctx, result.Session)
	return false, nil
}

// Logout signs out remotely (best effort) and unconditionally clears local
// state and the persisted snapshot.
func (s *Store) Logout(ctx context.Context) {
	if err := s.backend.Auth.SignOut(ctx); err != nil {
		s.logger.Warn("sign-out error", "error", err)
	}
	s.clear()
}

// RestoreSession reconciles local state against a live backend check. The
// persisted snapshot is never trusted on its own: no session server-side
// means signed out, whatever the snapshot said.
func (s *Store) RestoreSession(ctx context.Context) {
	sess, err := s.backend.Auth.GetSession(ctx)
	if err != nil {
		s.logger.Warn("session restore failed", "error", err)
		s.clear()
		return
	}
	if sess == nil {
		s.clear()
		return
	}

	s.applySession(ctx, sess)
}

// SetUser overwrites the user locally, re-deriving the avatar if absent,
// and marks the state authenticated. No network call is made.
func (s *Store) SetUser(user session.User) {
	if user.AvatarURL == "" {
		user.AvatarURL = session.AvatarURL(user.FirstName, user.LastName)
	}

	s.state.Update(func(st State) State {
		st.User = &user
		st.IsAuthenticated = true
		return st
	})
	s.persist()
}

// handleAuthChange is the push-subscription entry point. It mutates state
// only through the same primitives as the caller-facing operations, skips
// no-op notifications for an unchanged user id, and never lets
// IsAuthenticated stay true with a nil user.
func (s *Store) handleAuthChange(event backend.AuthEvent, sess *backend.Session) {
	if sess == nil {
		if event == backend.EventInitialSession {
			return
		}
		if s.state.Get().IsAuthenticated {
			s.clear()
		}
		return
	}

	current := s.state.Get()
	if current.User != nil && current.User.ID == sess.User.ID &&
		current.IsAuthenticated {
		// Same principal; just track the rotated token.
		s.state.Update(func(st State) State {
			st.Token = sess.AccessToken
			return st
		})
		return
	}

	ctx, cancel := context.WithTimeout(
		context.Background(),
		profileFetchTimeout,
	)
	defer cancel()

	user := s.mapSessionUser(ctx, sess)
	s.setAuthenticated(user, sess.AccessToken)
}

// applySession maps the session into state unless the push subscription,
// which runs synchronously during the backend call, has already applied
// this exact session. The skip keeps each sign-in to a single profile
// fetch and a single notification.
func (s *Store) applySession(ctx context.Context, sess *backend.Session) {
	current := s.state.Get()
	if current.IsAuthenticated && current.User != nil &&
		current.User.ID == sess.User.ID &&
		current.Token == sess.AccessToken {
		return
	}

	user := s.mapSessionUser(ctx, sess)
	s.setAuthenticated(user, sess.AccessToken)
}

// mapSessionUser maps the session user, enriching it with the profile row
// when one can be fetched. Profile errors degrade to metadata-only mapping.
func (s *Store) mapSessionUser(
	ctx context.Context,
	sess *backend.Session,
) session.User {
	profile, err := s.backend.Profiles.Get(ctx, sess.User.ID)
	if err != nil {
		s.logger.Warn("profile fetch failed, using metadata",
			"user_id", sess.User.ID,
			"error", err,
		)
		profile = nil
	}

	return session.MapRemoteUser(&sess.User, profile)
}

func (s *Store) setAuthenticated(user session.User, token string) {
	s.state.Update(func(st State) State {
		st.User = &user
		st.Token = token
		st.IsAuthenticated = true
		return st
	})
	s.persist()
}

func (s *Store) clear() {
	s.state.Set(State{})
	if s.storage != nil {
		if err := s.storage.Delete(StorageKey); err != nil {
			s.logger.Warn("clear snapshot failed", "error", err)
		}
	}
}

func (s *Store) persist() {
	if s.storage == nil {
		return
	}

	st := s.state.Get()
	data, err := encodeSnapshot(st.User, st.IsAuthenticated)
	if err != nil {
		s.logger.Warn("encode snapshot failed", "error", err)
		return
	}

	if err := s.storage.Set(StorageKey, data); err != nil {
		s.logger.Warn("persist snapshot failed", "error", err)
	}
}

func (s *Store) loadSnapshot() *Snapshot {
	if s.storage == nil {
		return nil
	}

	data, ok, err := s.storage.Get(StorageKey)
	if err != nil || !ok {
		return nil
	}

	snap, err := decodeSnapshot(data)
	if err != nil {
		s.logger.Warn("corrupt snapshot discarded", "error", err)
		return nil
	}

	return snap
}

func validateCredentials(email, password string) error {
	if email == "" {
		return &ValidationError{Field: "email", Message: "required"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Message: "required"}
	}
	return nil
}

func validateSignup(params SignupParams) error {
	if err := validateCredentials(params.Email, params.Password); err != nil {
		return err
	}
	if len(params.Password) < minPasswordLength {
		return &ValidationError{
			Field:   "password",
			Message: "must be at least 8 characters",
		}
	}
	if params.Password != params.ConfirmPassword {
		return &ValidationError{
			Field:   "confirm_password",
			Message: "passwords do not match",
		}
	}
	if params.FirstName == "" {
		return &ValidationError{Field: "first_name", Message: "required"}
	}
	if params.LastName == "" {
		return &ValidationError{Field: "last_name", Message: "required"}
	}
	return nil
}
