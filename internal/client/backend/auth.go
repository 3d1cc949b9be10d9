// AngelaMos | 2026
// auth.go

package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// refreshMargin is how long before access-token expiry the auto-refresh
// loop renews the session.
const refreshMargin = time.Minute

// Auth manages the client session: sign-up/in/out, restoration from the
// persisted refresh token, and an auth-change notification bus. Every
// session transition fires the registered callbacks, and new subscribers
// receive the current state immediately.
type Auth struct {
	client  *Client
	storage SessionStorage
	logger  *slog.Logger

	mu      sync.RWMutex
	session *Session

	subMu  sync.Mutex
	subs   map[int]AuthCallback
	nextID int

	refreshMu   sync.Mutex
	refreshStop chan struct{}
}

func newAuth(client *Client, storage SessionStorage, logger *slog.Logger) *Auth {
	return &Auth{
		client:  client,
		storage: storage,
		logger:  logger,
		subs:    make(map[int]AuthCallback),
	}
}

type SignUpParams struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// SignUpResult carries no session when the account requires email
// confirmation before first sign-in.
type SignUpResult struct {
	User              RemoteUser `json:"user"`
	Session           *Session   `json:"session"`
	NeedsConfirmation bool       `json:"needs_confirmation"`
}

func (a *Auth) SignUp(
	ctx context.Context,
	params SignUpParams,
) (*SignUpResult, error) {
	var result SignUpResult
	err := a.client.do(
		ctx,
		http.MethodPost,
		"/v1/auth/register",
		"",
		params,
		&result,
	)
	if err != nil {
		return nil, err
	}

	if result.Session != nil {
		a.adoptSession(result.Session, EventSignedIn)
	}

	return &result, nil
}

func (a *Auth) SignInWithPassword(
	ctx context.Context,
	email, password string,
) (*Session, error) {
	body := map[string]string{"email": email, "password": password}

	var session Session
	err := a.client.do(
		ctx,
		http.MethodPost,
		"/v1/auth/login",
		"",
		body,
		&session,
	)
	if err != nil {
		return nil, err
	}

	a.adoptSession(&session, EventSignedIn)
	return &session, nil
}

// SignOut revokes the session server-side and clears local state. The
// remote call is best-effort: a failure is logged but local sign-out always
// completes.
func (a *Auth) SignOut(ctx context.Context) error {
	a.mu.RLock()
	session := a.session
	a.mu.RUnlock()

	if session != nil {
		body := map[string]string{"refresh_token": session.RefreshToken}
		err := a.client.do(
			ctx,
			http.MethodPost,
			"/v1/auth/logout",
			session.AccessToken,
			body,
			nil,
		)
		if err != nil {
			a.logger.Warn("remote sign-out failed", "error", err)
		}
	}

	a.clearSession(EventSignedOut)
	return nil
}

// GetSession returns the live session, refreshing it from the persisted
// refresh token when needed. It returns (nil, nil) when no session exists,
// so callers can distinguish signed-out from a backend failure.
func (a *Auth) GetSession(ctx context.Context) (*Session, error) {
	a.mu.RLock()
	session := a.session
	a.mu.RUnlock()

	if session != nil && !session.Expired() {
		return session, nil
	}

	refreshToken := ""
	if session != nil {
		refreshToken = session.RefreshToken
	} else if a.storage != nil {
		stored, err := a.storage.Load()
		if err != nil {
			return nil, fmt.Errorf("load stored session: %w", err)
		}
		if stored == nil {
			return nil, nil
		}
		refreshToken = stored.RefreshToken
	}

	if refreshToken == "" {
		return nil, nil
	}

	refreshed, err := a.refresh(ctx, refreshToken)
	if err != nil {
		// A rejected refresh token means the session is gone for good;
		// drop the stale file so the next start skips the round trip.
		if IsStatus(err, http.StatusUnauthorized) {
			a.clearSession(EventSignedOut)
			return nil, nil
		}
		return nil, err
	}

	return refreshed, nil
}

func (a *Auth) refresh(
	ctx context.Context,
	refreshToken string,
) (*Session, error) {
	body := map[string]string{"refresh_token": refreshToken}

	var session Session
	err := a.client.do(
		ctx,
		http.MethodPost,
		"/v1/auth/refresh",
		"",
		body,
		&session,
	)
	if err != nil {
		return nil, err
	}

	a.adoptSession(&session, EventTokenRefreshed)
	return &session, nil
}

// AccessToken returns the current bearer token, or "" when signed out.
func (a *Auth) AccessToken() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return ""
	}
	return a.session.AccessToken
}

// CurrentSession returns the in-memory session without any network call.
func (a *Auth) CurrentSession() *Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.session
}

// OnAuthStateChange registers a callback for session transitions and fires
// it immediately with the current state. The returned function removes the
// subscription.
func (a *Auth) OnAuthStateChange(cb AuthCallback) func() {
	a.subMu.Lock()
	id := a.nextID
	a.nextID++
	a.subs[id] = cb
	a.subMu.Unlock()

	cb(EventInitialSession, a.CurrentSession())

	return func() {
		a.subMu.Lock()
		delete(a.subs, id)
		a.subMu.Unlock()
	}
}

// StartAutoRefresh renews the session in the background shortly before each
// expiry. It is a no-op if a refresh loop is already running.
func (a *Auth) StartAutoRefresh(ctx context.Context) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	if a.refreshStop != nil {
		return
	}

	stop := make(chan struct{})
	a.refreshStop = stop

	go a.refreshLoop(ctx, stop)
}

func (a *Auth) StopAutoRefresh() {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	if a.refreshStop != nil {
		close(a.refreshStop)
		a.refreshStop = nil
	}
}

func (a *Auth) refreshLoop(ctx context.Context, stop chan struct{}) {
	for {
		a.mu.RLock()
		session := a.session
		a.mu.RUnlock()

		if session == nil {
			return
		}

		wait := time.Until(session.ExpiresAt) - refreshMargin
		if wait < 0 {
			wait = 0
		}

		timer := time.NewTimer(wait)
		select {
		case <-stop:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := a.refresh(ctx, session.RefreshToken); err != nil {
			a.logger.Warn("session auto-refresh failed", "error", err)
			if IsStatus(err, http.StatusUnauthorized) {
				a.clearSession(EventSignedOut)
				return
			}
			// Transient failure: retry once the old expiry passes.
			time.Sleep(refreshMargin)
		}
	}
}

func (a *Auth) adoptSession(session *Session, event AuthEvent) {
	a.mu.Lock()
	a.session = session
	a.mu.Unlock()

	if a.storage != nil {
		err := a.storage.Save(&StoredSession{
			RefreshToken: session.RefreshToken,
			UserID:       session.User.ID,
		})
		if err != nil {
			a.logger.Warn("persist session failed", "error", err)
		}
	}

	a.emit(event, session)
}

func (a *Auth) clearSession(event AuthEvent) {
	a.mu.Lock()
	a.session = nil
	a.mu.Unlock()

	if a.storage != nil {
		if err := a.storage.Clear(); err != nil {
			a.logger.Warn("clear stored session failed", "error", err)
		}
	}

	a.emit(event, nil)
}

func (a *Auth) emit(event AuthEvent, session *Session) {
	a.subMu.Lock()
	subs := make([]AuthCallback, 0, len(a.subs))
	for _, cb := range a.subs {
		subs = append(subs, cb)
	}
	a.subMu.Unlock()

	for _, cb := range subs {
		cb(event, session)
	}
}
