// AngelaMos | 2026
// errors.go

package authstore

import (
	"errors"
	"fmt"
)

// ErrNotAuthenticated means an operation needed a signed-in user and none
// is set.
var ErrNotAuthenticated = errors.New("not authenticated")

// AuthError is a backend rejection of an auth operation, with the backend's
// message preserved for the caller.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func newAuthError(err error) *AuthError {
	return &AuthError{Message: err.Error(), Err: err}
}

// ValidationError is a caller-side input rejection raised before any state
// mutation or network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}
