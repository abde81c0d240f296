package session

import (
	"errors"
	"fmt"
)

// ErrUnauthorized is the base of every authentication failure. Middleware
// matches on it with errors.Is and answers 401 uniformly; the wrapped
// sub-reason stays visible in logs only.
var ErrUnauthorized = errors.New("unauthorized")

var (
	ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", ErrUnauthorized)
	ErrTokenInvalid       = fmt.Errorf("invalid token: %w", ErrUnauthorized)
	ErrSessionSuperseded  = fmt.Errorf("session superseded: %w", ErrUnauthorized)
	ErrAccountNotFound    = fmt.Errorf("account not found: %w", ErrUnauthorized)
)

// ErrSessionActive is a conflict, not an auth failure: the caller already
// proved the password and only needs to confirm a force login. Deliberately
// outside the ErrUnauthorized tree so callers cannot collapse the two.
var ErrSessionActive = errors.New("session already active")
