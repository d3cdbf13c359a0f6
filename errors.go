package iamcore

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidCredentials is returned when no matching account exists or
	// the secret does not match. The two cases are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountInactive is returned when the account or owning user is not
	// in the active state.
	ErrAccountInactive = errors.New("account inactive")
	// ErrAccountLocked is returned when the account or owning user is locked.
	ErrAccountLocked = errors.New("account locked")
	// ErrLoginRateLimited is returned when the login throttle budget for the
	// credential is exhausted.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrPermissionDenied is the sentinel matched by [PermissionDeniedError]
	// through errors.Is.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrSessionNotFound is returned by Attach when the token has no session
	// cache entry.
	ErrSessionNotFound = errors.New("session not found")
	// ErrConfiguration is returned for invalid or missing configuration,
	// fatal at Build time.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrCacheUnavailable marks a missing or failing cache collaborator.
	// Cache-clearing operations degrade to a logged warning instead of
	// propagating it.
	ErrCacheUnavailable = errors.New("cache unavailable")
	// ErrEngineNotReady is returned when an Engine method is called on a nil
	// or unbuilt engine.
	ErrEngineNotReady = errors.New("engine not initialized")
)

// PermissionDeniedError carries the required-code context of a denied
// authorization check for logs and diagnostics. It matches
// [ErrPermissionDenied] under errors.Is; the calling layer decides what, if
// anything, is shown to the end user.
type PermissionDeniedError struct {
	// Required is the original comma-joined required-code expression.
	Required string
	// Missing lists the codes the principal would have needed.
	Missing []string
}

func (e *PermissionDeniedError) Error() string {
	if len(e.Missing) == 0 {
		return "permission denied: " + e.Required
	}
	return "permission denied, missing: " + strings.Join(e.Missing, ",")
}

// Is reports whether target is [ErrPermissionDenied].
func (e *PermissionDeniedError) Is(target error) bool {
	return target == ErrPermissionDenied
}
