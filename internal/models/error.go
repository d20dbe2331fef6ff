package models

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Account state errors
	ErrAccountUnapproved = errors.New("account awaiting admin approval")
	ErrAccountBlocked    = errors.New("account is blocked")

	// Rate limiting
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// ValidationError is a user-facing input rejection. The message is safe to
// return in a 400 response body.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CredentialsError is returned on a failed password or lookup check. It
// carries the running failure count so the handler can expose a
// remaining-attempts hint without leaking the internal threshold.
type CredentialsError struct {
	Attempts  int
	Threshold int
}

func (e *CredentialsError) Error() string {
	return "email or password incorrect"
}

// RemainingAttempts is threshold minus attempts, floored at zero.
func (e *CredentialsError) RemainingAttempts() int {
	remaining := e.Threshold - e.Attempts
	if remaining < 0 {
		return 0
	}
	return remaining
}

// LockedError is returned when an account lockout is active, or when the
// current attempt crossed the threshold and created a fresh lock.
type LockedError struct {
	LockedUntil time.Time
	Attempts    int
	Fresh       bool // true when this attempt caused the lock
}

func (e *LockedError) Error() string {
	if e.Fresh {
		return "too many failed attempts; account locked for 15 minutes"
	}
	minutes := int(time.Until(e.LockedUntil).Minutes()) + 1
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("account locked; try again in %d minute(s)", minutes)
}
