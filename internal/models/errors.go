package models

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind enumerates the failure variants the workflow dispatches on.
type ErrorKind string

const (
	ErrUnknown       ErrorKind = "unknown"
	ErrValidation    ErrorKind = "validation"
	ErrAuth          ErrorKind = "auth"
	ErrRateLimit     ErrorKind = "rate_limit"
	ErrNotFound      ErrorKind = "not_found"
	ErrAlreadyMerged ErrorKind = "already_merged"
	ErrClosed        ErrorKind = "closed"
	ErrConflicts     ErrorKind = "conflicts"
	ErrNotMergeable  ErrorKind = "not_mergeable"
	ErrMergeBlocked  ErrorKind = "merge_blocked"
	ErrNeedsRebase   ErrorKind = "needs_rebase"
	ErrTimeout       ErrorKind = "timeout"
	ErrNetwork       ErrorKind = "network"
)

// Error is the single tagged-variant error type used across the workflow.
// The kind carries the dispatch decision; the payload fields are populated
// per kind (reset time for rate limits, operation and timeout for polling
// deadlines, PR number for state errors).
type Error struct {
	Kind       ErrorKind
	Message    string
	PRNumber   int
	Operation  string
	Timeout    time.Duration
	ResetTime  time.Time
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError creates a validation error
func NewValidationError(msg string) *Error {
	return &Error{Kind: ErrValidation, Message: msg}
}

// NewAuthError creates an authentication error
func NewAuthError(msg string, err error) *Error {
	return &Error{Kind: ErrAuth, Message: msg, Err: err}
}

// NewRateLimitError creates a rate-limit error carrying the server-provided
// reset time, which the retry policy sleeps until.
func NewRateLimitError(msg string, reset time.Time, err error) *Error {
	return &Error{Kind: ErrRateLimit, Message: msg, ResetTime: reset, Err: err}
}

// NewTimeoutError creates a polling-deadline error naming the operation
func NewTimeoutError(operation string, timeout time.Duration) *Error {
	return &Error{
		Kind:      ErrTimeout,
		Message:   fmt.Sprintf("timed out after %s waiting for %s", timeout, operation),
		Operation: operation,
		Timeout:   timeout,
	}
}

// NewPRStateError creates an error for a pull request in a state that
// prevents the requested operation.
func NewPRStateError(kind ErrorKind, prNumber int, msg string) *Error {
	return &Error{Kind: kind, Message: msg, PRNumber: prNumber}
}

// NewNetworkError wraps a transport-level failure
func NewNetworkError(msg string, statusCode int, err error) *Error {
	return &Error{Kind: ErrNetwork, Message: msg, StatusCode: statusCode, Err: err}
}

// KindOf returns the kind tag of err, or ErrUnknown for foreign errors
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrUnknown
}

// IsKind checks if err carries the given kind tag
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// IsRecoverable reports whether the error taxonomy marks err as transient:
// the retry policy may re-attempt the operation.
func IsRecoverable(err error) bool {
	switch KindOf(err) {
	case ErrRateLimit, ErrNetwork:
		return true
	}
	return false
}
