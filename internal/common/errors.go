// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Classified application errors. Every mutating operation surfaces one of
// these (wrapped with context) or succeeds; partial state is never left
// behind.
var (
	// ErrUnauthorized means the access gate denied the caller: no session,
	// expired session, or wrong role.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidArgument means the request itself is malformed, e.g. a
	// rejection without a reason.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrPreconditionFailed means a state machine precondition does not
	// hold, e.g. fund release before dual approval.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrAlreadyTerminal means a terminal transition was re-applied.
	ErrAlreadyTerminal = errors.New("already terminal")

	// ErrNotFound means the target entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDrainActive means another drain holds the queue.
	ErrDrainActive = errors.New("drain already in progress")
)

// RetryableError wraps an error with its transient/permanent classification.
// Retryable errors halt a drain at the failing item; permanent ones remove
// the item and are surfaced to the caller.
type RetryableError struct {
	Err       error
	Retryable bool
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Transient marks err as retryable (connectivity loss, timeout, 5xx).
func Transient(err error) error {
	return &RetryableError{Err: err, Retryable: true}
}

// Permanent marks err as not retryable (malformed payload, target gone).
func Permanent(err error) error {
	return &RetryableError{Err: err, Retryable: false}
}

// IsRetryable determines if an error should trigger a retry.
func IsRetryable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
