package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers lookups for rows that do not exist or are not
	// visible to the caller.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied is returned when a recipient has no share for the
	// document they are trying to open.
	ErrAccessDenied = errors.New("access denied")

	// ErrAlreadyCompleted is returned on a second answer submission for the
	// same (recipient, document) pair. Submitted is a terminal state.
	ErrAlreadyCompleted = errors.New("quiz already completed")
)

// ValidationError reports malformed or out-of-range input. The message names
// the violated constraint so the caller can fix it.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func validationErrorf(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// AuthenticationError means no valid identity where one is required.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string { return e.Reason }

// RecipientResolutionError carries the submitted email addresses that do not
// belong to any registered user. Distribution aborts entirely when any
// address fails to resolve.
type RecipientResolutionError struct {
	Unresolved []string
}

func (e *RecipientResolutionError) Error() string {
	if len(e.Unresolved) == 0 {
		return "no valid recipients"
	}
	return "no registered account for: " + strings.Join(e.Unresolved, ", ")
}

// GenerationError wraps a failed or unparsable AI generation call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string { return "quiz generation failed: " + e.Err.Error() }
func (e *GenerationError) Unwrap() error { return e.Err }

// StorageError wraps a failed persistence call. Writes from the same logical
// operation are rolled back before it is returned.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *StorageError) Unwrap() error { return e.Err }
