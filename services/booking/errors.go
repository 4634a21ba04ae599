package booking

import (
	"fmt"
	"strings"
)

// The engine surfaces exactly five error kinds. Handlers match them with
// errors.As and map each to a status code; nothing in the engine panics or
// swallows an error.

// ValidationError covers malformed input and slots that fall outside any
// open interval. Always detectable before a write is attempted.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Message
}

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError means the candidate slot overlaps an existing non-terminal
// booking. Retryable after a fresh availability read; BlockingIDs lets a
// client refresh instead of blindly retrying the same slot.
type ConflictError struct {
	Message     string
	BlockingIDs []string
}

func (e *ConflictError) Error() string {
	if len(e.BlockingIDs) == 0 {
		return "conflict: " + e.Message
	}
	return "conflict: " + e.Message + " (blocked by " + strings.Join(e.BlockingIDs, ", ") + ")"
}

// PolicyError means minimum-notice or maximum-advance was violated. Not
// retryable without changing the request.
type PolicyError struct {
	Message string
}

func (e *PolicyError) Error() string {
	return "policy: " + e.Message
}

func NewPolicyError(format string, args ...any) error {
	return &PolicyError{Message: fmt.Sprintf(format, args...)}
}

// InvalidTransitionError means the requested status change is not legal.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}

// PersistenceError wraps a failed or timed-out atomic commit. Retryable by
// the caller with backoff; never silently treated as success.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NotFoundError reports a missing booking, provider or service.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}
