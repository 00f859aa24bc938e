/*
Package shared holds the building blocks used by every subdomain: aggregate
and event contracts, the Money value object, composable specifications,
pagination and the error taxonomy.

Error design:
 1. Sentinel errors classify failures and are matched with errors.Is.
 2. DomainError captures the call stack when it is created and formats it
    lazily, only when a log line asks for it.
 3. No transport concepts (HTTP status codes) live here.
*/
package shared

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ============================================================================
// Sentinel errors
// ============================================================================

var (
	// ErrNotFound the referenced item or order does not exist (or is soft-deleted).
	ErrNotFound = errors.New("not found")

	// ErrConflict a concurrent writer changed the aggregate first; the whole
	// operation may be retried.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput the caller passed an argument that violates an invariant.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized no identity was supplied.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden the identity is known but may not touch the resource.
	ErrForbidden = errors.New("forbidden")

	// ErrPersistence the storage layer failed for a reason other than a conflict.
	ErrPersistence = errors.New("persistence failure")
)

// ============================================================================
// DomainError
// ============================================================================

// DomainError carries business context and the stack of the point where it
// was raised. It unwraps to its sentinel and, when present, to the cause.
type DomainError struct {
	// Err is the sentinel used by errors.Is.
	Err error

	// Entity names the aggregate involved ("order", "item").
	Entity string

	// Message is the human readable description.
	Message string

	// Field optionally names the offending field.
	Field string

	cause error
	stack []uintptr
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is/As.
func (e *DomainError) Unwrap() []error {
	if e.cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.cause}
}

// Stack formats the captured frames on demand.
func (e *DomainError) Stack() []string {
	return FormatStack(e.stack)
}

// ============================================================================
// Stack helpers
// ============================================================================

// CaptureStack records the current call stack.
// skip is usually 3: runtime.Callers, CaptureStack and the constructor.
func CaptureStack(skip int) []uintptr {
	var pcs [32]uintptr
	n := runtime.Callers(skip, pcs[:])
	return pcs[:n]
}

// FormatStack renders at most ten frames, skipping runtime internals.
func FormatStack(stack []uintptr) []string {
	if len(stack) == 0 {
		return nil
	}

	frames := runtime.CallersFrames(stack)
	var result []string
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			result = append(result, fmt.Sprintf("%s:%d %s", frame.File, frame.Line, frame.Function))
		}
		if !more || len(result) >= 10 {
			break
		}
	}
	return result
}

// ============================================================================
// Constructors
// ============================================================================

// NewNotFoundError creates a "not found" error for the given entity.
func NewNotFoundError(entity string) error {
	return &DomainError{
		Err:     ErrNotFound,
		Entity:  entity,
		Message: entity + " not found",
		stack:   CaptureStack(3),
	}
}

// NewConflictError creates a concurrent modification error.
func NewConflictError(entity, message string) error {
	return &DomainError{
		Err:     ErrConflict,
		Entity:  entity,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// NewValidationError creates an invalid input error for a field.
func NewValidationError(entity, field, reason string) error {
	return &DomainError{
		Err:     ErrInvalidInput,
		Entity:  entity,
		Field:   field,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// NewForbiddenError creates an access denied error.
func NewForbiddenError(entity, reason string) error {
	return &DomainError{
		Err:     ErrForbidden,
		Entity:  entity,
		Message: reason,
		stack:   CaptureStack(3),
	}
}

// NewPersistenceError wraps a storage failure. The cause stays reachable
// through errors.As so driver specific errors can still be classified.
func NewPersistenceError(entity, operation string, cause error) error {
	msg := entity + ": " + operation + " failed"
	if cause != nil {
		msg += ": " + cause.Error()
	}
	return &DomainError{
		Err:     ErrPersistence,
		Entity:  entity,
		Message: msg,
		cause:   cause,
		stack:   CaptureStack(3),
	}
}

// NewError builds a DomainError for a subdomain specific sentinel.
func NewError(sentinel error, entity, field, message string) error {
	return &DomainError{
		Err:     sentinel,
		Entity:  entity,
		Field:   field,
		Message: message,
		stack:   CaptureStack(3),
	}
}

// Stacker is implemented by errors that can report where they were raised.
type Stacker interface {
	Stack() []string
}
