package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

// ErrNotFound indicates a lookup of a non-existent order number.
var ErrNotFound = errors.New("order not found")

// ValidationError indicates user input failing a field constraint. The
// triggering operation is aborted with no side effect; the message is
// user-facing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// CorruptStoreError indicates the persisted order blob failed to parse.
// It is surfaced rather than swallowed so existing data stays recoverable:
// the bad blob is left in place (or moved aside, never deleted).
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("order store %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error { return e.Err }
