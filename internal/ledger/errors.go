package ledger

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by status changes that reference an unknown id.
var ErrNotFound = errors.New("invoice not found")

// ValidationError reports an invalid field on Add. It unwraps to the core sentinel.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// PersistenceError reports a failed save. The in-memory change it refers to has
// already been applied and is kept.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist after %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err is a *PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
