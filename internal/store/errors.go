package store

import (
	"errors"
	"fmt"
)

// KindStore names every failure reported by the relational engine.
const KindStore = "StoreError"

// Error wraps a failure from SQLite (open, schema, prepare, bind, step, read).
// The core treats it as fatal for the current operation.
type Error struct {
	// Op is the store operation that failed, e.g. "prepare" or "step".
	Op string

	// Err is the driver error.
	Err error
}

func newError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", KindStore, e.Op, e.Err)
}

// Unwrap returns the driver error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Kind returns KindStore.
func (e *Error) Kind() string {
	return KindStore
}

// IsStoreError returns true if err wraps a *Error.
func IsStoreError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}
