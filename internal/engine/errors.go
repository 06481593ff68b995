package engine

import (
	"errors"
	"fmt"
)

// FrameError reports the frame in which the loop aborted.
type FrameError struct {
	// Frame is 1-based.
	Frame int

	// Stage is "tick", "render" or "clock".
	Stage string

	Err error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %s: %v", e.Frame, e.Stage, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// ErrInvalidDelta is returned when the measured frame time is negative or
// not finite, which would push NaN into the store.
var ErrInvalidDelta = errors.New("invalid frame delta")

// IsFrameError returns true if err wraps a *FrameError.
func IsFrameError(err error) bool {
	var fe *FrameError
	return errors.As(err, &fe)
}
