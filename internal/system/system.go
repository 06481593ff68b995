package system

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// System is anything driven once per frame. Tick receives the wall time in
// seconds since the previous frame and mutates or reads the store.
type System interface {
	Name() string
	Tick(ctx context.Context, delta float64) error
}

// TickError wraps the error of the system that aborted a frame.
type TickError struct {
	System string
	Err    error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("system %s: %v", e.System, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}

// Runner executes systems in registration order each frame.
type Runner struct {
	systems []System
}

func NewRunner(systems ...System) *Runner {
	r := &Runner{
		systems: make([]System, 0, 8),
	}
	for _, s := range systems {
		r.Register(s)
	}
	return r
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
}

// Systems returns the registered systems in tick order.
func (r *Runner) Systems() []System {
	out := make([]System, len(r.systems))
	copy(out, r.systems)
	return out
}

// Tick calls every system with delta. The first error aborts the frame;
// systems after it do not run.
func (r *Runner) Tick(ctx context.Context, delta float64) error {
	for _, s := range r.systems {
		if err := s.Tick(ctx, delta); err != nil {
			return &TickError{System: s.Name(), Err: err}
		}
	}
	return nil
}

// Close releases the prepared statements of every system that holds one.
func (r *Runner) Close() error {
	var errs []error
	for _, s := range r.systems {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s: %w", s.Name(), err))
			}
		}
	}
	return errors.Join(errs...)
}
