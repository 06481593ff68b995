package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/roach88/sqlecs/internal/render"
	"github.com/roach88/sqlecs/internal/scene"
	"github.com/roach88/sqlecs/internal/store"
	"github.com/roach88/sqlecs/internal/system"
)

// Setup describes a world to bootstrap.
type Setup struct {
	// Scene defaults to scene.Demo().
	Scene *scene.Scene

	// Window defaults to a 640x480 HeadlessWindow.
	Window render.Window

	ShowFPS bool

	// Diagnostics enables the Printer system, writing to DiagnosticsOut
	// (stdout when nil) every PrintInterval seconds.
	Diagnostics    bool
	PrintInterval  float64
	DiagnosticsOut io.Writer

	Logger *zap.Logger
}

// World is a seeded store with its systems and renderer, ready for New.
type World struct {
	Store     *store.Store
	Runner    *system.Runner
	Renderer  *render.Renderer
	Collision *system.Collision
	Printer   *system.Printer // nil unless diagnostics are enabled
	Window    render.Window
	Entities  []int64
}

// Bootstrap opens a fresh in-memory store, seeds the scene, and builds the
// systems in frame order: Movement, Gravity, Collision, then Printer when
// enabled.
//
// On error everything already opened is closed.
func Bootstrap(ctx context.Context, s Setup) (w *World, err error) {
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if s.Scene == nil {
		s.Scene = scene.Demo()
	}
	if s.Window == nil {
		s.Window = render.NewHeadlessWindow(640, 480)
	}
	if s.DiagnosticsOut == nil {
		s.DiagnosticsOut = os.Stdout
	}
	if err := s.Scene.Validate(); err != nil {
		return nil, err
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, err
	}
	w = &World{Store: st, Runner: system.NewRunner(), Window: s.Window}
	defer func() {
		if err != nil {
			w.Close()
			w = nil
		}
	}()

	if w.Entities, err = scene.Seed(ctx, st, s.Scene, log); err != nil {
		return w, err
	}

	movement, err := system.NewMovement(ctx, st)
	if err != nil {
		return w, fmt.Errorf("prepare movement: %w", err)
	}
	w.Runner.Register(movement)

	gravity, err := system.NewGravity(ctx, st)
	if err != nil {
		return w, fmt.Errorf("prepare gravity: %w", err)
	}
	w.Runner.Register(gravity)

	if w.Collision, err = system.NewCollision(ctx, st, log); err != nil {
		return w, fmt.Errorf("prepare collision: %w", err)
	}
	w.Runner.Register(w.Collision)

	if s.Diagnostics {
		if w.Printer, err = system.NewPrinter(ctx, st, s.PrintInterval, s.DiagnosticsOut); err != nil {
			return w, fmt.Errorf("prepare printer: %w", err)
		}
		w.Runner.Register(w.Printer)
	}

	if w.Renderer, err = render.New(ctx, st, s.Window, render.WithFPSText(s.ShowFPS)); err != nil {
		return w, fmt.Errorf("prepare renderer: %w", err)
	}
	return w, nil
}

// Close finalizes every statement, then closes the store.
func (w *World) Close() error {
	var errs []error
	if w.Renderer != nil {
		errs = append(errs, w.Renderer.Close())
	}
	if w.Runner != nil {
		errs = append(errs, w.Runner.Close())
	}
	if w.Store != nil {
		errs = append(errs, w.Store.Close())
	}
	return errors.Join(errs...)
}
