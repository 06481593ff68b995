package harness

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/sqlecs/internal/scene"
	"github.com/roach88/sqlecs/internal/store"
	"github.com/roach88/sqlecs/internal/system"
)

const entityStateSQL = `
	SELECT e.id, p.x, p.y, v.x, v.y
	FROM entity e
	LEFT JOIN position p ON p.id = e.id
	LEFT JOIN velocity v ON v.id = e.id
	ORDER BY e.id`

// Harness is the scenario execution engine.
// It ticks systems directly with the scenario's fixed deltas, so every run
// of a scenario produces the same trace.
type Harness struct {
	store     *store.Store
	systems   map[string]system.System
	collision *system.Collision
	printer   *system.Printer
	output    *bytes.Buffer
	labels    map[int64]string
	logger    *zap.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Create fresh in-memory database
// 2. Seed the scenario's entities
// 3. Run each frame step, recording a trace entry per frame
// 4. Evaluate assertions against the final store
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, zap.NewNop())
}

// RunWithLogger is Run with collision and builder logging sent to log.
func RunWithLogger(scenario *Scenario, log *zap.Logger) (*Result, error) {
	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	result := NewResult()

	ids, err := scene.Seed(ctx, st, scenario.Scene(), log)
	if err != nil {
		return nil, fmt.Errorf("failed to seed entities: %w", err)
	}

	h := &Harness{
		store:  st,
		output: &bytes.Buffer{},
		labels: make(map[int64]string),
		logger: log,
	}
	for i, e := range scenario.Entities {
		if e.Label != "" {
			h.labels[ids[i]] = e.Label
			result.Entities[e.Label] = ids[i]
		}
	}

	if err := h.prepareSystems(ctx); err != nil {
		return nil, err
	}
	defer h.closeSystems()

	if err := h.executeFrames(ctx, scenario.Frames, result); err != nil {
		return nil, fmt.Errorf("failed to execute frames: %w", err)
	}
	result.Diagnostics = h.output.String()

	actx := &AssertionContext{
		Store: st,
		Ctx:   ctx,
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

func (h *Harness) prepareSystems(ctx context.Context) error {
	movement, err := system.NewMovement(ctx, h.store)
	if err != nil {
		return fmt.Errorf("prepare movement: %w", err)
	}
	gravity, err := system.NewGravity(ctx, h.store)
	if err != nil {
		movement.Close()
		return fmt.Errorf("prepare gravity: %w", err)
	}
	collision, err := system.NewCollision(ctx, h.store, h.logger)
	if err != nil {
		movement.Close()
		gravity.Close()
		return fmt.Errorf("prepare collision: %w", err)
	}
	printer, err := system.NewPrinter(ctx, h.store, 0, h.output)
	if err != nil {
		movement.Close()
		gravity.Close()
		collision.Close()
		return fmt.Errorf("prepare printer: %w", err)
	}

	h.collision = collision
	h.printer = printer
	h.systems = map[string]system.System{
		SystemMovement:  movement,
		SystemGravity:   gravity,
		SystemCollision: collision,
		SystemPrinter:   printer,
	}
	return nil
}

func (h *Harness) closeSystems() {
	all := make([]system.System, 0, len(h.systems))
	for _, name := range []string{SystemMovement, SystemGravity, SystemCollision, SystemPrinter} {
		all = append(all, h.systems[name])
	}
	system.NewRunner(all...).Close()
}

// executeFrames runs every frame step in order.
func (h *Harness) executeFrames(ctx context.Context, steps []FrameStep, result *Result) error {
	frame := 0
	for i, step := range steps {
		names := step.Systems
		if len(names) == 0 {
			names = DefaultSystems
		}
		runner := system.NewRunner()
		for _, name := range names {
			runner.Register(h.systems[name])
		}

		repeat := step.Repeat
		if repeat == 0 {
			repeat = 1
		}
		for r := 0; r < repeat; r++ {
			frame++
			if err := runner.Tick(ctx, step.Delta); err != nil {
				return fmt.Errorf("frames[%d] frame %d: %w", i, frame, err)
			}

			ft := FrameTrace{
				Frame:      frame,
				Delta:      step.Delta,
				Systems:    names,
				Collisions: -1,
			}
			if contains(names, SystemCollision) {
				result.CollisionRan = true
				result.LastCollisions = h.collision.Last()
				ft.Collisions = len(result.LastCollisions)
			}

			entities, err := h.snapshot(ctx)
			if err != nil {
				return fmt.Errorf("frames[%d] frame %d: snapshot: %w", i, frame, err)
			}
			ft.Entities = entities
			result.AddFrame(ft)
		}
	}
	return nil
}

// snapshot reads every entity's position and velocity.
func (h *Harness) snapshot(ctx context.Context) ([]EntityState, error) {
	rows, err := h.store.Query(ctx, entityStateSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EntityState
	for rows.Next() {
		var (
			id             int64
			px, py, vx, vy sql.NullFloat64
		)
		if err := rows.Scan(&id, &px, &py, &vx, &vy); err != nil {
			return nil, err
		}
		es := EntityState{ID: id, Label: h.labels[id]}
		if px.Valid && py.Valid {
			es.Position = &[2]float64{px.Float64, py.Float64}
		}
		if vx.Valid && vy.Valid {
			es.Velocity = &[2]float64{vx.Float64, vy.Float64}
		}
		out = append(out, es)
	}
	return out, rows.Err()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
