package engine

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultBudget is how long Run simulates before returning.
	DefaultBudget = 5 * time.Second

	// DefaultTargetFPS is the pacing target.
	DefaultTargetFPS = 60.0
)

// Ticker advances the simulation by one frame. *system.Runner implements it.
type Ticker interface {
	Tick(ctx context.Context, delta float64) error
}

// Renderer draws the current state. *render.Renderer implements it.
type Renderer interface {
	Render(ctx context.Context) error
	SetFPS(fps float64)
}

// Stats summarizes a finished run.
type Stats struct {
	RunID   string
	Frames  int
	Elapsed time.Duration
	LastFPS float64
}

// Engine is the frame loop.
//
// Thread-safety: Run must be called from exactly one goroutine. Cancel the
// context passed to Run to stop it from elsewhere.
type Engine struct {
	ticker    Ticker
	renderer  Renderer
	clock     Clock
	log       *zap.Logger
	runIDs    RunIDGenerator
	budget    time.Duration
	targetFPS float64
	maxFrames int
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock replaces the wall clock.
func WithClock(c Clock) EngineOption {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithTargetFPS sets the pacing target. Non-positive values are ignored.
func WithTargetFPS(fps float64) EngineOption {
	return func(e *Engine) {
		if fps > 0 && !math.IsInf(fps, 0) {
			e.targetFPS = fps
		}
	}
}

// WithBudget sets the run duration. Zero means run until the frame limit
// or cancellation.
func WithBudget(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.budget = d
	}
}

// WithMaxFrames stops the loop after n frames. Zero means no limit.
func WithMaxFrames(n int) EngineOption {
	return func(e *Engine) {
		e.maxFrames = n
	}
}

// WithRunIDGenerator sets the source of run ids.
func WithRunIDGenerator(g RunIDGenerator) EngineOption {
	return func(e *Engine) {
		e.runIDs = g
	}
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) EngineOption {
	return func(e *Engine) {
		e.log = l
	}
}

// New creates an engine. renderer may be nil for headless runs.
func New(ticker Ticker, renderer Renderer, opts ...EngineOption) *Engine {
	e := &Engine{
		ticker:    ticker,
		renderer:  renderer,
		clock:     NewClock(),
		log:       zap.NewNop(),
		runIDs:    UUIDv7Generator{},
		budget:    DefaultBudget,
		targetFPS: DefaultTargetFPS,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FrameInterval is the pacing slot for the target frame rate.
func (e *Engine) FrameInterval() time.Duration {
	return time.Duration(float64(time.Second) / e.targetFPS)
}

// Run simulates until the budget runs out, the frame limit is reached, or
// ctx is cancelled. Cancellation is a clean stop and returns a nil error.
//
// A system or render failure aborts the run with a *FrameError; the stats
// cover the frames completed before it.
func (e *Engine) Run(ctx context.Context) (Stats, error) {
	stats := Stats{RunID: e.runIDs.Generate()}
	log := e.log.With(zap.String("run_id", stats.RunID))
	log.Info("run started",
		zap.Float64("target_fps", e.targetFPS),
		zap.Duration("budget", e.budget),
		zap.Int("max_frames", e.maxFrames))

	interval := e.FrameInterval()
	start := e.clock.Now()
	delta := 0.0

	for {
		if ctx.Err() != nil {
			log.Info("run cancelled", zap.Int("frames", stats.Frames))
			return stats, nil
		}

		frame := stats.Frames + 1
		frameStart := e.clock.Now()

		if err := e.ticker.Tick(ctx, delta); err != nil {
			log.Error("frame aborted", zap.Int("frame", frame), zap.Error(err))
			return stats, &FrameError{Frame: frame, Stage: "tick", Err: err}
		}
		if e.renderer != nil {
			if err := e.renderer.Render(ctx); err != nil {
				log.Error("frame aborted", zap.Int("frame", frame), zap.Error(err))
				return stats, &FrameError{Frame: frame, Stage: "render", Err: err}
			}
		}
		stats.Frames = frame
		stats.Elapsed = e.clock.Now().Sub(start)

		if e.budget > 0 && stats.Elapsed > e.budget {
			break
		}
		if e.maxFrames > 0 && stats.Frames >= e.maxFrames {
			break
		}

		if wait := interval - e.clock.Now().Sub(frameStart); wait > 0 {
			e.clock.Sleep(wait)
		}

		delta = e.clock.Now().Sub(frameStart).Seconds()
		if delta < 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
			return stats, &FrameError{Frame: frame, Stage: "clock", Err: ErrInvalidDelta}
		}
		if delta > 0 {
			stats.LastFPS = 1 / delta
			if e.renderer != nil {
				e.renderer.SetFPS(stats.LastFPS)
			}
		}
		log.Debug("frame", zap.Int("frame", frame), zap.Float64("delta", delta))
	}

	log.Info("run finished",
		zap.Int("frames", stats.Frames),
		zap.Duration("elapsed", stats.Elapsed),
		zap.Float64("fps", stats.LastFPS))
	return stats, nil
}
