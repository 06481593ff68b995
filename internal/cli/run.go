package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/sqlecs/internal/config"
	"github.com/roach88/sqlecs/internal/engine"
	"github.com/roach88/sqlecs/internal/render"
	"github.com/roach88/sqlecs/internal/scene"
)

// RunOptions holds flags for the run command. Flags that were set override
// the config file.
type RunOptions struct {
	*RootOptions
	Scene         string
	FPS           float64
	Budget        time.Duration
	Frames        int
	Diagnostics   bool
	PrintInterval time.Duration
	Snapshot      string
	NoFPS         bool

	// RunIDs overrides the run id generator (for testing).
	// If nil, the engine uses UUIDv7Generator.
	RunIDs engine.RunIDGenerator
}

// RunSummary is the result of a finished run.
type RunSummary struct {
	RunID      string  `json:"run_id"`
	Scene      string  `json:"scene"`
	Entities   int     `json:"entities"`
	Frames     int     `json:"frames"`
	Elapsed    string  `json:"elapsed"`
	LastFPS    float64 `json:"last_fps"`
	Collisions int     `json:"collisions"`
	Snapshot   string  `json:"snapshot,omitempty"`
}

func (s RunSummary) String() string {
	out := fmt.Sprintf("run %s: scene %q, %d entities, %d frames in %s (%.1f fps), %d collisions",
		s.RunID, s.Scene, s.Entities, s.Frames, s.Elapsed, s.LastFPS, s.Collisions)
	if s.Snapshot != "" {
		out += "\nsnapshot written to " + s.Snapshot
	}
	return out
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		Long: `Seed a scene into a fresh store and run the frame loop.

Each frame ticks movement, gravity and collision (and the diagnostics
printer when enabled), then renders the world to an off-screen window.
The loop stops when the budget is spent, the frame limit is reached, or
on Ctrl-C.

Example:
  sqlecs run
  sqlecs run --scene ./scenes/demo.yaml --budget 2s --snapshot last.png
  sqlecs run --frames 120 --diagnostics --print-interval 500ms`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runSimulation(opts, cmd)
			if err != nil && opts.Format == "json" {
				formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
				if ferr := formatter.Error(ErrorKind(err), err.Error(), nil); ferr != nil {
					return ferr
				}
			}
			return err
		},
	}

	cmd.Flags().StringVar(&opts.Scene, "scene", "", "scene file (.yaml or .cue); default is the built-in demo")
	cmd.Flags().Float64Var(&opts.FPS, "fps", 0, "target frames per second")
	cmd.Flags().DurationVar(&opts.Budget, "budget", 0, "wall-clock run time, 0 = no limit")
	cmd.Flags().IntVar(&opts.Frames, "frames", 0, "stop after this many frames, 0 = no limit")
	cmd.Flags().BoolVar(&opts.Diagnostics, "diagnostics", false, "print entity positions periodically")
	cmd.Flags().DurationVar(&opts.PrintInterval, "print-interval", 0, "diagnostics print interval")
	cmd.Flags().StringVar(&opts.Snapshot, "snapshot", "", "write the last frame as PNG to this path")
	cmd.Flags().BoolVar(&opts.NoFPS, "no-fps", false, "hide the fps overlay")

	return cmd
}

// applyFlags overlays the flags that were set on cfg.
func (opts *RunOptions) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("scene") {
		cfg.Scene.Path = opts.Scene
	}
	if flags.Changed("fps") {
		cfg.Loop.TargetFPS = opts.FPS
	}
	if flags.Changed("budget") {
		cfg.Loop.Budget = opts.Budget
	}
	if flags.Changed("frames") {
		cfg.Loop.MaxFrames = opts.Frames
	}
	if flags.Changed("diagnostics") {
		cfg.Diagnostics.Enabled = opts.Diagnostics
	}
	if flags.Changed("print-interval") {
		cfg.Diagnostics.PrintInterval = opts.PrintInterval
	}
	if flags.Changed("snapshot") {
		cfg.Render.Snapshot = opts.Snapshot
	}
	if flags.Changed("no-fps") {
		cfg.Render.ShowFPS = !opts.NoFPS
	}
}

func runSimulation(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	opts.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid settings", err)
	}

	log, err := opts.newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	sc := scene.Demo()
	if cfg.Scene.Path != "" {
		if sc, err = scene.Load(cfg.Scene.Path); err != nil {
			return WrapExitError(ExitCommandError, "load scene", err)
		}
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	// Diagnostics would corrupt JSON output.
	var diagnostics io.Writer = cmd.OutOrStdout()
	if opts.Format == "json" {
		diagnostics = cmd.ErrOrStderr()
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Info("received signal, shutting down", zap.Stringer("signal", sig))
			cancel()
		case <-ctx.Done():
		}
	}()

	window := render.NewImageWindow(cfg.Window.Width, cfg.Window.Height)
	world, err := engine.Bootstrap(ctx, engine.Setup{
		Scene:          sc,
		Window:         window,
		ShowFPS:        cfg.Render.ShowFPS,
		Diagnostics:    cfg.Diagnostics.Enabled,
		PrintInterval:  cfg.Diagnostics.PrintInterval.Seconds(),
		DiagnosticsOut: diagnostics,
		Logger:         log,
	})
	if err != nil {
		return WrapExitError(ExitFailure, "bootstrap", err)
	}
	defer func() {
		if closeErr := world.Close(); closeErr != nil {
			log.Error("error closing world", zap.Error(closeErr))
		}
	}()
	formatter.VerboseLog("seeded %d entities from scene %q", len(world.Entities), sc.Name)

	engineOpts := []engine.EngineOption{
		engine.WithTargetFPS(cfg.Loop.TargetFPS),
		engine.WithBudget(cfg.Loop.Budget),
		engine.WithMaxFrames(cfg.Loop.MaxFrames),
		engine.WithLogger(log),
	}
	if opts.RunIDs != nil {
		engineOpts = append(engineOpts, engine.WithRunIDGenerator(opts.RunIDs))
	}
	eng := engine.New(world.Runner, world.Renderer, engineOpts...)

	stats, err := eng.Run(ctx)
	if err != nil {
		return WrapExitError(ExitFailure, "simulation failed", err)
	}

	summary := RunSummary{
		RunID:      stats.RunID,
		Scene:      sc.Name,
		Entities:   len(world.Entities),
		Frames:     stats.Frames,
		Elapsed:    stats.Elapsed.Round(time.Millisecond).String(),
		LastFPS:    stats.LastFPS,
		Collisions: len(world.Collision.Last()),
	}

	if cfg.Render.Snapshot != "" {
		if err := writeSnapshot(window, cfg.Render.Snapshot); err != nil {
			return WrapExitError(ExitFailure, "write snapshot", err)
		}
		summary.Snapshot = cfg.Render.Snapshot
	}

	return formatter.Success(summary)
}

func writeSnapshot(window *render.ImageWindow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := window.WritePNG(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
