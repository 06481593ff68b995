package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Window      WindowConfig      `toml:"window"`
	Loop        LoopConfig        `toml:"loop"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
	Render      RenderConfig      `toml:"render"`
	Scene       SceneConfig       `toml:"scene"`
	Logging     LoggingConfig     `toml:"logging"`
}

type WindowConfig struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`
}

type LoopConfig struct {
	TargetFPS float64       `toml:"target_fps"`
	Budget    time.Duration `toml:"budget"`     // 0 = until max_frames or interrupt
	MaxFrames int           `toml:"max_frames"` // 0 = unlimited
}

type DiagnosticsConfig struct {
	Enabled       bool          `toml:"enabled"`
	PrintInterval time.Duration `toml:"print_interval"`
}

type RenderConfig struct {
	ShowFPS  bool   `toml:"show_fps"`
	Snapshot string `toml:"snapshot"` // PNG path for the last frame, empty = none
}

type SceneConfig struct {
	Path string `toml:"path"` // empty = built-in demo
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// Load overlays the TOML file at path on Defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns Defaults when path is empty.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		return Defaults(), nil
	}
	return Load(path)
}

func Defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  640,
			Height: 480,
		},
		Loop: LoopConfig{
			TargetFPS: 60,
			Budget:    5 * time.Second,
		},
		Diagnostics: DiagnosticsConfig{
			PrintInterval: time.Second,
		},
		Render: RenderConfig{
			ShowFPS: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window: size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Loop.TargetFPS <= 0 {
		errs = append(errs, fmt.Errorf("loop: target_fps must be positive, got %g", c.Loop.TargetFPS))
	}
	if c.Loop.Budget < 0 {
		errs = append(errs, fmt.Errorf("loop: budget must not be negative, got %s", c.Loop.Budget))
	}
	if c.Loop.MaxFrames < 0 {
		errs = append(errs, fmt.Errorf("loop: max_frames must not be negative, got %d", c.Loop.MaxFrames))
	}
	if c.Diagnostics.PrintInterval < 0 {
		errs = append(errs, fmt.Errorf("diagnostics: print_interval must not be negative, got %s", c.Diagnostics.PrintInterval))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging: unknown format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}
