package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sqlecs.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 480, cfg.Window.Height)
	assert.Equal(t, 60.0, cfg.Loop.TargetFPS)
	assert.Equal(t, 5*time.Second, cfg.Loop.Budget)
	assert.Equal(t, 0, cfg.Loop.MaxFrames)
	assert.False(t, cfg.Diagnostics.Enabled)
	assert.Equal(t, time.Second, cfg.Diagnostics.PrintInterval)
	assert.True(t, cfg.Render.ShowFPS)
	assert.Empty(t, cfg.Scene.Path)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[loop]
target_fps = 30
budget = "2s"

[diagnostics]
enabled = true
print_interval = "500ms"

[scene]
path = "scenes/stack.yaml"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30.0, cfg.Loop.TargetFPS)
	assert.Equal(t, 2*time.Second, cfg.Loop.Budget)
	assert.True(t, cfg.Diagnostics.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Diagnostics.PrintInterval)
	assert.Equal(t, "scenes/stack.yaml", cfg.Scene.Path)

	// untouched sections keep their defaults
	assert.Equal(t, 640, cfg.Window.Width)
	assert.True(t, cfg.Render.ShowFPS)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, "[loop\ntarget_fps = ")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := writeConfig(t, `
[window]
width = 0

[loop]
target_fps = -1
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window: size must be positive")
	assert.Contains(t, err.Error(), "loop: target_fps must be positive")
}

func TestValidate_LoggingFormat(t *testing.T) {
	cfg := Defaults()
	cfg.Logging.Format = "xml"
	assert.ErrorContains(t, cfg.Validate(), `unknown format "xml"`)
}

func TestLoadOrDefault_EmptyPath(t *testing.T) {
	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}
