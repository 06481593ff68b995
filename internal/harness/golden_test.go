package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTrace(t *testing.T) {
	result := NewResult()
	result.AddFrame(FrameTrace{
		Frame:      1,
		Delta:      1.0 / 3,
		Systems:    []string{SystemMovement, SystemCollision},
		Collisions: 0,
		Entities: []EntityState{
			{ID: 1, Label: "a", Position: &[2]float64{1, 2.25}},
			{ID: 2, Velocity: &[2]float64{-3, 4}},
		},
	})
	result.AddFrame(FrameTrace{Frame: 2, Delta: 0, Systems: []string{SystemGravity}, Collisions: -1})
	result.Diagnostics = "1 { pos: (1.0, 2.0), vel: (0.0, 0.0) }\n"
	result.AddError("boom")

	want := strings.Join([]string{
		"scenario: sample",
		"pass: false",
		"frame 1 delta=0.333 systems=movement,collision collisions=0",
		"  1 a pos=(1.000, 2.250) vel=-",
		"  2 - pos=- vel=(-3.000, 4.000)",
		"frame 2 delta=0.000 systems=gravity collisions=-",
		"diagnostics:",
		"1 { pos: (1.0, 2.0), vel: (0.0, 0.0) }",
		"",
	}, "\n")
	assert.Equal(t, want, string(FormatTrace("sample", result)))
}

// TestGoldenScenarios runs every scenario under testdata/scenarios and
// compares its trace with testdata/golden/<name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -run TestGoldenScenarios -update
func TestGoldenScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join(scenariosDir(), "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), ".yaml")
		t.Run(name, func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.Equal(t, name, scenario.Name, "scenario name must match its file name")

			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

func TestAssertGolden(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join(scenariosDir(), "overlap_chain.yaml"))
	require.NoError(t, err)

	result, err := Run(scenario)
	require.NoError(t, err)
	AssertGolden(t, "overlap_chain", result)
}
