package harness

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// FormatTrace renders a result as stable text: one header line per frame
// followed by one line per entity. Floats are printed with three decimals
// so the output does not depend on the last bits of accumulated rounding.
func FormatTrace(name string, result *Result) []byte {
	var buf strings.Builder

	fmt.Fprintf(&buf, "scenario: %s\n", name)
	fmt.Fprintf(&buf, "pass: %t\n", result.Pass)
	for _, f := range result.Trace {
		writeFrame(&buf, f)
	}
	if result.Diagnostics != "" {
		buf.WriteString("diagnostics:\n")
		buf.WriteString(result.Diagnostics)
	}
	return []byte(buf.String())
}

func writeFrame(w io.Writer, f FrameTrace) {
	collisions := "-"
	if f.Collisions >= 0 {
		collisions = fmt.Sprintf("%d", f.Collisions)
	}
	fmt.Fprintf(w, "frame %d delta=%.3f systems=%s collisions=%s\n",
		f.Frame, f.Delta, strings.Join(f.Systems, ","), collisions)

	for _, e := range f.Entities {
		label := e.Label
		if label == "" {
			label = "-"
		}
		fmt.Fprintf(w, "  %d %s pos=%s vel=%s\n", e.ID, label, formatPair(e.Position), formatPair(e.Velocity))
	}
}

func formatPair(p *[2]float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("(%.3f, %.3f)", p[0], p[1])
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	newGoldie(t).Assert(t, scenario.Name, FormatTrace(scenario.Name, result))
	return nil
}

// AssertGolden compares an already computed result against a golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) {
	t.Helper()
	newGoldie(t).Assert(t, scenarioName, FormatTrace(scenarioName, result))
}
