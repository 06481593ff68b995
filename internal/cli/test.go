package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/sqlecs/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run simulation scenarios",
		Long: `Run deterministic simulation scenarios.

Each scenario seeds its entities into a fresh in-memory store, ticks the
listed systems with fixed deltas, and checks its assertions. When
<scenarios-dir>/golden/<name>.golden exists the per-frame trace must
match it too.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  sqlecs test ./testdata/scenarios
  sqlecs test ./testdata/scenarios --filter "movement_*"
  sqlecs test ./testdata/scenarios --update
  sqlecs test ./testdata/scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	// Find scenario files
	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{
				Scenarios: []ScenarioResult{},
				Total:     0,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	log, err := opts.newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, opts, log, cmd)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	// Output results
	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}

	return outputTestText(cmd, result)
}

// findScenarioFiles finds all YAML scenario files in a directory.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		// Only process .yaml and .yml files
		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		// Apply filter if specified
		if filter != "" {
			base := filepath.Base(path)
			name := strings.TrimSuffix(base, ext)
			matched, err := filepath.Match(filter, name)
			if err != nil {
				return fmt.Errorf("invalid filter pattern: %w", err)
			}
			if !matched {
				return nil
			}
		}

		files = append(files, path)
		return nil
	})

	return files, err
}

// scenarioOutcome is a ScenarioResult plus the note shown after a passing
// scenario's name.
type scenarioOutcome struct {
	ScenarioResult
	note string
}

func passed(name, note string) scenarioOutcome {
	return scenarioOutcome{ScenarioResult: ScenarioResult{Name: name, Pass: true}, note: note}
}

func failed(name string, errs ...string) scenarioOutcome {
	return scenarioOutcome{ScenarioResult: ScenarioResult{Name: name, Errors: errs}}
}

// runScenario executes a single scenario, reports it in text mode, and
// returns the result.
func runScenario(scenarioFile string, opts *TestOptions, log *zap.Logger, cmd *cobra.Command) ScenarioResult {
	outcome := evaluateScenario(scenarioFile, opts.Update, log)
	if opts.Format != "json" {
		reportScenario(cmd.OutOrStdout(), outcome)
	}
	return outcome.ScenarioResult
}

// evaluateScenario runs the scenario and checks its trace against
// <dir>/golden/<name>.golden. With update set, a passing trace replaces the
// golden file; a failing run never does.
func evaluateScenario(scenarioFile string, update bool, log *zap.Logger) scenarioOutcome {
	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return failed(filepath.Base(scenarioFile), fmt.Sprintf("load error: %v", err))
	}

	result, err := harness.RunWithLogger(scenario, log.With(zap.String("scenario", scenario.Name)))
	if err != nil {
		return failed(scenario.Name, fmt.Sprintf("execution error: %v", err))
	}
	if !result.Pass {
		return failed(scenario.Name, result.Errors...)
	}

	goldenPath := goldenFilePath(scenarioFile)
	trace := harness.FormatTrace(scenario.Name, result)

	if update {
		if err := writeGolden(goldenPath, trace); err != nil {
			return failed(scenario.Name, fmt.Sprintf("golden update error: %v", err))
		}
		return passed(scenario.Name, "golden updated")
	}

	want, err := os.ReadFile(goldenPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return passed(scenario.Name, "")
	case err != nil:
		return failed(scenario.Name, fmt.Sprintf("golden comparison error: %v", err))
	case !bytes.Equal(want, trace):
		return failed(scenario.Name, "golden file mismatch (run with --update to regenerate)")
	}
	return passed(scenario.Name, "")
}

func reportScenario(w io.Writer, o scenarioOutcome) {
	if o.Pass {
		if o.note != "" {
			fmt.Fprintf(w, "✓ %s (%s)\n", o.Name, o.note)
		} else {
			fmt.Fprintf(w, "✓ %s\n", o.Name)
		}
		return
	}
	fmt.Fprintf(w, "✗ %s\n", o.Name)
	for _, e := range o.Errors {
		fmt.Fprintf(w, "  %s\n", e)
	}
}

// goldenFilePath returns the path to the golden file for a scenario.
func goldenFilePath(scenarioFile string) string {
	dir := filepath.Dir(scenarioFile)
	base := filepath.Base(scenarioFile)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, "golden", name+".golden")
}

func writeGolden(path string, trace []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create golden directory: %w", err)
	}
	return os.WriteFile(path, trace, 0644)
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	status := "ok"
	if result.Failed > 0 {
		status = "error"
	}

	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	if result.Failed > 0 {
		response.Error = &CLIError{
			Code:    "E_TEST_FAILED",
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the test result as text.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}
