package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/roach88/sqlecs/internal/scene"
)

// SceneResult is the validation outcome of one scene file.
type SceneResult struct {
	Path     string            `json:"path"`
	Name     string            `json:"name,omitempty"`
	Valid    bool              `json:"valid"`
	Entities int               `json:"entities,omitempty"`
	Error    *SceneErrorDetail `json:"error,omitempty"`
}

// SceneErrorDetail describes why a scene was rejected.
type SceneErrorDetail struct {
	Kind    string `json:"kind"`
	Entity  string `json:"entity,omitempty"`
	Field   string `json:"field,omitempty"`
	Pos     string `json:"pos,omitempty"`
	Message string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool          `json:"valid"`
	Scenes []SceneResult `json:"scenes"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scene-file>...",
		Short: "Validate scene files without running them",
		Long: `Decode and validate YAML or CUE scene files.

CUE files are unified with the built-in scene schema first. Every entity
must have at least one component, finite numbers, positive graphics sizes,
and a unique label and id.

Exit codes:
  0 - All scenes valid
  1 - One or more scenes invalid
  2 - A file could not be read`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	result := ValidationResult{Valid: true, Scenes: make([]SceneResult, 0, len(paths))}
	var missing error
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		sr, err := validateScene(path)
		if err != nil && errors.Is(err, fs.ErrNotExist) && missing == nil {
			missing = err
		}
		if !sr.Valid {
			result.Valid = false
		}
		result.Scenes = append(result.Scenes, sr)
	}

	if formatter.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			response.Status = "error"
			for _, sr := range result.Scenes {
				if sr.Error != nil {
					response.Error = &CLIError{Code: sr.Error.Kind, Message: sr.Error.Message}
					break
				}
			}
		}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}
	} else {
		outputValidateText(formatter, result)
	}

	if missing != nil {
		return WrapExitError(ExitCommandError, "read scene", missing)
	}
	if !result.Valid {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scene(s) invalid", countInvalid(result), len(result.Scenes)))
	}
	return nil
}

// validateScene loads one file and converts the outcome to a SceneResult.
func validateScene(path string) (SceneResult, error) {
	sc, err := scene.Load(path)
	if err != nil {
		return SceneResult{Path: path, Error: sceneErrorDetail(err)}, err
	}
	return SceneResult{Path: path, Name: sc.Name, Valid: true, Entities: len(sc.Entities)}, nil
}

func sceneErrorDetail(err error) *SceneErrorDetail {
	d := &SceneErrorDetail{Kind: ErrorKind(err), Message: err.Error()}

	var ve *scene.ValidationError
	if errors.As(err, &ve) {
		d.Entity = ve.Entity
		d.Field = ve.Field
		d.Message = ve.Message
		return d
	}
	var le *scene.LoadError
	if errors.As(err, &le) {
		d.Pos = le.Pos
		d.Message = le.Err.Error()
	}
	return d
}

func countInvalid(result ValidationResult) int {
	n := 0
	for _, sr := range result.Scenes {
		if !sr.Valid {
			n++
		}
	}
	return n
}

func outputValidateText(formatter *OutputFormatter, result ValidationResult) {
	w := formatter.Writer
	for _, sr := range result.Scenes {
		if sr.Valid {
			fmt.Fprintf(w, "✓ %s (%s, %d entities)\n", sr.Path, sr.Name, sr.Entities)
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", sr.Path)
		d := sr.Error
		switch {
		case d.Entity != "":
			fmt.Fprintf(w, "  %s: entity %s: %s: %s\n", d.Kind, d.Entity, d.Field, d.Message)
		case d.Field != "":
			fmt.Fprintf(w, "  %s: %s: %s\n", d.Kind, d.Field, d.Message)
		case d.Pos != "":
			fmt.Fprintf(w, "  %s: %s: %s\n", d.Kind, d.Pos, d.Message)
		default:
			fmt.Fprintf(w, "  %s: %s\n", d.Kind, d.Message)
		}
	}
}
