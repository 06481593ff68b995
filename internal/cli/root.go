package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roach88/sqlecs/internal/config"
	"github.com/roach88/sqlecs/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	LogFormat  string // "console" | "json", empty = config value
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sqlecs CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sqlecs",
		Short: "sqlecs - an entity-component-system simulation stored in SQL",
		Long: `sqlecs keeps every component of a 2D world in SQLite tables and runs
its systems as SQL statements, once per frame.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			switch opts.LogFormat {
			case "", "console", "json":
			default:
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid log format %q: must be console or json", opts.LogFormat))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output and debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "TOML config file")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", "", "log encoding (console|json)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// loadConfig reads the config file (or defaults) and applies the global
// logging flags.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if o.LogFormat != "" {
		cfg.Logging.Format = o.LogFormat
	}
	if o.Verbose {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func (o *RootOptions) newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "build logger", err)
	}
	return log, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
