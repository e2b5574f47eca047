package cli

import (
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/reqgraph/internal/app"
	"github.com/spf13/cobra"
)

// Exit codes returned through ExitError.
const (
	ExitRuntime = 1
	ExitUsage   = 2
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

const longHelp = `reqgraph evaluates a catalog of game requirements against a state snapshot.

Requirements are declared in .hcl or .yaml catalog files. Each one reports an
accessibility level (none, inspect, sequence_break, partial, normal) that is
kept up to date as items, settings, sequence break toggles, location levels
and boss assignments change.

Positional arguments name the requirements to report; all are reported when
none are given.`

const examples = `  reqgraph -c catalog/ -s state.yaml
  reqgraph -c catalog/ -s state.yaml ganon eastern_palace --format json
  reqgraph -c catalog/ --set item.sword=2 --set boss.eastern_palace=armos
  reqgraph -c catalog/ -s state.yaml --format mermaid > graph.mmd`

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		cfg *app.Config
		raw app.Config
	)
	cmd := &cobra.Command{
		Use:           "reqgraph [flags] [KEY...]",
		Short:         "Evaluate requirement accessibility",
		Long:          longHelp,
		Example:       examples,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, keys []string) error {
			if len(raw.CatalogPaths) == 0 {
				slog.Debug("No catalog path provided, printing usage and exiting.")
				return cmd.Help()
			}
			if len(keys) > 0 {
				raw.Keys = keys
			}
			raw.Format = strings.ToLower(raw.Format)
			raw.LogFormat = strings.ToLower(raw.LogFormat)
			raw.LogLevel = strings.ToLower(raw.LogLevel)

			validated, err := app.NewConfig(raw)
			if err != nil {
				return err
			}
			cfg = validated
			return nil
		},
	}
	if args == nil {
		// cobra falls back to os.Args when given nil.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(output)
	cmd.SetErr(output)

	flags := cmd.Flags()
	flags.StringSliceVarP(&raw.CatalogPaths, "catalog", "c", nil, "Catalog file or directory (.hcl, .yaml). Repeatable.")
	flags.StringVarP(&raw.StatePath, "state", "s", "", "YAML state snapshot.")
	flags.StringArrayVar(&raw.Testing, "testing", nil, "Force a requirement to count as met. Repeatable.")
	flags.StringArrayVar(&raw.Assignments, "set", nil, "Change a signal after the build, as root.name=value. Repeatable.")
	flags.BoolVar(&raw.Strict, "strict", false, "Fail on signals missing from the state instead of defaulting them.")
	flags.StringVarP(&raw.Format, "format", "f", app.FormatText, "Report format: 'text', 'json' or 'mermaid'.")
	flags.StringVar(&raw.LogFormat, "log-format", "text", "Log output format: 'text' or 'json'.")
	flags.StringVar(&raw.LogLevel, "log-level", "info", "Logging level: 'debug', 'info', 'warn' or 'error'.")
	flags.IntVar(&raw.ListenPort, "listen-port", 0, "Port for the /health and /metrics server. 0 is disabled.")

	if err := cmd.Execute(); err != nil {
		return nil, false, &ExitError{Code: ExitUsage, Message: err.Error()}
	}
	if cfg == nil {
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "catalogs", cfg.CatalogPaths, "keys", cfg.Keys)
	return cfg, false, nil
}
