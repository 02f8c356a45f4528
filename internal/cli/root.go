// Package cli implements the twolc command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Color   string // "auto" | "always" | "never"
	Config  string // path of a twolc.cue file
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidColors defines the allowed --color values.
var ValidColors = []string{"auto", "always", "never"}

// NewRootCommand creates the root command for the twolc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "twolc",
		Short: "twolc - two-level rule compiler",
		Long: `Compile two-level morphophonological rules into finite-state
transducers and test them against a set of examples.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !slices.Contains(ValidColors, opts.Color) {
				return fmt.Errorf("invalid color %q: must be one of %v", opts.Color, ValidColors)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Color, "color", "auto", "colorize output (auto|always|never)")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "configuration file (default: ./twolc.cue if present)")

	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewPathsCommand(opts))
	cmd.AddCommand(NewGenerateCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))

	return cmd
}

// Execute runs the command line and returns the process exit code.
// Commands report their own failures through the formatter, so only
// errors raised before a command runs (unknown flags, a bad --format,
// missing arguments) are printed here.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitCommandError
}
