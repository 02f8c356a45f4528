package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/twolc/internal/driver"
	"github.com/roach88/twolc/internal/ir"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Lost      string
	Wrong     string
	MaxStates int
	MaxPaths  int
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <examples> <bundle>",
		Short: "Test a compiled rule set against examples",
		Long: `Run the examples through all rules of a bundle at once.

Lost examples are rejected by at least one rule. Wrong strings share
their input side with an example, are accepted by every rule, and are
not examples themselves.

Exit codes:
  0 - No examples lost and no wrong strings
  1 - Examples lost or wrong strings accepted
  2 - Command error (missing files, alphabet mismatch, etc.)`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&opts.Lost, "lost", "l", "", "write lost examples to this file")
	cmd.Flags().StringVarP(&opts.Wrong, "wrong", "w", "", "write wrong strings to this file")
	cmd.Flags().IntVar(&opts.MaxStates, "max-states", 0, maxStatesUsage)
	cmd.Flags().IntVar(&opts.MaxPaths, "max-paths", driver.DefaultMaxPaths, "strings listed per category")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions, examplesPath, bundlePath string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	alpha, err := loadAlphabet(formatter, examplesPath)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	bundle, err := loadBundle(bundlePath)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	drv, err := driver.New(alpha, driverOptions(formatter, 0, 1, opts.MaxStates, opts.MaxPaths)...)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	rules, err := drv.LoadBundle(bundle)
	if err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeInvalidInput, Message: "cannot load bundle", Err: err})
	}
	formatter.VerboseLog("Loaded %d rule(s) from %s", len(rules), bundlePath)

	res, err := drv.Check(ctx, rules)
	if err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeCheck, Message: "rule set check failed", Err: err})
	}
	if err := writeCheckFiles(opts.Lost, opts.Wrong, res.Report); err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: "writing check output", Err: err})
	}

	return outputCheck(formatter, res.Report)
}

func outputCheck(f *OutputFormatter, rep ir.CheckReport) error {
	failed := len(rep.Lost) > 0 || len(rep.Wrong) > 0
	msg := fmt.Sprintf("%d example(s) lost, %d wrong string(s) accepted", len(rep.Lost), len(rep.Wrong))

	if f.Format == "json" {
		if failed {
			if err := f.Failure(ErrCodeCheck, msg, rep); err != nil {
				return err
			}
			return NewExitError(ExitFailure, msg)
		}
		return f.Success(rep)
	}

	fmt.Fprintf(f.Writer, "Checked %d example(s) against %d rule(s)\n", rep.Examples, rep.Rules)
	if len(rep.Lost) > 0 {
		fmt.Fprintf(f.Writer, "\n%s\n", f.Bold("Lost examples:"))
		for _, s := range rep.Lost {
			fmt.Fprintf(f.Writer, "  %s\n", s)
		}
	}
	if len(rep.Wrong) > 0 {
		fmt.Fprintf(f.Writer, "\n%s\n", f.Bold("Wrong strings:"))
		for _, s := range rep.Wrong {
			fmt.Fprintf(f.Writer, "  %s\n", s)
		}
	}
	fmt.Fprintln(f.Writer)

	if failed {
		fmt.Fprintf(f.Writer, "%s %s\n", f.Fail("✗"), msg)
		return NewExitError(ExitFailure, msg)
	}
	fmt.Fprintf(f.Writer, "%s All examples accepted, no wrong strings\n", f.OK("✓"))
	return nil
}
