package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/roach88/twolc/internal/driver"
	"github.com/roach88/twolc/internal/ir"
	"github.com/roach88/twolc/internal/metrics"
	"github.com/roach88/twolc/internal/store"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output      string // bundle file path
	Lost        string // lost examples file
	Wrong       string // wrong strings file
	Thorough    int
	Database    string
	Workers     int
	MaxStates   int
	MaxPaths    int
	MetricsFile string
}

// CompileResult is the JSON payload of the compile command.
type CompileResult struct {
	Report ir.CompileReport `json:"report"`
	Check  *ir.CheckReport  `json:"check,omitempty"`
	Output string           `json:"output,omitempty"`
	RunID  string           `json:"run_id,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile [examples] [rules]",
		Short: "Compile a rule file against an example file",
		Long: `Compile every rule of a two-level rule file into a transducer.

Each rule is tested against the examples as it is compiled: with
--thorough 1 against the positive examples, with --thorough 2 also
against negative examples made by scrambling the positive ones.
Statements that fail are reported and the rest of the file still
compiles.

Arguments default to the examples and rules fields of twolc.cue.

Exit codes:
  0 - All statements compiled
  1 - One or more statements failed
  2 - Command error (missing files, invalid configuration, etc.)`,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the compiled rules to this bundle file")
	cmd.Flags().StringVarP(&opts.Lost, "lost", "l", "", "write examples rejected by some rule to this file")
	cmd.Flags().StringVarP(&opts.Wrong, "wrong", "w", "", "write non-examples accepted by all rules to this file")
	cmd.Flags().IntVarP(&opts.Thorough, "thorough", "t", driver.DefaultThorough, "test level: 0 none, 1 positive, 2 positive and negative")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().IntVar(&opts.Workers, "workers", runtime.NumCPU(), "rules compiled in parallel")
	cmd.Flags().IntVar(&opts.MaxStates, "max-states", 0, maxStatesUsage)
	cmd.Flags().IntVar(&opts.MaxPaths, "max-paths", driver.DefaultMaxPaths, "counterexamples shown per failed test")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write prometheus metrics to this file")

	return cmd
}

// compileSettings are the compile options after merging twolc.cue.
type compileSettings struct {
	examples  string
	rules     string
	output    string
	lost      string
	wrong     string
	database  string
	metrics   string
	thorough  int
	workers   int
	maxStates int
	maxPaths  int
}

func resolveCompile(cmd *cobra.Command, opts *CompileOptions, args []string) (*compileSettings, error) {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		opts.Verbose = true
	}

	s := &compileSettings{
		examples:  cfg.Examples,
		rules:     cfg.Rules,
		output:    pickString(cmd, "output", opts.Output, cfg.Output),
		lost:      pickString(cmd, "lost", opts.Lost, cfg.Lost),
		wrong:     pickString(cmd, "wrong", opts.Wrong, cfg.Wrong),
		database:  pickString(cmd, "db", opts.Database, cfg.Database),
		metrics:   pickString(cmd, "metrics-file", opts.MetricsFile, cfg.MetricsFile),
		thorough:  pickThorough(cmd, opts.Thorough, cfg.Thorough),
		workers:   pickInt(cmd, "workers", opts.Workers, cfg.Workers),
		maxStates: pickInt(cmd, "max-states", opts.MaxStates, cfg.MaxStates),
		maxPaths:  pickInt(cmd, "max-paths", opts.MaxPaths, cfg.MaxPaths),
	}
	if len(args) > 0 {
		s.examples = args[0]
	}
	if len(args) > 1 {
		s.rules = args[1]
	}
	if s.rules == "" {
		return nil, &LoadError{Code: ErrCodeInvalidInput, Message: "no rule file given"}
	}
	return s, nil
}

func runCompile(cmd *cobra.Command, opts *CompileOptions, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := resolveCompile(cmd, opts, args)
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return outputLoadError(formatter, err)
	}

	alpha, err := loadAlphabet(formatter, s.examples)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	if _, err := os.Stat(s.rules); os.IsNotExist(err) {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rule file not found: %s", s.rules)})
	}

	var collector *metrics.Collector
	if s.metrics != "" {
		collector = metrics.New()
	}
	dopts := driverOptions(formatter, s.thorough, s.workers, s.maxStates, s.maxPaths)
	drv, err := driver.New(alpha, append(dopts, driver.WithMetrics(collector))...)
	if err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeInvalidInput, Message: "cannot set up compiler", Err: err})
	}

	formatter.VerboseLog("Compiling %s with %d worker(s)", s.rules, s.workers)
	rep, err := drv.CompileFile(ctx, s.rules)
	if err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeGeneric, Message: "compilation aborted", Err: err})
	}

	result := &CompileResult{Report: rep.IR()}

	if s.lost != "" || s.wrong != "" {
		check, err := drv.Check(ctx, rep.Automata())
		if err != nil {
			return outputLoadError(formatter, &LoadError{Code: ErrCodeCheck, Message: "rule set check failed", Err: err})
		}
		result.Check = &check.Report
		if err := writeCheckFiles(s.lost, s.wrong, check.Report); err != nil {
			return outputLoadError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: "writing check output", Err: err})
		}
	}

	if s.output != "" || s.database != "" {
		bundle, err := drv.Bundle(rep)
		if err != nil {
			return outputLoadError(formatter, err)
		}
		if s.output != "" {
			if err := writeBundleFile(s.output, bundle); err != nil {
				return outputLoadError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: "writing output file", Err: err})
			}
			result.Output = s.output
		}
		if s.database != "" {
			id, err := recordRun(ctx, s.database, s.examples, bundle, result.Report)
			if err != nil {
				return outputLoadError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: "recording run", Err: err})
			}
			result.RunID = id
			formatter.VerboseLog("Recorded run %s in %s", id, s.database)
		}
	}

	if collector != nil {
		if err := collector.WriteTextfile(s.metrics); err != nil {
			return outputLoadError(formatter, &LoadError{Code: ErrCodeWriteFailed, Message: "writing metrics", Err: err})
		}
	}

	return outputCompile(formatter, rep, result)
}

func writeCheckFiles(lost, wrong string, rep ir.CheckReport) error {
	if lost != "" {
		if err := writePaths(lost, rep.Lost); err != nil {
			return err
		}
	}
	if wrong != "" {
		if err := writePaths(wrong, rep.Wrong); err != nil {
			return err
		}
	}
	return nil
}

func writeBundleFile(path string, b *ir.RuleBundle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := ir.WriteBundle(f, b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func recordRun(ctx context.Context, path, examples string, b *ir.RuleBundle, rep ir.CompileReport) (string, error) {
	st, err := store.Open(path)
	if err != nil {
		return "", err
	}
	defer st.Close()

	run, _, err := st.WriteRun(ctx, store.RunInput{
		Examples: examples,
		Bundle:   b,
		Report:   rep,
	})
	if err != nil {
		return "", err
	}
	return run.ID, nil
}

func outputCompile(f *OutputFormatter, rep *driver.Report, result *CompileResult) error {
	failed := len(rep.Errors)
	if f.Format == "json" {
		if failed > 0 {
			if err := f.Failure(ErrCodeCompile, fmt.Sprintf("%d statement(s) failed", failed), result); err != nil {
				return err
			}
			return NewExitError(ExitFailure, fmt.Sprintf("compilation failed with %d error(s)", failed))
		}
		return f.Success(result)
	}

	if err := rep.WriteText(f.Writer); err != nil {
		return err
	}
	fmt.Fprintln(f.Writer)

	if c := result.Check; c != nil {
		fmt.Fprintf(f.Writer, "%d example(s) lost, %d wrong string(s) accepted\n", len(c.Lost), len(c.Wrong))
	}
	if result.Output != "" {
		fmt.Fprintf(f.Writer, "Wrote %d rule(s) to %s\n", len(rep.Rules), result.Output)
	}
	if result.RunID != "" {
		fmt.Fprintf(f.Writer, "Recorded run %s\n", result.RunID)
	}

	if failed > 0 {
		fmt.Fprintf(f.Writer, "%s Compiled %d rule(s), %d statement(s) failed\n", f.Fail("✗"), len(rep.Rules), failed)
		return NewExitError(ExitFailure, fmt.Sprintf("compilation failed with %d error(s)", failed))
	}
	if w := len(rep.Warnings()); w > 0 {
		fmt.Fprintf(f.Writer, "%s Compiled %d rule(s), %s\n", f.OK("✓"), len(rep.Rules), f.Warn(fmt.Sprintf("%d example mismatch(es)", w)))
		return nil
	}
	fmt.Fprintf(f.Writer, "%s Compiled %d rule(s)\n", f.OK("✓"), len(rep.Rules))
	return nil
}
