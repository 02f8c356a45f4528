package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/twolc/internal/ir"
	"github.com/roach88/twolc/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
}

// RunDetail is the JSON payload of runs show.
type RunDetail struct {
	Run         store.Run       `json:"run"`
	Rules       []ir.RuleRecord `json:"rules"`
	Diagnostics []ir.Diagnostic `json:"diagnostics"`
}

// NewRunsCommand creates the runs command and its subcommands.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect compile runs recorded with compile --db",
	}
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkPersistentFlagRequired("db")

	cmd.AddCommand(&cobra.Command{
		Use:           "list",
		Short:         "List recorded runs, oldest first",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsList(cmd, opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:           "show <run-id>",
		Short:         "Show the rules and diagnostics of a run (\"latest\" for the newest)",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsShow(cmd, opts, args[0])
		},
	})

	return cmd
}

// openStore opens an existing database. A missing file is a command
// error rather than a new empty database.
func openStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("database not found: %s", path)}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "cannot open database", Err: err}
	}
	return st, nil
}

func resolveRun(ctx context.Context, st *store.Store, id string) (store.Run, error) {
	var (
		run store.Run
		err error
	)
	if id == "latest" {
		run, err = st.LatestRun(ctx)
	} else {
		run, err = st.ReadRun(ctx, id)
	}
	if errors.Is(err, store.ErrNotFound) {
		return store.Run{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("run not found: %s", id)}
	}
	return run, err
}

// bundleFromStore reads the bundle of a recorded run.
func bundleFromStore(ctx context.Context, path, id string) (*ir.RuleBundle, error) {
	st, err := openStore(path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	run, err := resolveRun(ctx, st, id)
	if err != nil {
		return nil, err
	}
	return st.ReadBundle(ctx, run.ID)
}

func runRunsList(cmd *cobra.Command, opts *RunsOptions) error {
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	st, err := openStore(opts.Database)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmd.Context())
	if err != nil {
		return outputLoadError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(formatter.Writer, "No runs recorded.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(formatter.Writer, "%4d  %s  %3d rule(s)  %s\n", r.Seq, r.ID, r.Rules, r.Source)
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, opts *RunsOptions, id string) error {
	ctx := cmd.Context()
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())
	st, err := openStore(opts.Database)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	defer st.Close()

	run, err := resolveRun(ctx, st, id)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	bundle, err := st.ReadBundle(ctx, run.ID)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	diags, err := st.ReadDiagnostics(ctx, run.ID)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(RunDetail{Run: run, Rules: bundle.Rules, Diagnostics: diags})
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s %s\n", formatter.Bold("Run"), run.ID)
	fmt.Fprintf(w, "  rules:    %s\n", run.Source)
	fmt.Fprintf(w, "  examples: %s\n", run.Examples)
	fmt.Fprintf(w, "  bundle:   %s\n", run.BundleHash)
	fmt.Fprintf(w, "  compiler: %s\n", run.CompilerVersion)

	fmt.Fprintf(w, "\n%s\n", formatter.Bold("Rules:"))
	for _, r := range bundle.Rules {
		fmt.Fprintf(w, "  %3d  line %-4d %4d states  %s\n", r.Ordinal, r.FirstLine, r.Automaton.States, r.Name)
	}
	if len(diags) > 0 {
		fmt.Fprintf(w, "\n%s\n", formatter.Bold("Diagnostics:"))
		for _, d := range diags {
			sev := formatter.Warn(d.Severity)
			if d.Severity == ir.SeverityError {
				sev = formatter.Fail(d.Severity)
			}
			fmt.Fprintf(w, "  %s line %d: %s: %s\n", sev, d.FirstLine, d.Kind, d.Message)
			fmt.Fprintf(w, "      %s\n", d.Statement)
		}
	}
	return nil
}
