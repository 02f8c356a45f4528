package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/twolc/internal/alphabet"
	"github.com/roach88/twolc/internal/fst"
	"github.com/roach88/twolc/internal/ir"
)

// PathsOptions holds flags for the paths command.
type PathsOptions struct {
	*RootOptions
	Limit    int
	Database string
}

// PathsResult is the JSON payload of the paths command.
type PathsResult struct {
	Rule     string   `json:"rule"`
	Operator string   `json:"operator"`
	Hash     string   `json:"hash"`
	States   int      `json:"states"`
	Paths    []string `json:"paths"`
}

// NewPathsCommand creates the paths command.
func NewPathsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PathsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "paths <bundle> <rule>",
		Short: "List strings accepted by a compiled rule",
		Long: `Print the shortest pair strings accepted by one rule of a bundle.

The rule is named by its text as shown in the compile report, or by
its position in the bundle counting from 0. With --db the first
argument is a run id from the database, or "latest".`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaths(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "number of strings to print")
	cmd.Flags().StringVar(&opts.Database, "db", "", "read the bundle from this SQLite database")

	return cmd
}

func runPaths(cmd *cobra.Command, opts *PathsOptions, source, key string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var (
		bundle *ir.RuleBundle
		err    error
	)
	if opts.Database != "" {
		bundle, err = bundleFromStore(ctx, opts.Database, source)
	} else {
		bundle, err = loadBundle(source)
	}
	if err != nil {
		return outputLoadError(formatter, err)
	}

	rec, ok := bundle.Rule(key)
	if !ok {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("no rule %q in bundle", key)})
	}

	eng := fst.NewEngine(fst.NewSymbolTable())
	a, err := eng.FromSnapshot(rec.Automaton)
	if err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeInvalidInput, Message: "cannot load rule", Err: err})
	}

	syms := eng.Symbols()
	result := PathsResult{
		Rule:     rec.Name,
		Operator: rec.Operator,
		Hash:     rec.Hash,
		States:   rec.Automaton.States,
		Paths:    []string{},
	}
	for _, labels := range eng.Paths(a, opts.Limit) {
		pairs := make([]alphabet.Pair, len(labels))
		for i, l := range labels {
			pairs[i] = alphabet.Pair{In: syms.Name(l.In), Out: syms.Name(l.Out)}
		}
		result.Paths = append(result.Paths, alphabet.FormatPairs(pairs))
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%s\n", formatter.Bold(result.Rule))
	for _, p := range result.Paths {
		if p == "" {
			p = "(empty string)"
		}
		fmt.Fprintf(formatter.Writer, "  %s\n", p)
	}
	return nil
}
