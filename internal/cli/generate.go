package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/twolc/internal/driver"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	MaxStates int
	MaxPaths  int
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <examples> <bundle> <word>...",
		Short: "Generate surface forms allowed by a compiled rule set",
		Long: `Generate the surface realizations of morphophonemic words.

Each word is one argument of space separated input symbols, written
the way they appear in the example file. A realization is printed when
every rule of the bundle accepts it. A word with no realization is not
an error.

Examples:
  twolc generate examples.txt rules.json "k a t %+ s"
  twolc generate examples.txt rules.json "d o g %+ s" "k a t"`,
		Args:          cobra.MinimumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args[0], args[1], args[2:])
		},
	}

	cmd.Flags().IntVar(&opts.MaxStates, "max-states", 0, maxStatesUsage)
	cmd.Flags().IntVarP(&opts.MaxPaths, "max-paths", "n", driver.DefaultMaxPaths, "realizations listed per word")

	return cmd
}

func runGenerate(cmd *cobra.Command, opts *GenerateOptions, examplesPath, bundlePath string, words []string) error {
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
		return outputLoadError(formatter, &LoadError{Code: ErrCodeInvalidInput, Message: "cannot set up generator", Err: err})
	}
	rules, err := drv.LoadBundle(bundle)
	if err != nil {
		return outputLoadError(formatter, &LoadError{Code: ErrCodeInvalidInput, Message: "cannot load bundle", Err: err})
	}

	// Validate every word before generating any.
	for _, w := range words {
		if _, err := drv.ParseWord(w); err != nil {
			return outputLoadError(formatter, &LoadError{Code: ErrCodeInvalidInput, Message: fmt.Sprintf("invalid word %q", w), Err: err})
		}
	}

	results := make([]*driver.Generation, 0, len(words))
	for _, w := range words {
		g, err := drv.Generate(ctx, rules, w)
		if err != nil {
			return outputLoadError(formatter, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("generating %q", w), Err: err})
		}
		results = append(results, g)
	}

	if formatter.Format == "json" {
		return formatter.Success(results)
	}
	for _, g := range results {
		fmt.Fprintf(formatter.Writer, "%s\n", formatter.Bold(g.Word))
		if len(g.Pairs) == 0 {
			fmt.Fprintf(formatter.Writer, "  %s\n", formatter.Warn("(no realization)"))
			continue
		}
		for i, p := range g.Pairs {
			fmt.Fprintf(formatter.Writer, "  %s\t%s\n", g.Surface[i], p)
		}
	}
	return nil
}
