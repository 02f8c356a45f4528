package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/twolc/internal/alphabet"
	"github.com/roach88/twolc/internal/config"
	"github.com/roach88/twolc/internal/driver"
	"github.com/roach88/twolc/internal/fst"
	"github.com/roach88/twolc/internal/ir"
)

// LoadError is a failure to read one of the command's input files.
type LoadError struct {
	Code    string
	Message string
	Err     error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// loadConfig reads --config, or twolc.cue in the working directory when
// the flag is not given. A missing default file yields an empty config.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	path := opts.Config
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return &config.Config{}, nil
		}
		if path = config.Find(wd); path == "" {
			return &config.Config{}, nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidInput, Message: "invalid configuration", Err: err}
	}
	return cfg, nil
}

// pickString returns the flag value when the flag was set on the command
// line or the file has no value.
func pickString(cmd *cobra.Command, name, flag, file string) string {
	if cmd.Flags().Changed(name) || file == "" {
		return flag
	}
	return file
}

func pickInt(cmd *cobra.Command, name string, flag, file int) int {
	if cmd.Flags().Changed(name) || file == 0 {
		return flag
	}
	return file
}

func pickThorough(cmd *cobra.Command, flag int, file *int) int {
	if cmd.Flags().Changed("thorough") || file == nil {
		return flag
	}
	return *file
}

// loadAlphabet reads an example file and derives the alphabet. Example
// lines that could not be parsed are logged through the formatter.
func loadAlphabet(f *OutputFormatter, path string) (*alphabet.Alphabet, error) {
	if path == "" {
		return nil, &LoadError{Code: ErrCodeInvalidInput, Message: "no example file given"}
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("example file not found: %s", path)}
	}
	set, err := alphabet.LoadExamples(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidInput, Message: "cannot read examples", Err: err}
	}
	for _, r := range set.Rejected {
		f.VerboseLog("%s:%d: skipped example: %s", path, r.Line, r.Reason)
	}
	alpha, err := alphabet.New(fst.NewEngine(fst.NewSymbolTable()), set)
	if errors.Is(err, alphabet.ErrNoExamples) {
		return nil, &LoadError{Code: ErrCodeInvalidInput, Message: fmt.Sprintf("no usable examples in %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidInput, Message: "cannot build alphabet", Err: err}
	}
	f.VerboseLog("Read %d example(s), %d pair(s) from %s", len(alpha.ExampleList()), len(alpha.Pairs()), path)
	return alpha, nil
}

// loadBundle reads a rule bundle written by compile -o.
func loadBundle(path string) (*ir.RuleBundle, error) {
	r, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("bundle not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "cannot open bundle", Err: err}
	}
	defer r.Close()

	b, err := ir.ReadBundle(r)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidInput, Message: fmt.Sprintf("invalid bundle %s", path), Err: err}
	}
	return b, nil
}

// outputLoadError reports a LoadError (or any other error) as a command
// error.
func outputLoadError(f *OutputFormatter, err error) error {
	code := ErrCodeGeneric
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		code = loadErr.Code
	}
	_ = f.Error(code, err.Error(), nil)
	return WrapExitError(ExitCommandError, code, err)
}

// maxStatesUsage is the help text of every --max-states flag.
var maxStatesUsage = fmt.Sprintf("state budget per automaton (0 = default of %d)", fst.DefaultMaxStates)

// driverOptions converts resolved settings to driver options.
func driverOptions(f *OutputFormatter, thorough, workers, maxStates, maxPaths int) []driver.Option {
	opts := []driver.Option{
		driver.WithLogger(f.Logger()),
		driver.WithThorough(thorough),
	}
	if workers > 0 {
		opts = append(opts, driver.WithWorkers(workers))
	}
	if maxStates > 0 {
		opts = append(opts, driver.WithMaxStates(maxStates))
	}
	return append(opts, driver.WithMaxPaths(maxPaths))
}

// writePaths writes one pair string per line.
func writePaths(path string, lines []string) error {
	var data []byte
	for _, l := range lines {
		data = append(data, l...)
		data = append(data, '\n')
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
