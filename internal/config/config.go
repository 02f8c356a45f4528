// Package config loads the optional twolc.cue project file.
//
// The file is plain CUE with top-level fields. It is unified with the
// embedded #Config definition, which is closed, so a misspelled field is
// an error rather than silently ignored. Relative paths are taken
// relative to the directory holding the file.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// FileName is the name looked up by Find.
const FileName = "twolc.cue"

//go:embed schema.cue
var schemaCUE string

// Config is the project configuration. Zero values mean "not set".
type Config struct {
	Examples    string `json:"examples,omitempty"`
	Rules       string `json:"rules,omitempty"`
	Output      string `json:"output,omitempty"`
	Lost        string `json:"lost,omitempty"`
	Wrong       string `json:"wrong,omitempty"`
	Database    string `json:"database,omitempty"`
	MetricsFile string `json:"metrics_file,omitempty"`

	// Thorough is a pointer because 0 is a meaningful level.
	Thorough  *int `json:"thorough,omitempty"`
	Workers   int  `json:"workers,omitempty"`
	MaxStates int  `json:"max_states,omitempty"`
	MaxPaths  int  `json:"max_paths,omitempty"`
	Verbose   bool `json:"verbose,omitempty"`

	// Path is the file the configuration was read from.
	Path string `json:"-"`
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	cfg.Path = path
	cfg.resolve(filepath.Dir(path))
	return cfg, nil
}

// Find returns the path of twolc.cue in dir, or "" if there is none.
func Find(dir string) string {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Parse validates CUE source against the schema. filename is only used
// in error positions.
func Parse(data []byte, filename string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("parse config: %s", formatCUEError(err))
	}

	unified := def.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("invalid config: %s", formatCUEError(err))
	}

	var cfg Config
	if err := unified.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// formatCUEError joins every error CUE reports, with positions.
func formatCUEError(err error) string {
	var list cueerrors.Error
	if !errors.As(err, &list) {
		return err.Error()
	}
	return cueerrors.Details(err, nil)
}

func (c *Config) resolve(dir string) {
	for _, p := range []*string{&c.Examples, &c.Rules, &c.Output, &c.Lost, &c.Wrong, &c.Database, &c.MetricsFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
