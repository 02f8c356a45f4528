package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/twolc/internal/compiler"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Examples are inline example lines. ExamplesFile is used instead
	// when set; its path is relative to the scenario file.
	Examples     []string `yaml:"examples,omitempty"`
	ExamplesFile string   `yaml:"examples_file,omitempty"`

	// Rules is inline rule-file text. RulesFile is used instead when set.
	Rules     string `yaml:"rules,omitempty"`
	RulesFile string `yaml:"rules_file,omitempty"`

	// Thorough is the testing level; defaults to 2.
	Thorough *int `yaml:"thorough,omitempty"`

	Accept       []string        `yaml:"accept,omitempty"`
	Reject       []string        `yaml:"reject,omitempty"`
	ExpectErrors []ExpectedError `yaml:"expect_errors,omitempty"`

	// ExpectLost and ExpectWrong are pointers so that an explicit empty
	// list can be told apart from an omitted one.
	ExpectLost  *[]string `yaml:"expect_lost,omitempty"`
	ExpectWrong *[]string `yaml:"expect_wrong,omitempty"`
}

// ExpectedError matches one compile error by kind and first line.
type ExpectedError struct {
	Kind string `yaml:"kind"`
	Line int    `yaml:"line"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// File references are resolved relative to the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	base := filepath.Dir(path)
	for _, p := range []*string{&scenario.ExamplesFile, &scenario.RulesFile} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
	if err := validateFiles(scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return scenario, nil
}

// ParseScenario parses scenario YAML with strict field validation
// (catches typos like "expect_error:" vs "expect_errors:").
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case len(s.Examples) > 0 && s.ExamplesFile != "":
		return fmt.Errorf("examples and examples_file are mutually exclusive")
	case len(s.Examples) == 0 && s.ExamplesFile == "":
		return fmt.Errorf("examples or examples_file is required")
	}
	switch {
	case s.Rules != "" && s.RulesFile != "":
		return fmt.Errorf("rules and rules_file are mutually exclusive")
	case s.Rules == "" && s.RulesFile == "":
		return fmt.Errorf("rules or rules_file is required")
	}

	if s.Thorough != nil && (*s.Thorough < 0 || *s.Thorough > 2) {
		return fmt.Errorf("thorough must be 0, 1 or 2")
	}

	for i, e := range s.ExpectErrors {
		if _, err := compiler.ParseErrorKind(e.Kind); err != nil {
			return fmt.Errorf("expect_errors[%d]: %w", i, err)
		}
		if e.Line < 1 {
			return fmt.Errorf("expect_errors[%d]: line is required", i)
		}
	}
	return nil
}

func validateFiles(s *Scenario) error {
	for _, p := range []string{s.ExamplesFile, s.RulesFile} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("file not found: %s", p)
		}
	}
	return nil
}
