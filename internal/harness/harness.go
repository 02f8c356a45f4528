package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/roach88/twolc/internal/alphabet"
	"github.com/roach88/twolc/internal/driver"
	"github.com/roach88/twolc/internal/fst"
)

// Harness runs scenarios. Every scenario gets a fresh engine and
// alphabet, so scenarios never share symbol tables.
type Harness struct {
	logger    *slog.Logger
	workers   int
	maxStates int
}

// Option configures a Harness.
type Option func(*Harness)

// WithLogger sets the logger passed to the driver.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		h.logger = l
	}
}

// WithWorkers sets the driver's worker count.
func WithWorkers(n int) Option {
	return func(h *Harness) {
		h.workers = n
	}
}

// WithMaxStates sets the automaton state budget of each scenario.
func WithMaxStates(n int) Option {
	return func(h *Harness) {
		h.maxStates = n
	}
}

// New creates a harness. Without WithLogger, driver output is discarded.
func New(opts ...Option) *Harness {
	h := &Harness{
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: 1,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a scenario with a default harness.
func Run(scenario *Scenario) (*Result, error) {
	return New().Run(context.Background(), scenario)
}

// Run compiles the scenario's rules and evaluates its expectations. The
// returned error is set only when the scenario cannot be executed at
// all; failed expectations are recorded in the Result.
func (h *Harness) Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	set, err := h.examples(scenario)
	if err != nil {
		return nil, err
	}
	alpha, err := alphabet.New(fst.NewEngine(fst.NewSymbolTable()), set)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	opts := []driver.Option{
		driver.WithLogger(h.logger),
		driver.WithWorkers(h.workers),
	}
	if scenario.Thorough != nil {
		opts = append(opts, driver.WithThorough(*scenario.Thorough))
	}
	if h.maxStates > 0 {
		opts = append(opts, driver.WithMaxStates(h.maxStates))
	}
	drv, err := driver.New(alpha, opts...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}

	rules, err := h.rules(scenario)
	if err != nil {
		return nil, err
	}
	rep, err := drv.Compile(ctx, strings.NewReader(rules))
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", scenario.Name, err)
	}
	rep.Source = scenario.Name

	check, err := drv.Check(ctx, rep.Automata())
	if err != nil {
		return nil, fmt.Errorf("scenario %s: check: %w", scenario.Name, err)
	}

	result := NewResult()
	result.Report = rep.IR()
	result.Check = check.Report

	h.logger.Info("scenario compiled",
		"scenario", scenario.Name,
		"rules", len(rep.Rules),
		"errors", len(rep.Errors),
	)

	assertStrings(result, drv, rep.Automata(), scenario)
	assertErrors(result, rep, scenario.ExpectErrors)
	if scenario.ExpectLost != nil {
		assertList(result, "lost", *scenario.ExpectLost, check.Report.Lost)
	}
	if scenario.ExpectWrong != nil {
		assertList(result, "wrong", *scenario.ExpectWrong, check.Report.Wrong)
	}
	return result, nil
}

func (h *Harness) examples(s *Scenario) (*alphabet.ExampleSet, error) {
	if s.ExamplesFile != "" {
		return alphabet.LoadExamples(s.ExamplesFile)
	}
	set, err := alphabet.ReadExamples(strings.NewReader(strings.Join(s.Examples, "\n")))
	if err != nil {
		return nil, err
	}
	set.Source = s.Name
	return set, nil
}

func (h *Harness) rules(s *Scenario) (string, error) {
	if s.RulesFile == "" {
		return s.Rules, nil
	}
	data, err := os.ReadFile(s.RulesFile)
	if err != nil {
		return "", fmt.Errorf("failed to read rules: %w", err)
	}
	return string(data), nil
}

// Summary is the part of a run compared with golden files. It leaves out
// state counts and timings so goldens survive engine changes.
func (r *Result) Summary(name string) map[string]any {
	rules := make([]any, len(r.Report.Rules))
	for i, rule := range r.Report.Rules {
		rules[i] = map[string]any{
			"name":       rule.Name,
			"operator":   rule.Operator,
			"first_line": rule.FirstLine,
			"positive":   rule.Positive,
			"negative":   rule.Negative,
		}
	}
	diags := make([]any, len(r.Report.Diagnostics))
	for i, d := range r.Report.Diagnostics {
		m := map[string]any{
			"severity":   d.Severity,
			"kind":       d.Kind,
			"first_line": d.FirstLine,
			"message":    d.Message,
		}
		if len(d.Examples) > 0 {
			m["examples"] = d.Examples
		}
		diags[i] = m
	}
	return map[string]any{
		"scenario":    name,
		"rules":       rules,
		"diagnostics": diags,
		"lost":        orEmpty(r.Check.Lost),
		"wrong":       orEmpty(r.Check.Wrong),
	}
}

func orEmpty(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
