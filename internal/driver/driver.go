package driver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/twolc/internal/alphabet"
	"github.com/roach88/twolc/internal/compiler"
	"github.com/roach88/twolc/internal/fst"
	"github.com/roach88/twolc/internal/metrics"
	"github.com/roach88/twolc/internal/syntax"
)

// Default testing parameters.
const (
	DefaultThorough = 2
	DefaultMaxPaths = 20
)

// Driver compiles rule files against one alphabet. It is safe to call
// Compile from several goroutines.
type Driver struct {
	alpha *alphabet.Alphabet
	cc    *compiler.CompilationContext

	thorough  int
	maxPaths  int
	workers   int
	maxStates int
	logger    *slog.Logger
	metrics   *metrics.Collector

	// encoded examples and their input sides, shared by every rule test
	examplesEnc *fst.Automaton
	examplesIn  *fst.Automaton
}

// Option configures a Driver.
type Option func(*Driver)

// WithThorough sets the testing level (0, 1 or 2).
func WithThorough(n int) Option {
	return func(d *Driver) {
		d.thorough = n
	}
}

// WithMaxPaths limits how many failing examples are listed per test.
// New rejects values below 1.
func WithMaxPaths(n int) Option {
	return func(d *Driver) {
		d.maxPaths = n
	}
}

// WithWorkers sets the number of rules compiled in parallel.
func WithWorkers(n int) Option {
	return func(d *Driver) {
		d.workers = n
	}
}

// WithMaxStates sets the state budget of every automaton built for a
// rule. Zero keeps the engine's budget.
func WithMaxStates(n int) Option {
	return func(d *Driver) {
		d.maxStates = n
	}
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// WithMetrics records compilation statistics into m.
func WithMetrics(m *metrics.Collector) Option {
	return func(d *Driver) {
		d.metrics = m
	}
}

// New prepares a driver for alpha. The alphabet's engine must not be
// shared with another alphabet.
func New(alpha *alphabet.Alphabet, opts ...Option) (*Driver, error) {
	d := &Driver{
		alpha:    alpha,
		thorough: DefaultThorough,
		maxPaths: DefaultMaxPaths,
		workers:  runtime.NumCPU(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.thorough < 0 || d.thorough > 2 {
		return nil, fmt.Errorf("thoroughness must be 0, 1 or 2, got %d", d.thorough)
	}
	if d.maxPaths < 1 {
		return nil, fmt.Errorf("max paths must be at least 1, got %d", d.maxPaths)
	}
	if d.workers < 1 {
		d.workers = 1
	}

	cc, err := compiler.NewCompilationContext(alpha)
	if err != nil {
		return nil, err
	}
	d.cc = cc

	if err := d.prepareExamples(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Driver) prepareExamples() (err error) {
	defer fst.Catch(&err)

	eng := d.cc.Engine()
	d.examplesEnc = eng.Minimize(eng.Encode(d.alpha.Examples()))
	d.examplesIn = eng.Minimize(eng.ProjectInput(d.alpha.Examples()))
	return nil
}

// Alphabet returns the alphabet rules are compiled against.
func (d *Driver) Alphabet() *alphabet.Alphabet {
	return d.alpha
}

// Engine returns the automaton engine shared by all compiled rules.
func (d *Driver) Engine() *fst.Engine {
	return d.cc.Engine()
}

// CompileFile compiles the rule file at path.
func (d *Driver) CompileFile(ctx context.Context, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rule file: %w", err)
	}
	defer f.Close()

	rep, err := d.Compile(ctx, f)
	if err != nil {
		return nil, err
	}
	rep.Source = path
	return rep, nil
}

// ruleJob is a parsed rule waiting for pass 2, together with the
// definitions visible at its position in the file.
type ruleJob struct {
	index int
	stmt  Statement
	node  *syntax.Rule
	env   *compiler.Env
}

// Compile compiles every statement read from r. Statement errors are
// collected in the report; the returned error is only set when the rule
// file cannot be read or ctx is canceled.
func (d *Driver) Compile(ctx context.Context, r io.Reader) (*Report, error) {
	stmts, err := Scan(r)
	if err != nil {
		return nil, fmt.Errorf("read rule file: %w", err)
	}

	start := time.Now()
	entries := make([]entry, len(stmts))
	comp := compiler.New(d.cc, compiler.NewEnv(d.cc))
	if d.maxStates > 0 {
		comp = comp.WithMaxStates(d.maxStates)
	}

	// Pass 1: parse everything, bind definitions in file order.
	var jobs []ruleJob
	definitions := 0
	for i, st := range stmts {
		entries[i].stmt = st
		if st.Unterminated {
			entries[i].err = &compiler.CompileError{
				Kind:    compiler.SyntaxError,
				Message: "statement is not terminated by ';'",
			}
			continue
		}
		parsed, err := syntax.ParseStatement(st.Text, st.FirstLine)
		if err != nil {
			entries[i].err = &compiler.CompileError{Kind: compiler.SyntaxError, Message: err.Error(), Err: err}
			continue
		}
		switch parsed.Kind {
		case syntax.KindDefinition:
			if err := comp.WithContext(ctx).Define(parsed.Definition); err != nil {
				entries[i].err = compiler.AsCompileError(err)
				continue
			}
			definitions++
			d.logger.Debug("definition bound", "name", parsed.Definition.Name, "line", st.FirstLine)
		case syntax.KindRule:
			jobs = append(jobs, ruleJob{index: i, stmt: st, node: parsed.Rule, env: comp.Env().Snapshot()})
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Pass 2: compile and test rules in parallel.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			res, err := d.compileRule(gctx, comp.WithEnv(job.env), job)
			entries[job.index].rule = res
			entries[job.index].err = err
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := d.assemble(entries, definitions)
	d.logger.Info("compilation finished",
		"statements", len(stmts),
		"definitions", definitions,
		"rules", len(rep.Rules),
		"errors", len(rep.Errors),
		"elapsed", time.Since(start),
	)
	return rep, nil
}

// entry is the outcome of one statement.
type entry struct {
	stmt Statement
	rule *RuleResult
	err  *compiler.CompileError
}

func (d *Driver) assemble(entries []entry, definitions int) *Report {
	rep := &Report{
		Thorough:    d.thorough,
		Definitions: definitions,
		Statements:  len(entries),
	}
	for _, e := range entries {
		if e.err != nil {
			ce := e.err.At(e.stmt.Display(), e.stmt.FirstLine, e.stmt.LastLine)
			rep.Errors = append(rep.Errors, ce)
			d.metrics.CompileFailed(ce.Kind.String())
			d.logger.Warn("statement failed", "line", ce.FirstLine, "kind", ce.Kind.String(), "error", ce.Message)
			continue
		}
		if e.rule != nil {
			rep.Rules = append(rep.Rules, e.rule)
		}
	}
	return rep
}

// compileRule runs in a worker goroutine.
func (d *Driver) compileRule(ctx context.Context, comp *compiler.Compiler, job ruleJob) (*RuleResult, *compiler.CompileError) {
	start := time.Now()
	name := job.stmt.Display()

	rule, err := comp.WithContext(ctx).Rule(job.node, name)
	if err != nil {
		return nil, compiler.AsCompileError(err)
	}
	rule.FirstLine = job.stmt.FirstLine
	rule.LastLine = job.stmt.LastLine

	res := &RuleResult{Rule: rule}
	if err := d.test(ctx, res); err != nil {
		return nil, compiler.AsCompileError(err)
	}
	res.Elapsed = time.Since(start)

	op := rule.Op.String()
	d.metrics.RuleCompiled(op, res.Elapsed, rule.Automaton.NumStates())
	if res.Positive != nil && !res.Positive.Passed {
		d.metrics.ExampleMismatch("positive")
	}
	if res.Negative != nil && !res.Negative.Passed {
		d.metrics.ExampleMismatch("negative")
	}
	d.logger.Debug("rule compiled",
		"rule", name,
		"line", rule.FirstLine,
		"states", rule.Automaton.NumStates(),
		"elapsed", res.Elapsed,
	)
	return res, nil
}

// engine returns an engine bound to ctx and the driver's state budget.
func (d *Driver) engine(ctx context.Context) *fst.Engine {
	eng := d.cc.Engine().WithContext(ctx)
	if d.maxStates > 0 {
		eng = eng.WithLimit(d.maxStates)
	}
	return eng
}
