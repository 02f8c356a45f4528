package driver

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/roach88/twolc/internal/compiler"
	"github.com/roach88/twolc/internal/fst"
	"github.com/roach88/twolc/internal/ir"
)

// Diagnostic lines written after each rule.
const (
	MsgPositiveAccepted = "All positive examples accepted"
	MsgPositiveRejected = "** Some positive examples were rejected:"
	MsgNegativeRejected = "All negative examples rejected"
	MsgNegativeAccepted = "** Some negative examples accepted:"
)

// RuleResult is a compiled rule with its test outcomes. Positive and
// Negative are nil when the test was not run.
type RuleResult struct {
	Rule     *compiler.Rule
	Positive *TestResult
	Negative *TestResult
	Elapsed  time.Duration
}

// Lines returns the diagnostic lines printed under the rule.
func (r *RuleResult) Lines() []string {
	var out []string
	if p := r.Positive; p != nil {
		if p.Passed {
			out = append(out, MsgPositiveAccepted)
		} else {
			out = append(out, MsgPositiveRejected)
			out = append(out, p.Failures...)
		}
	}
	if n := r.Negative; n != nil {
		if n.Passed {
			out = append(out, MsgNegativeRejected)
		} else {
			out = append(out, MsgNegativeAccepted)
			out = append(out, n.Failures...)
		}
	}
	return out
}

// WarningKind says which example test failed.
type WarningKind string

const (
	LostPositives     WarningKind = "lost_positives"
	AcceptedNegatives WarningKind = "accepted_negatives"
)

// Warning is an ExampleMismatch: the rule compiled but disagrees with the
// examples. It does not stop the rule from being written.
type Warning struct {
	Kind      WarningKind
	Rule      string
	FirstLine int
	LastLine  int
	Examples  []string
}

func (w Warning) Error() string {
	return fmt.Sprintf("line %d: example mismatch (%s): %s", w.FirstLine, w.Kind, w.Rule)
}

// Report is the outcome of compiling one rule file. Rules and Errors are
// each in file order.
type Report struct {
	Source      string
	Thorough    int
	Statements  int
	Definitions int
	Rules       []*RuleResult
	Errors      []*compiler.CompileError
}

// OK reports whether every statement compiled.
func (r *Report) OK() bool {
	return len(r.Errors) == 0
}

// Warnings lists the example mismatches of all rules.
func (r *Report) Warnings() []Warning {
	var out []Warning
	for _, res := range r.Rules {
		rule := res.Rule
		if res.Positive != nil && !res.Positive.Passed {
			out = append(out, Warning{
				Kind:      LostPositives,
				Rule:      rule.Name,
				FirstLine: rule.FirstLine,
				LastLine:  rule.LastLine,
				Examples:  res.Positive.Failures,
			})
		}
		if res.Negative != nil && !res.Negative.Passed {
			out = append(out, Warning{
				Kind:      AcceptedNegatives,
				Rule:      rule.Name,
				FirstLine: rule.FirstLine,
				LastLine:  rule.LastLine,
				Examples:  res.Negative.Failures,
			})
		}
	}
	return out
}

// Automata returns the rule automata in file order.
func (r *Report) Automata() []*fst.Automaton {
	out := make([]*fst.Automaton, len(r.Rules))
	for i, res := range r.Rules {
		out[i] = res.Rule.Automaton
	}
	return out
}

// WriteText writes the report the way the compiler prints it: each rule
// followed by its test results, then all errors.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	for _, res := range r.Rules {
		b.WriteString("\n")
		b.WriteString(res.Rule.Name)
		b.WriteString("\n")
		for _, line := range res.Lines() {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	if len(r.Errors) > 0 {
		fmt.Fprintf(&b, "\n%d statement(s) failed:\n", len(r.Errors))
		for _, e := range r.Errors {
			b.WriteString(e.Error())
			b.WriteString("\n")
			if e.Statement != "" {
				fmt.Fprintf(&b, "    %s\n", e.Statement)
			}
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func testOutcome(t *TestResult) string {
	switch {
	case t == nil:
		return ir.TestSkipped
	case t.Passed:
		return ir.TestPassed
	default:
		return ir.TestFailed
	}
}

// IR converts the report to its serializable form.
func (r *Report) IR() ir.CompileReport {
	out := ir.CompileReport{
		Source:      r.Source,
		Thorough:    r.Thorough,
		Statements:  r.Statements,
		Definitions: r.Definitions,
		Rules:       []ir.RuleSummary{},
		Diagnostics: []ir.Diagnostic{},
	}
	for _, res := range r.Rules {
		rule := res.Rule
		out.Rules = append(out.Rules, ir.RuleSummary{
			Name:      rule.Name,
			Operator:  rule.Op.String(),
			FirstLine: rule.FirstLine,
			LastLine:  rule.LastLine,
			States:    rule.Automaton.NumStates(),
			Positive:  testOutcome(res.Positive),
			Negative:  testOutcome(res.Negative),
		})
	}
	for _, w := range r.Warnings() {
		msg := MsgPositiveRejected
		if w.Kind == AcceptedNegatives {
			msg = MsgNegativeAccepted
		}
		out.Diagnostics = append(out.Diagnostics, ir.Diagnostic{
			Severity:  ir.SeverityWarning,
			Kind:      "example mismatch",
			Statement: w.Rule,
			FirstLine: w.FirstLine,
			LastLine:  w.LastLine,
			Message:   strings.TrimSuffix(strings.TrimPrefix(msg, "** "), ":"),
			Examples:  w.Examples,
		})
	}
	for _, e := range r.Errors {
		out.Diagnostics = append(out.Diagnostics, ir.Diagnostic{
			Severity:  ir.SeverityError,
			Code:      e.Kind.Code(),
			Kind:      e.Kind.String(),
			Statement: e.Statement,
			FirstLine: e.FirstLine,
			LastLine:  e.LastLine,
			Message:   e.Message,
		})
	}
	return out
}

// Bundle converts the compiled rules into a rule bundle. Failed rules are
// not in the report, so they are never written.
func (d *Driver) Bundle(r *Report) (*ir.RuleBundle, error) {
	pairs := d.alpha.PairSymbols()
	ah, err := ir.AlphabetHash(pairs)
	if err != nil {
		return nil, err
	}
	b := &ir.RuleBundle{
		Version:      ir.BundleVersion,
		Source:       r.Source,
		Pairs:        pairs,
		AlphabetHash: ah,
		Rules:        make([]ir.RuleRecord, 0, len(r.Rules)),
	}
	eng := d.Engine()
	for i, res := range r.Rules {
		rule := res.Rule
		rec := ir.RuleRecord{
			Ordinal:   i,
			Name:      rule.Name,
			Operator:  rule.Op.String(),
			FirstLine: rule.FirstLine,
			LastLine:  rule.LastLine,
			Automaton: eng.Snapshot(rule.Automaton),
		}
		if rec.Hash, err = ir.RuleHash(rec); err != nil {
			return nil, err
		}
		b.Rules = append(b.Rules, rec)
	}
	return b, nil
}
