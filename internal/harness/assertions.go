package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/twolc/internal/alphabet"
	"github.com/roach88/twolc/internal/compiler"
	"github.com/roach88/twolc/internal/driver"
	"github.com/roach88/twolc/internal/fst"
)

// AssertionError is a failed expectation with enough context to debug it.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
	Context  []string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Context) > 0 {
		fmt.Fprintf(&buf, "\nCompile errors:\n")
		for i, line := range e.Context {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, line)
		}
	}
	return buf.String()
}

// parsePath turns a space-separated list of pair symbols into labels.
// Pairs outside the alphabet are reported, since no rule can accept them.
func parsePath(alpha *alphabet.Alphabet, s string) ([]fst.Label, error) {
	fields := strings.Fields(s)
	pairs := make([]alphabet.Pair, 0, len(fields))
	for _, f := range fields {
		p, err := alphabet.ParsePairSymbol(f)
		if err != nil {
			return nil, err
		}
		if !alpha.HasPair(p) {
			return nil, fmt.Errorf("pair %s is not in the alphabet", p)
		}
		pairs = append(pairs, p)
	}
	return alpha.Labels(pairs), nil
}

// assertStrings checks accept and reject strings against the rule set.
// An accepted string must pass every rule; a rejected one must fail at
// least one.
func assertStrings(result *Result, drv *driver.Driver, rules []*fst.Automaton, s *Scenario) {
	alpha := drv.Alphabet()
	eng := drv.Engine()

	accepted := func(labels []fst.Label) (bool, string) {
		for _, r := range rules {
			if !eng.Accepts(r, labels) {
				return false, r.Name()
			}
		}
		return true, ""
	}

	for _, str := range s.Accept {
		labels, err := parsePath(alpha, str)
		if err != nil {
			result.AddError(fmt.Sprintf("accept %q: %v", str, err))
			continue
		}
		if ok, by := accepted(labels); !ok {
			result.AddError((&AssertionError{
				Type:     "accept",
				Expected: fmt.Sprintf("%q accepted by all rules", str),
				Actual:   fmt.Sprintf("rejected by %s", by),
			}).Error())
		}
	}

	for _, str := range s.Reject {
		labels, err := parsePath(alpha, str)
		if err != nil {
			// Unknown pairs are rejected by construction.
			continue
		}
		if ok, _ := accepted(labels); ok {
			result.AddError((&AssertionError{
				Type:     "reject",
				Expected: fmt.Sprintf("%q rejected by some rule", str),
				Actual:   "accepted by all rules",
			}).Error())
		}
	}
}

// assertErrors checks compile errors against the expected list, in order.
// With no expectations, any compile error fails the scenario.
func assertErrors(result *Result, rep *driver.Report, expected []ExpectedError) {
	context := describe(rep)

	if len(expected) != len(rep.Errors) {
		result.AddError((&AssertionError{
			Type:     "expect_errors",
			Expected: fmt.Sprintf("%d compile error(s)", len(expected)),
			Actual:   fmt.Sprintf("%d compile error(s)", len(rep.Errors)),
			Context:  context,
		}).Error())
		return
	}

	for i, want := range expected {
		got := rep.Errors[i]
		// Validated when the scenario was parsed.
		kind, _ := compiler.ParseErrorKind(want.Kind)
		if got.Kind != kind || got.FirstLine != want.Line {
			result.AddError((&AssertionError{
				Type:     "expect_errors",
				Expected: fmt.Sprintf("%s at line %d", kind, want.Line),
				Actual:   fmt.Sprintf("%s at line %d", got.Kind, got.FirstLine),
				Context:  context,
			}).Error())
		}
	}
}

// assertList compares check output with the expected strings, ignoring
// order.
func assertList(result *Result, name string, expected, actual []string) {
	want := slices.Clone(expected)
	got := slices.Clone(actual)
	slices.Sort(want)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		result.AddError((&AssertionError{
			Type:     "expect_" + name,
			Expected: fmt.Sprintf("%v", want),
			Actual:   fmt.Sprintf("%v", got),
		}).Error())
	}
}

// compile error summaries, for assertion messages
func describe(rep *driver.Report) []string {
	out := make([]string, len(rep.Errors))
	for i, e := range rep.Errors {
		out[i] = e.Error()
	}
	return out
}
