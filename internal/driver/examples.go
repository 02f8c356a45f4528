package driver

import (
	"context"

	"github.com/roach88/twolc/internal/fst"
)

// TestResult is the outcome of testing a rule against examples.
type TestResult struct {
	Passed bool
	// Failures lists up to MaxPaths offending examples, shortest first.
	Failures []string
}

func (d *Driver) test(ctx context.Context, res *RuleResult) (err error) {
	defer fst.Catch(&err)

	if d.thorough < 1 {
		return nil
	}
	eng := d.engine(ctx)
	rule := res.Rule

	// Positive examples: every example the selector picks must pass.
	selected := eng.Minimize(eng.Intersect(rule.Selector, d.alpha.Examples()))
	passed := eng.Minimize(eng.Intersect(selected, rule.Automaton))
	res.Positive = &TestResult{Passed: eng.Equivalent(selected, passed)}
	if !res.Positive.Passed {
		res.Positive.Failures = d.paths(eng, eng.Difference(selected, passed))
	}

	if d.thorough < 2 || !rule.Op.HasScrambler() {
		return nil
	}

	// Negative examples: scramble the correct examples, keep the
	// scrambled strings that are not examples themselves and whose input
	// side is an input of some real example. None of them may pass.
	scrambled := eng.Decode(eng.ProjectOutput(eng.Compose(d.examplesEnc, rule.Scrambler)))
	negatives := eng.Minimize(eng.Difference(eng.Minimize(scrambled), d.alpha.Examples()))
	negatives = eng.Minimize(eng.Compose(d.examplesIn, negatives))
	accepted := eng.Minimize(eng.Intersect(negatives, rule.Automaton))
	res.Negative = &TestResult{Passed: eng.IsEmpty(accepted)}
	if !res.Negative.Passed {
		res.Negative.Failures = d.paths(eng, accepted)
	}
	return nil
}

func (d *Driver) paths(eng *fst.Engine, a *fst.Automaton) []string {
	ps := eng.Paths(a, d.maxPaths)
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, d.alpha.FormatPath(p))
	}
	return out
}
