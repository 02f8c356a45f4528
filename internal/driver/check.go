package driver

import (
	"context"
	"fmt"

	"github.com/roach88/twolc/internal/fst"
	"github.com/roach88/twolc/internal/ir"
)

// CheckResult is the outcome of running a whole rule set against the
// examples.
type CheckResult struct {
	// Lost holds the examples rejected by at least one rule.
	Lost *fst.Automaton
	// Wrong holds strings with an example's input side that every rule
	// accepts but that are not examples.
	Wrong *fst.Automaton

	Report ir.CheckReport
}

// Check intersects all rules with the inputs of the examples and compares
// the result with the examples themselves.
func (d *Driver) Check(ctx context.Context, rules []*fst.Automaton) (res *CheckResult, err error) {
	defer fst.Catch(&err)

	eng := d.engine(ctx)
	examples := d.alpha.Examples()

	result := eng.Minimize(eng.Compose(d.examplesIn, d.cc.PIStar()))
	for i, r := range rules {
		result = eng.Minimize(eng.Intersect(result, r))
		d.logger.Debug("rule applied", "ordinal", i, "states", result.NumStates())
	}

	res = &CheckResult{
		Lost:  eng.Minimize(eng.Difference(examples, result)),
		Wrong: eng.Minimize(eng.Difference(result, examples)),
	}
	res.Report = ir.CheckReport{
		Rules:    len(rules),
		Examples: len(d.alpha.ExampleList()),
		Lost:     d.paths(eng, res.Lost),
		Wrong:    d.paths(eng, res.Wrong),
	}
	d.logger.Info("rule set checked",
		"rules", len(rules),
		"lost", len(res.Report.Lost),
		"wrong", len(res.Report.Wrong),
	)
	return res, nil
}

// LoadBundle rebuilds the rule automata of a bundle on the driver's
// engine. The bundle must have been compiled against the same alphabet.
func (d *Driver) LoadBundle(b *ir.RuleBundle) ([]*fst.Automaton, error) {
	ah, err := ir.AlphabetHash(d.alpha.PairSymbols())
	if err != nil {
		return nil, err
	}
	if ah != b.AlphabetHash {
		return nil, fmt.Errorf("bundle %s was compiled against a different alphabet", b.Source)
	}

	eng := d.Engine()
	out := make([]*fst.Automaton, len(b.Rules))
	for i, rec := range b.Rules {
		a, err := eng.FromSnapshot(rec.Automaton)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, rec.Name, err)
		}
		out[i] = a.WithName(rec.Name)
	}
	return out, nil
}
