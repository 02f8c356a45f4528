package alphabet

import (
	"errors"
	"sort"

	"github.com/roach88/twolc/internal/fst"
)

// ErrNoExamples is returned when an alphabet is built from an example set
// with no usable examples.
var ErrNoExamples = errors.New("no usable examples")

// Alphabet is the set of legal pairs together with the examples they were
// collected from. It is read-only once built and safe for concurrent use.
type Alphabet struct {
	eng      *fst.Engine
	pairs    []Pair
	pairSet  map[Pair]bool
	inputs   map[string]bool
	outputs  map[string]bool
	byInput  map[string][]Pair
	byOutput map[string][]Pair

	examples    []Example
	examplesFSA *fst.Automaton
	pi          *fst.Automaton
}

// New builds the alphabet of set. Every symbol, reserved symbol and
// encoded pair is interned up front, in sorted order, so that symbol ids
// do not depend on the order in which rules are later compiled.
func New(eng *fst.Engine, set *ExampleSet) (*Alphabet, error) {
	if set == nil || len(set.Examples) == 0 {
		return nil, ErrNoExamples
	}

	a := &Alphabet{
		eng:      eng,
		pairSet:  make(map[Pair]bool),
		inputs:   make(map[string]bool),
		outputs:  make(map[string]bool),
		byInput:  make(map[string][]Pair),
		byOutput: make(map[string][]Pair),
		examples: set.Examples,
	}
	for _, ex := range set.Examples {
		for _, p := range ex.Pairs {
			if a.pairSet[p] {
				continue
			}
			a.pairSet[p] = true
			a.pairs = append(a.pairs, p)
			a.inputs[p.In] = true
			a.outputs[p.Out] = true
		}
	}
	sort.Slice(a.pairs, func(i, j int) bool {
		if a.pairs[i].In != a.pairs[j].In {
			return a.pairs[i].In < a.pairs[j].In
		}
		return a.pairs[i].Out < a.pairs[j].Out
	})
	for _, p := range a.pairs {
		a.byInput[p.In] = append(a.byInput[p.In], p)
		a.byOutput[p.Out] = append(a.byOutput[p.Out], p)
	}

	syms := eng.Symbols()
	for _, s := range sortedKeys(a.inputs, a.outputs) {
		syms.Intern(s)
	}
	for _, s := range []string{BeginSymbol, EndSymbol, ZeroSymbol, DiamondSymbol} {
		syms.Intern(s)
	}
	labels := make([]fst.Label, len(a.pairs))
	for i, p := range a.pairs {
		labels[i] = a.Label(p)
		syms.EncodeLabel(labels[i])
	}

	a.pi = eng.Labels(labels...).WithName("PI")

	paths := make([]*fst.Automaton, len(set.Examples))
	for i, ex := range set.Examples {
		paths[i] = eng.Path(a.Labels(ex.Pairs))
	}
	a.examplesFSA = eng.Minimize(eng.Union(paths...)).WithName(set.Source)
	return a, nil
}

func sortedKeys(sets ...map[string]bool) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range sets {
		for k := range m {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Engine returns the engine whose symbol table the alphabet populated.
func (a *Alphabet) Engine() *fst.Engine {
	return a.eng
}

// Pairs returns the legal pairs sorted by input then output symbol.
func (a *Alphabet) Pairs() []Pair {
	out := make([]Pair, len(a.pairs))
	copy(out, a.pairs)
	return out
}

// PairSymbols returns the legal pairs as pair symbols.
func (a *Alphabet) PairSymbols() []string {
	out := make([]string, len(a.pairs))
	for i, p := range a.pairs {
		out[i] = p.String()
	}
	return out
}

// HasPair reports whether p is a legal pair.
func (a *Alphabet) HasPair(p Pair) bool {
	return a.pairSet[p]
}

// HasInput reports whether s is an input symbol.
func (a *Alphabet) HasInput(s string) bool {
	return a.inputs[s]
}

// HasOutput reports whether s is an output symbol.
func (a *Alphabet) HasOutput(s string) bool {
	return a.outputs[s]
}

// PairsWithInput returns the legal pairs whose input side is s.
func (a *Alphabet) PairsWithInput(s string) []Pair {
	return a.byInput[s]
}

// PairsWithOutput returns the legal pairs whose output side is s.
func (a *Alphabet) PairsWithOutput(s string) []Pair {
	return a.byOutput[s]
}

// Label converts p to an engine label.
func (a *Alphabet) Label(p Pair) fst.Label {
	syms := a.eng.Symbols()
	return fst.Label{In: syms.Intern(p.In), Out: syms.Intern(p.Out)}
}

// Labels converts a pair string to engine labels.
func (a *Alphabet) Labels(pairs []Pair) []fst.Label {
	out := make([]fst.Label, len(pairs))
	for i, p := range pairs {
		out[i] = a.Label(p)
	}
	return out
}

// Pair converts an engine label back to a pair.
func (a *Alphabet) Pair(l fst.Label) Pair {
	syms := a.eng.Symbols()
	return Pair{In: syms.Name(l.In), Out: syms.Name(l.Out)}
}

// FormatPath renders an accepted label string as pair symbols.
func (a *Alphabet) FormatPath(labels []fst.Label) string {
	pairs := make([]Pair, len(labels))
	for i, l := range labels {
		pairs[i] = a.Pair(l)
	}
	return FormatPairs(pairs)
}

// PI returns the automaton accepting any single legal pair.
func (a *Alphabet) PI() *fst.Automaton {
	return a.pi
}

// Examples returns the automaton accepting exactly the examples.
func (a *Alphabet) Examples() *fst.Automaton {
	return a.examplesFSA
}

// ExampleList returns the examples in file order.
func (a *Alphabet) ExampleList() []Example {
	return a.examples
}
