package fst

import (
	"fmt"

	"github.com/roach88/twolc/internal/ir"
)

// Encode turns a transducer into an acceptor whose symbols stand for the
// original pairs ("in^out"), so that pairs can themselves be cross
// multiplied and composed.
func (e *Engine) Encode(a *Automaton) *Automaton {
	return e.relabel(a, func(l Label) Label {
		return Identity(e.syms.EncodeLabel(l))
	})
}

// Decode reverses Encode. Each side of a label is decoded separately, the
// input side contributing its input and the output side its output, so
// an encoded acceptor decodes back to the original pairs. Symbols that
// are not encodings are kept as they are.
func (e *Engine) Decode(a *Automaton) *Automaton {
	return e.relabel(a, func(l Label) Label {
		in, out := l.In, l.Out
		if d, ok := e.syms.DecodeSymbol(in); ok {
			in = d.In
		}
		if d, ok := e.syms.DecodeSymbol(out); ok {
			out = d.Out
		}
		return Label{In: in, Out: out}
	})
}

// Snapshot captures a with symbol names, independent of the symbol
// table. Epsilon is written as the empty string.
func (e *Engine) Snapshot(a *Automaton) ir.Automaton {
	snap := ir.Automaton{Start: a.start, States: len(a.states), Finals: []int{}, Arcs: []ir.Arc{}}
	for s, st := range a.states {
		if st.Final {
			snap.Finals = append(snap.Finals, s)
		}
		for _, arc := range st.Arcs {
			snap.Arcs = append(snap.Arcs, ir.Arc{
				From: s,
				To:   arc.To,
				In:   e.symName(arc.Label.In),
				Out:  e.symName(arc.Label.Out),
			})
		}
	}
	return snap
}

func (e *Engine) symName(s Symbol) string {
	if s == Epsilon {
		return ""
	}
	return e.syms.Name(s)
}

// FromSnapshot rebuilds an automaton, interning any unknown symbols.
func (e *Engine) FromSnapshot(snap ir.Automaton) (*Automaton, error) {
	if snap.States <= 0 {
		return nil, fmt.Errorf("snapshot has no states")
	}
	if snap.Start < 0 || snap.Start >= snap.States {
		return nil, fmt.Errorf("snapshot start state %d out of range", snap.Start)
	}
	var b builder
	for i := 0; i < snap.States; i++ {
		b.add(false)
	}
	for _, f := range snap.Finals {
		if f < 0 || f >= snap.States {
			return nil, fmt.Errorf("snapshot final state %d out of range", f)
		}
		b.states[f].Final = true
	}
	for _, arc := range snap.Arcs {
		if arc.From < 0 || arc.From >= snap.States || arc.To < 0 || arc.To >= snap.States {
			return nil, fmt.Errorf("snapshot arc %d->%d out of range", arc.From, arc.To)
		}
		b.arc(arc.From, Label{In: e.intern(arc.In), Out: e.intern(arc.Out)}, arc.To)
	}
	return b.build(snap.Start), nil
}

func (e *Engine) intern(name string) Symbol {
	if name == "" {
		return Epsilon
	}
	return e.syms.Intern(name)
}
