package fst

import "sort"

// Arc is a labelled transition.
type Arc struct {
	Label Label
	To    int
}

// State is one automaton state.
type State struct {
	Final bool
	Arcs  []Arc
}

// Automaton is an immutable same-length pair transducer.
// Acceptors are the special case where every label has In == Out.
type Automaton struct {
	start  int
	states []State
	name   string

	// deterministic and epsilon-free
	det bool
	// minimal; implies det
	minimal bool
}

// NumStates returns the number of states.
func (a *Automaton) NumStates() int {
	return len(a.states)
}

// NumArcs returns the number of arcs.
func (a *Automaton) NumArcs() int {
	n := 0
	for _, st := range a.states {
		n += len(st.Arcs)
	}
	return n
}

// Start returns the initial state.
func (a *Automaton) Start() int {
	return a.start
}

// IsFinal reports whether state s is final.
func (a *Automaton) IsFinal(s int) bool {
	return a.states[s].Final
}

// Arcs returns a copy of the arcs leaving state s.
func (a *Automaton) Arcs(s int) []Arc {
	out := make([]Arc, len(a.states[s].Arcs))
	copy(out, a.states[s].Arcs)
	return out
}

// Name returns the diagnostic name of the automaton.
func (a *Automaton) Name() string {
	return a.name
}

// WithName returns the same automaton under another name.
// The state table is shared; automata are never mutated.
func (a *Automaton) WithName(name string) *Automaton {
	b := *a
	b.name = name
	return &b
}

// Labels returns the distinct labels used on arcs, sorted.
func (a *Automaton) Labels() []Label {
	seen := make(map[Label]bool)
	var out []Label
	for _, st := range a.states {
		for _, arc := range st.Arcs {
			if !seen[arc.Label] {
				seen[arc.Label] = true
				out = append(out, arc.Label)
			}
		}
	}
	sortLabels(out)
	return out
}

// IsDeterministic reports whether the automaton is known to be
// deterministic and epsilon-free.
func (a *Automaton) IsDeterministic() bool {
	return a.det
}

func sortLabels(ls []Label) {
	sort.Slice(ls, func(i, j int) bool { return ls[i].less(ls[j]) })
}

// builder accumulates states for a new automaton.
type builder struct {
	states []State
}

func (b *builder) add(final bool) int {
	b.states = append(b.states, State{Final: final})
	return len(b.states) - 1
}

func (b *builder) arc(from int, l Label, to int) {
	b.states[from].Arcs = append(b.states[from].Arcs, Arc{Label: l, To: to})
}

// copyFrom appends the states of a and returns the offset of its state 0.
func (b *builder) copyFrom(a *Automaton) int {
	off := len(b.states)
	for _, st := range a.states {
		arcs := make([]Arc, len(st.Arcs))
		for i, arc := range st.Arcs {
			arcs[i] = Arc{Label: arc.Label, To: arc.To + off}
		}
		b.states = append(b.states, State{Final: st.Final, Arcs: arcs})
	}
	return off
}

func (b *builder) build(start int) *Automaton {
	if len(b.states) == 0 {
		b.add(false)
		start = 0
	}
	return &Automaton{start: start, states: b.states}
}
