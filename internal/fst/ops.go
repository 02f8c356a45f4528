package fst

// Union returns the union of the arguments. No arguments yield Empty.
func (e *Engine) Union(as ...*Automaton) *Automaton {
	if len(as) == 0 {
		return e.Empty()
	}
	var b builder
	start := b.add(false)
	for _, a := range as {
		off := b.copyFrom(a)
		b.arc(start, Label{}, a.start+off)
		e.guard("union", len(b.states))
	}
	return b.build(start)
}

// Concat returns the concatenation of the arguments in order.
// No arguments yield the epsilon automaton.
func (e *Engine) Concat(as ...*Automaton) *Automaton {
	if len(as) == 0 {
		return e.EpsilonAutomaton()
	}
	var b builder
	off := b.copyFrom(as[0])
	start := as[0].start + off
	finals := finalStates(as[0], off)
	for _, a := range as[1:] {
		off = b.copyFrom(a)
		for _, f := range finals {
			b.states[f].Final = false
			b.arc(f, Label{}, a.start+off)
		}
		finals = finalStates(a, off)
		e.guard("concat", len(b.states))
	}
	return b.build(start)
}

func finalStates(a *Automaton, off int) []int {
	var out []int
	for i, st := range a.states {
		if st.Final {
			out = append(out, i+off)
		}
	}
	return out
}

// Star returns the Kleene closure of a.
func (e *Engine) Star(a *Automaton) *Automaton {
	var b builder
	start := b.add(true)
	off := b.copyFrom(a)
	b.arc(start, Label{}, a.start+off)
	for _, f := range finalStates(a, off) {
		b.arc(f, Label{}, start)
	}
	return b.build(start)
}

// Plus returns a a*.
func (e *Engine) Plus(a *Automaton) *Automaton {
	return e.Concat(a, e.Star(a))
}

// Optional returns a | epsilon.
func (e *Engine) Optional(a *Automaton) *Automaton {
	return e.Union(a, e.EpsilonAutomaton())
}

// ProjectInput maps every label in:out to in:in.
func (e *Engine) ProjectInput(a *Automaton) *Automaton {
	return e.relabel(a, func(l Label) Label { return Identity(l.In) })
}

// ProjectOutput maps every label in:out to out:out.
func (e *Engine) ProjectOutput(a *Automaton) *Automaton {
	return e.relabel(a, func(l Label) Label { return Identity(l.Out) })
}

// Substitute replaces the symbol from by to on both sides of every label.
// Substituting by Epsilon erases the symbol.
func (e *Engine) Substitute(a *Automaton, from, to Symbol) *Automaton {
	return e.relabel(a, func(l Label) Label {
		if l.In == from {
			l.In = to
		}
		if l.Out == from {
			l.Out = to
		}
		return l
	})
}

func (e *Engine) relabel(a *Automaton, f func(Label) Label) *Automaton {
	var b builder
	b.copyFrom(a)
	for i := range b.states {
		for j := range b.states[i].Arcs {
			b.states[i].Arcs[j].Label = f(b.states[i].Arcs[j].Label)
		}
	}
	return b.build(a.start)
}
