package fst

// product builds the synchronous product of two epsilon-free automata.
// match decides whether a pair of arcs moves together and which label
// the product arc gets.
func (e *Engine) product(op string, a, b *Automaton, match func(la, lb Label) (Label, bool)) *Automaton {
	type pair struct{ p, q int }

	var bld builder
	index := make(map[pair]int)
	var queue []pair

	intern := func(k pair) int {
		if id, ok := index[k]; ok {
			return id
		}
		id := bld.add(a.states[k.p].Final && b.states[k.q].Final)
		e.guard(op, len(bld.states))
		index[k] = id
		queue = append(queue, k)
		return id
	}

	intern(pair{a.start, b.start})
	for i := 0; i < len(queue); i++ {
		k := queue[i]
		for _, ea := range a.states[k.p].Arcs {
			for _, eb := range b.states[k.q].Arcs {
				l, ok := match(ea.Label, eb.Label)
				if !ok {
					continue
				}
				to := intern(pair{ea.To, eb.To})
				bld.arc(i, l, to)
			}
		}
	}
	return trim(bld.build(0))
}

// Intersect returns the automaton accepting label strings accepted by
// both a and b.
func (e *Engine) Intersect(a, b *Automaton) *Automaton {
	a = e.RemoveEpsilons(a)
	b = e.RemoveEpsilons(b)
	return e.product("intersect", a, b, func(la, lb Label) (Label, bool) {
		return la, la == lb
	})
}

// Compose returns a followed by b: in:out arcs of a meet out:x arcs of b
// and yield in:x.
func (e *Engine) Compose(a, b *Automaton) *Automaton {
	a = e.RemoveEpsilons(a)
	b = e.RemoveEpsilons(b)
	return e.product("compose", a, b, func(la, lb Label) (Label, bool) {
		return Label{In: la.In, Out: lb.Out}, la.Out == lb.In
	})
}

// CrossProduct pairs the strings of two acceptors position by position:
// x in a and y in b of equal length give the string of labels x_i:y_i.
// Only the input side of each argument is read.
func (e *Engine) CrossProduct(a, b *Automaton) *Automaton {
	a = e.RemoveEpsilons(a)
	b = e.RemoveEpsilons(b)
	return e.product("cross product", a, b, func(la, lb Label) (Label, bool) {
		return Label{In: la.In, Out: lb.In}, true
	})
}

// Difference returns the strings of a that b does not accept.
func (e *Engine) Difference(a, b *Automaton) *Automaton {
	a = e.RemoveEpsilons(a)
	d := e.Determinize(b)
	delta := make([]map[Label]int, len(d.states))
	for s, st := range d.states {
		delta[s] = make(map[Label]int, len(st.Arcs))
		for _, arc := range st.Arcs {
			delta[s][arc.Label] = arc.To
		}
	}

	// q == -1 stands for the implicit dead state of d
	type pair struct{ p, q int }
	var bld builder
	index := make(map[pair]int)
	var queue []pair

	intern := func(k pair) int {
		if id, ok := index[k]; ok {
			return id
		}
		final := a.states[k.p].Final && (k.q < 0 || !d.states[k.q].Final)
		id := bld.add(final)
		e.guard("difference", len(bld.states))
		index[k] = id
		queue = append(queue, k)
		return id
	}

	intern(pair{a.start, d.start})
	for i := 0; i < len(queue); i++ {
		k := queue[i]
		for _, arc := range a.states[k.p].Arcs {
			q := -1
			if k.q >= 0 {
				if t, ok := delta[k.q][arc.Label]; ok {
					q = t
				}
			}
			to := intern(pair{arc.To, q})
			bld.arc(i, arc.Label, to)
		}
	}
	return trim(bld.build(0))
}

// IsEmpty reports whether a accepts nothing.
func (e *Engine) IsEmpty(a *Automaton) bool {
	seen := make([]bool, len(a.states))
	stack := []int{a.start}
	seen[a.start] = true
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if a.states[s].Final {
			return false
		}
		for _, arc := range a.states[s].Arcs {
			if !seen[arc.To] {
				seen[arc.To] = true
				stack = append(stack, arc.To)
			}
		}
	}
	return true
}

// Equivalent reports whether a and b accept the same label strings.
func (e *Engine) Equivalent(a, b *Automaton) bool {
	return e.IsEmpty(e.Difference(a, b)) && e.IsEmpty(e.Difference(b, a))
}

// Accepts reports whether a accepts the label string.
func (e *Engine) Accepts(a *Automaton, labels []Label) bool {
	n := len(a.states)
	seen := make([]bool, n)
	cur := epsilonClosure(a, a.start, nil, seen)
	for _, l := range labels {
		for _, s := range cur {
			seen[s] = false
		}
		var next []int
		for _, s := range cur {
			for _, arc := range a.states[s].Arcs {
				if arc.Label == l && !seen[arc.To] {
					next = epsilonClosure(a, arc.To, next, seen)
				}
			}
		}
		cur = next
		if len(cur) == 0 {
			return false
		}
	}
	for _, s := range cur {
		if a.states[s].Final {
			return true
		}
	}
	return false
}
