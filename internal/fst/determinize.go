package fst

import (
	"sort"
	"strconv"
	"strings"
)

// RemoveEpsilons returns an equivalent automaton without epsilon arcs,
// restricted to useful states.
func (e *Engine) RemoveEpsilons(a *Automaton) *Automaton {
	if a.det {
		return a
	}
	n := len(a.states)
	var b builder
	for i := 0; i < n; i++ {
		b.add(false)
	}
	closure := make([]int, 0, 8)
	seen := make([]bool, n)
	for s := 0; s < n; s++ {
		closure = epsilonClosure(a, s, closure[:0], seen)
		arcSeen := make(map[Arc]bool)
		for _, c := range closure {
			seen[c] = false
			if a.states[c].Final {
				b.states[s].Final = true
			}
			for _, arc := range a.states[c].Arcs {
				if arc.Label.IsEpsilon() || arcSeen[arc] {
					continue
				}
				arcSeen[arc] = true
				b.arc(s, arc.Label, arc.To)
			}
		}
	}
	return trim(b.build(a.start))
}

// epsilonClosure appends to dst every state reachable from s by epsilon
// arcs, s included. seen is scratch space and is left set for dst.
func epsilonClosure(a *Automaton, s int, dst []int, seen []bool) []int {
	stack := []int{s}
	seen[s] = true
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		dst = append(dst, cur)
		for _, arc := range a.states[cur].Arcs {
			if arc.Label.IsEpsilon() && !seen[arc.To] {
				seen[arc.To] = true
				stack = append(stack, arc.To)
			}
		}
	}
	return dst
}

// trim keeps the states that are reachable from the start and can reach
// a final state. The start state is always kept.
func trim(a *Automaton) *Automaton {
	n := len(a.states)
	reach := make([]bool, n)
	stack := []int{a.start}
	reach[a.start] = true
	rev := make([][]int, n)
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, arc := range a.states[s].Arcs {
			rev[arc.To] = append(rev[arc.To], s)
			if !reach[arc.To] {
				reach[arc.To] = true
				stack = append(stack, arc.To)
			}
		}
	}

	useful := make([]bool, n)
	for s := 0; s < n; s++ {
		if reach[s] && a.states[s].Final {
			useful[s] = true
			stack = append(stack, s)
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range rev[s] {
			if !useful[p] {
				useful[p] = true
				stack = append(stack, p)
			}
		}
	}
	useful[a.start] = true

	remap := make([]int, n)
	var b builder
	for s := 0; s < n; s++ {
		remap[s] = -1
		if useful[s] {
			remap[s] = b.add(a.states[s].Final)
		}
	}
	for s := 0; s < n; s++ {
		if remap[s] < 0 {
			continue
		}
		for _, arc := range a.states[s].Arcs {
			if remap[arc.To] >= 0 {
				b.arc(remap[s], arc.Label, remap[arc.To])
			}
		}
	}
	out := b.build(remap[a.start])
	out.name = a.name
	return out
}

// Determinize returns an equivalent deterministic, epsilon-free automaton
// by subset construction. Only reachable subsets are built, so the
// result has no dead state.
func (e *Engine) Determinize(a *Automaton) *Automaton {
	if a.det {
		return a
	}
	a = e.RemoveEpsilons(a)

	var b builder
	index := make(map[string]int)
	var queue [][]int

	intern := func(set []int) int {
		key := subsetKey(set)
		if id, ok := index[key]; ok {
			return id
		}
		final := false
		for _, s := range set {
			if a.states[s].Final {
				final = true
				break
			}
		}
		id := b.add(final)
		e.guard("determinize", len(b.states))
		index[key] = id
		queue = append(queue, set)
		return id
	}

	intern([]int{a.start})
	for i := 0; i < len(queue); i++ {
		set := queue[i]
		targets := make(map[Label][]int)
		for _, s := range set {
			for _, arc := range a.states[s].Arcs {
				targets[arc.Label] = append(targets[arc.Label], arc.To)
			}
		}
		labels := make([]Label, 0, len(targets))
		for l := range targets {
			labels = append(labels, l)
		}
		sortLabels(labels)
		for _, l := range labels {
			to := intern(normalizeSet(targets[l]))
			b.arc(i, l, to)
		}
	}

	out := b.build(0)
	out.det = true
	return out
}

func normalizeSet(set []int) []int {
	sort.Ints(set)
	out := set[:0]
	for i, s := range set {
		if i == 0 || s != set[i-1] {
			out = append(out, s)
		}
	}
	return out
}

func subsetKey(set []int) string {
	var sb strings.Builder
	for i, s := range set {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(s))
	}
	return sb.String()
}

// reverse returns an automaton for the reversed language.
func reverse(a *Automaton) *Automaton {
	var b builder
	for range a.states {
		b.add(false)
	}
	b.states[a.start].Final = true
	start := b.add(false)
	for s, st := range a.states {
		if st.Final {
			b.arc(start, Label{}, s)
		}
		for _, arc := range st.Arcs {
			b.arc(arc.To, arc.Label, s)
		}
	}
	return b.build(start)
}

// Minimize returns the minimal deterministic automaton for the language
// of a, computed by double reversal.
func (e *Engine) Minimize(a *Automaton) *Automaton {
	if a.minimal {
		return a
	}
	m := e.Determinize(reverse(e.Determinize(reverse(a))))
	m.minimal = true
	m.name = a.name
	return m
}
