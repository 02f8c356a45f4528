package fst

import "sort"

// maxFrontier caps the breadth-first search in Paths.
const maxFrontier = 1 << 14

// Paths returns up to limit label strings accepted by a, shortest first.
// Ties are ordered by the names of the labels so output is stable.
func (e *Engine) Paths(a *Automaton, limit int) [][]Label {
	if limit <= 0 {
		return nil
	}
	d := e.Minimize(a)

	order := make([][]Arc, len(d.states))
	for s, st := range d.states {
		arcs := make([]Arc, len(st.Arcs))
		copy(arcs, st.Arcs)
		sort.SliceStable(arcs, func(i, j int) bool {
			return e.labelName(arcs[i].Label) < e.labelName(arcs[j].Label)
		})
		order[s] = arcs
	}

	type item struct {
		state int
		path  []Label
	}
	var out [][]Label
	frontier := []item{{state: d.start}}
	for len(frontier) > 0 && len(out) < limit {
		var next []item
		for _, it := range frontier {
			if d.states[it.state].Final {
				out = append(out, it.path)
				if len(out) == limit {
					return out
				}
			}
			for _, arc := range order[it.state] {
				if len(next) >= maxFrontier {
					break
				}
				p := make([]Label, len(it.path)+1)
				copy(p, it.path)
				p[len(it.path)] = arc.Label
				next = append(next, item{state: arc.To, path: p})
			}
		}
		frontier = next
	}
	return out
}

func (e *Engine) labelName(l Label) string {
	return e.syms.Name(l.In) + "\x00" + e.syms.Name(l.Out)
}
