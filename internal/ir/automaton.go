package ir

// Automaton is a symbol-table independent automaton. States are numbered
// 0..States-1 and symbols are written by name; the empty string stands
// for epsilon.
type Automaton struct {
	Start  int   `json:"start"`
	States int   `json:"states"`
	Finals []int `json:"finals"`
	Arcs   []Arc `json:"arcs"`
}

// Arc is one transition of an Automaton.
type Arc struct {
	From int    `json:"from"`
	To   int    `json:"to"`
	In   string `json:"in"`
	Out  string `json:"out"`
}

// canonical returns the automaton as plain values for MarshalCanonical.
func (a Automaton) canonical() map[string]any {
	finals := make([]any, len(a.Finals))
	for i, f := range a.Finals {
		finals[i] = f
	}
	arcs := make([]any, len(a.Arcs))
	for i, arc := range a.Arcs {
		arcs[i] = map[string]any{
			"from": arc.From,
			"to":   arc.To,
			"in":   arc.In,
			"out":  arc.Out,
		}
	}
	return map[string]any{
		"start":  a.Start,
		"states": a.States,
		"finals": finals,
		"arcs":   arcs,
	}
}
