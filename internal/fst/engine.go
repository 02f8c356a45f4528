package fst

import "context"

// DefaultMaxStates bounds the size of any intermediate automaton.
const DefaultMaxStates = 1 << 20

// Engine performs automaton operations against a shared symbol table.
//
// An Engine value is cheap to copy; WithContext derives a per-task engine
// that shares the symbol table but observes its own cancellation.
type Engine struct {
	syms      *SymbolTable
	maxStates int
	ctx       context.Context
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxStates sets the state budget. Zero or negative disables it.
func WithMaxStates(n int) Option {
	return func(e *Engine) {
		e.maxStates = n
	}
}

// NewEngine creates an engine over syms.
func NewEngine(syms *SymbolTable, opts ...Option) *Engine {
	e := &Engine{
		syms:      syms,
		maxStates: DefaultMaxStates,
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WithContext returns a copy of e whose long-running operations abort
// once ctx is done.
func (e *Engine) WithContext(ctx context.Context) *Engine {
	c := *e
	c.ctx = ctx
	return &c
}

// WithLimit returns a copy of e with another state budget.
func (e *Engine) WithLimit(maxStates int) *Engine {
	c := *e
	c.maxStates = maxStates
	return &c
}

// Symbols returns the shared symbol table.
func (e *Engine) Symbols() *SymbolTable {
	return e.syms
}

// MaxStates returns the state budget.
func (e *Engine) MaxStates() int {
	return e.maxStates
}

// guard is called whenever an operation creates its n-th state.
func (e *Engine) guard(op string, n int) {
	if e.maxStates > 0 && n > e.maxStates {
		panic(&LimitError{Op: op, States: n, Limit: e.maxStates})
	}
	if n&1023 == 0 && e.ctx != nil {
		select {
		case <-e.ctx.Done():
			panic(&CanceledError{Op: op, Err: e.ctx.Err()})
		default:
		}
	}
}

// Empty returns the automaton accepting nothing.
func (e *Engine) Empty() *Automaton {
	return &Automaton{states: []State{{}}, det: true, minimal: true}
}

// EpsilonAutomaton returns the automaton accepting only the empty string.
func (e *Engine) EpsilonAutomaton() *Automaton {
	return &Automaton{states: []State{{Final: true}}, det: true, minimal: true}
}

// Labels returns the automaton accepting exactly one of the given
// one-symbol strings. An epsilon label adds the empty string.
func (e *Engine) Labels(labels ...Label) *Automaton {
	var b builder
	start := b.add(false)
	end := b.add(true)
	seen := make(map[Label]bool)
	sorted := make([]Label, 0, len(labels))
	for _, l := range labels {
		if l.IsEpsilon() {
			b.states[start].Final = true
			continue
		}
		if !seen[l] {
			seen[l] = true
			sorted = append(sorted, l)
		}
	}
	sortLabels(sorted)
	for _, l := range sorted {
		b.arc(start, l, end)
	}
	a := b.build(start)
	a.det = true
	return a
}

// Path returns the automaton accepting exactly the given label string.
func (e *Engine) Path(labels []Label) *Automaton {
	var b builder
	cur := b.add(false)
	start := cur
	for _, l := range labels {
		if l.IsEpsilon() {
			continue
		}
		next := b.add(false)
		b.arc(cur, l, next)
		cur = next
	}
	b.states[cur].Final = true
	a := b.build(start)
	a.det = true
	return a
}

// Symbol returns the one-arc acceptor for the named symbol, interning it.
func (e *Engine) Symbol(name string) *Automaton {
	return e.Labels(Identity(e.syms.Intern(name)))
}
