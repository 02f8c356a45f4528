package fst

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/twolc/internal/ir"
)

func newTestEngine(t *testing.T, opts ...Option) (*Engine, func(string) Label) {
	t.Helper()
	e := NewEngine(NewSymbolTable(), opts...)
	id := func(name string) Label {
		return Identity(e.Symbols().Intern(name))
	}
	return e, id
}

func pair(e *Engine, in, out string) Label {
	return Label{In: e.Symbols().Intern(in), Out: e.Symbols().Intern(out)}
}

func TestSymbolTable_InternIsStable(t *testing.T) {
	syms := NewSymbolTable()
	a := syms.Intern("a")
	b := syms.Intern("b")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, syms.Intern("a"))
	assert.Equal(t, "a", syms.Name(a))
	assert.Equal(t, 3, syms.Len())

	_, ok := syms.Lookup("c")
	assert.False(t, ok)
	assert.Equal(t, "#99", syms.Name(99))
}

func TestSymbolTable_EncodeDecode(t *testing.T) {
	syms := NewSymbolTable()
	l := Label{In: syms.Intern("a"), Out: syms.Intern("b")}
	enc := syms.EncodeLabel(l)
	assert.Equal(t, "a^b", syms.Name(enc))
	assert.Equal(t, enc, syms.EncodeLabel(l))

	dec, ok := syms.DecodeSymbol(enc)
	require.True(t, ok)
	assert.Equal(t, l, dec)

	_, ok = syms.DecodeSymbol(l.In)
	assert.False(t, ok)
	assert.Equal(t, Epsilon, syms.EncodeLabel(Label{}))
}

func TestBasicLanguages(t *testing.T) {
	e, id := newTestEngine(t)
	a, b := id("a"), id("b")

	assert.True(t, e.IsEmpty(e.Empty()))
	assert.True(t, e.Accepts(e.EpsilonAutomaton(), nil))
	assert.False(t, e.Accepts(e.EpsilonAutomaton(), []Label{a}))

	ab := e.Path([]Label{a, b})
	assert.True(t, e.Accepts(ab, []Label{a, b}))
	assert.False(t, e.Accepts(ab, []Label{a}))
	assert.False(t, e.Accepts(ab, []Label{b, a}))

	either := e.Labels(a, b)
	assert.True(t, e.Accepts(either, []Label{a}))
	assert.True(t, e.Accepts(either, []Label{b}))
	assert.False(t, e.Accepts(either, nil))

	withEps := e.Labels(a, Label{})
	assert.True(t, e.Accepts(withEps, nil))
}

func TestRegularOperations(t *testing.T) {
	e, id := newTestEngine(t)
	a, b := id("a"), id("b")
	A, B := e.Labels(a), e.Labels(b)

	tests := []struct {
		name   string
		fsa    *Automaton
		accept [][]Label
		reject [][]Label
	}{
		{
			name:   "union",
			fsa:    e.Union(A, B),
			accept: [][]Label{{a}, {b}},
			reject: [][]Label{nil, {a, b}},
		},
		{
			name:   "concat",
			fsa:    e.Concat(A, B, A),
			accept: [][]Label{{a, b, a}},
			reject: [][]Label{{a, b}, {a, a, a}},
		},
		{
			name:   "star",
			fsa:    e.Star(e.Concat(A, B)),
			accept: [][]Label{nil, {a, b}, {a, b, a, b}},
			reject: [][]Label{{a}, {b, a}},
		},
		{
			name:   "plus",
			fsa:    e.Plus(A),
			accept: [][]Label{{a}, {a, a, a}},
			reject: [][]Label{nil, {b}},
		},
		{
			name:   "optional",
			fsa:    e.Optional(B),
			accept: [][]Label{nil, {b}},
			reject: [][]Label{{b, b}},
		},
		{
			name:   "intersect",
			fsa:    e.Intersect(e.Star(e.Union(A, B)), e.Concat(e.Star(A), B)),
			accept: [][]Label{{b}, {a, a, b}},
			reject: [][]Label{{b, a}, {a}},
		},
		{
			name:   "difference",
			fsa:    e.Difference(e.Star(A), e.Path([]Label{a, a})),
			accept: [][]Label{nil, {a}, {a, a, a}},
			reject: [][]Label{{a, a}},
		},
		{
			name:   "empty union",
			fsa:    e.Union(),
			reject: [][]Label{nil, {a}},
		},
		{
			name:   "empty concat",
			fsa:    e.Concat(),
			accept: [][]Label{nil},
			reject: [][]Label{{a}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, s := range tt.accept {
				assert.True(t, e.Accepts(tt.fsa, s), "should accept %v", s)
			}
			for _, s := range tt.reject {
				assert.False(t, e.Accepts(tt.fsa, s), "should reject %v", s)
			}
			// the minimal form accepts the same language
			m := e.Minimize(tt.fsa)
			assert.True(t, e.Equivalent(tt.fsa, m))
			assert.True(t, m.IsDeterministic())
		})
	}
}

func TestMinimize_CollapsesEquivalentStates(t *testing.T) {
	e, id := newTestEngine(t)
	A := e.Labels(id("a"))
	redundant := e.Union(e.Star(A), e.Plus(A), e.Concat(A, e.Star(A)))
	m := e.Minimize(redundant)
	assert.Equal(t, 1, m.NumStates())
	assert.Equal(t, 1, m.NumArcs())
	assert.True(t, e.Equivalent(m, e.Star(A)))
}

func TestEquivalent(t *testing.T) {
	e, id := newTestEngine(t)
	A, B := e.Labels(id("a")), e.Labels(id("b"))

	assert.True(t, e.Equivalent(e.Star(e.Union(A, B)), e.Star(e.Concat(e.Star(A), e.Star(B)))))
	assert.False(t, e.Equivalent(e.Star(A), e.Plus(A)))
	assert.True(t, e.Equivalent(e.Empty(), e.Intersect(A, B)))
}

func TestComposeAndProjections(t *testing.T) {
	e, id := newTestEngine(t)
	a, c := id("a"), id("c")
	ab := pair(e, "a", "b")
	bc := pair(e, "b", "c")

	first := e.Star(e.Labels(ab))
	second := e.Star(e.Labels(bc))
	composed := e.Compose(first, second)

	ac := Label{In: a.In, Out: c.Out}
	assert.True(t, e.Accepts(composed, []Label{ac, ac}))
	assert.False(t, e.Accepts(composed, []Label{ab}))

	assert.True(t, e.Equivalent(e.ProjectInput(composed), e.Star(e.Labels(a))))
	assert.True(t, e.Equivalent(e.ProjectOutput(composed), e.Star(e.Labels(c))))
}

func TestCrossProduct(t *testing.T) {
	e, id := newTestEngine(t)
	a, b := id("a"), id("b")

	x := e.CrossProduct(e.Path([]Label{a, a}), e.Path([]Label{b, b}))
	ab := Label{In: a.In, Out: b.Out}
	assert.True(t, e.Accepts(x, []Label{ab, ab}))

	// strings of different length do not pair up
	y := e.CrossProduct(e.Path([]Label{a}), e.Path([]Label{b, b}))
	assert.True(t, e.IsEmpty(y))
}

func TestSubstitute(t *testing.T) {
	e, id := newTestEngine(t)
	a, z := id("a"), id("z")

	fsa := e.Path([]Label{z, a, z})
	erased := e.Substitute(fsa, z.In, Epsilon)
	assert.True(t, e.Accepts(erased, []Label{a}))
	assert.False(t, e.Accepts(erased, []Label{z, a, z}))
}

func TestEncodeDecode(t *testing.T) {
	e, _ := newTestEngine(t)
	ab := pair(e, "a", "b")
	cc := pair(e, "c", "c")

	fsa := e.Path([]Label{ab, cc})
	enc := e.Encode(fsa)
	for _, l := range enc.Labels() {
		assert.Equal(t, l.In, l.Out, "encoded automata are acceptors")
	}
	assert.True(t, e.Equivalent(fsa, e.Decode(enc)))
}

func TestPaths_ShortestFirst(t *testing.T) {
	e, id := newTestEngine(t)
	a, b := id("a"), id("b")

	fsa := e.Union(e.Path([]Label{b, b, b}), e.Path([]Label{a}), e.Path([]Label{b, a}))
	paths := e.Paths(fsa, 10)
	require.Len(t, paths, 3)
	assert.Equal(t, []Label{a}, paths[0])
	assert.Equal(t, []Label{b, a}, paths[1])
	assert.Equal(t, []Label{b, b, b}, paths[2])

	assert.Len(t, e.Paths(e.Star(e.Labels(a)), 4), 4)
	assert.Empty(t, e.Paths(e.Empty(), 4))
	assert.Nil(t, e.Paths(fsa, 0))
}

func TestSnapshot_RoundTrip(t *testing.T) {
	e, id := newTestEngine(t)
	fsa := e.Minimize(e.Star(e.Union(e.Labels(id("a")), e.Labels(pair(e, "b", "c")))))

	snap := e.Snapshot(fsa)
	assert.Equal(t, fsa.NumStates(), snap.States)

	other := NewEngine(NewSymbolTable())
	back, err := other.FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, snap, other.Snapshot(back))
}

func TestFromSnapshot_Invalid(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.FromSnapshot(ir.Automaton{})
	assert.Error(t, err)

	_, err = e.FromSnapshot(ir.Automaton{States: 1, Start: 2})
	assert.Error(t, err)

	_, err = e.FromSnapshot(ir.Automaton{States: 1, Arcs: []ir.Arc{{From: 0, To: 5, In: "a", Out: "a"}}})
	assert.Error(t, err)
}

func TestLimit_PanicsAndCatch(t *testing.T) {
	e, id := newTestEngine(t, WithMaxStates(4))
	a := id("a")

	run := func() (err error) {
		defer Catch(&err)
		e.Path([]Label{a, a, a, a, a, a})
		long := e.Concat(e.Labels(a), e.Labels(a), e.Labels(a), e.Labels(a), e.Labels(a))
		e.Determinize(long)
		return nil
	}
	err := run()
	require.Error(t, err)
	assert.True(t, IsLimitError(err))

	var le *LimitError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, 4, le.Limit)
}

func TestCatch_RepanicsForeignValues(t *testing.T) {
	assert.Panics(t, func() {
		var err error
		defer Catch(&err)
		panic("boom")
	})
}

func TestCanceledContext(t *testing.T) {
	e, id := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ce := e.WithContext(ctx)

	// a chain long enough for the guard to look at the context
	labels := make([]Label, 3000)
	for i := range labels {
		labels[i] = id("a")
	}
	long := ce.Star(ce.Path(labels))

	run := func() (err error) {
		defer Catch(&err)
		ce.Determinize(ce.Union(long, long))
		return nil
	}
	err := run()
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
