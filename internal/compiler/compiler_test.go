package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/twolc/internal/alphabet"
	"github.com/roach88/twolc/internal/fst"
	"github.com/roach88/twolc/internal/syntax"
)

// newTestCompiler builds a compiler whose alphabet is collected from the
// given example lines.
func newTestCompiler(t *testing.T, examples ...string) *Compiler {
	t.Helper()
	set, err := alphabet.ReadExamples(strings.NewReader(strings.Join(examples, "\n")))
	require.NoError(t, err)
	alpha, err := alphabet.New(fst.NewEngine(fst.NewSymbolTable()), set)
	require.NoError(t, err)
	cc, err := NewCompilationContext(alpha)
	require.NoError(t, err)
	return New(cc, NewEnv(cc))
}

func compileRule(t *testing.T, c *Compiler, text string) *Rule {
	t.Helper()
	stmt, err := syntax.ParseStatement(text, 1)
	require.NoError(t, err)
	require.Equal(t, syntax.KindRule, stmt.Kind)
	r, err := c.Rule(stmt.Rule, text)
	require.NoError(t, err)
	return r
}

func define(t *testing.T, c *Compiler, text string) {
	t.Helper()
	stmt, err := syntax.ParseStatement(text, 1)
	require.NoError(t, err)
	require.Equal(t, syntax.KindDefinition, stmt.Kind)
	require.NoError(t, c.Define(stmt.Definition))
}

func pairs(t *testing.T, s string) []alphabet.Pair {
	t.Helper()
	var out []alphabet.Pair
	for _, f := range strings.Fields(s) {
		p, err := alphabet.ParsePairSymbol(f)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func accepts(c *Compiler, a *fst.Automaton, s []alphabet.Pair) bool {
	return c.eng.Accepts(a, c.cc.alpha.Labels(s))
}

// allStrings enumerates every pair string up to maxLen.
func allStrings(ps []alphabet.Pair, maxLen int) [][]alphabet.Pair {
	out := [][]alphabet.Pair{nil}
	level := [][]alphabet.Pair{nil}
	for n := 1; n <= maxLen; n++ {
		var next [][]alphabet.Pair
		for _, s := range level {
			for _, p := range ps {
				ext := make([]alphabet.Pair, len(s)+1)
				copy(ext, s)
				ext[len(s)] = p
				next = append(next, ext)
			}
		}
		out = append(out, next...)
		level = next
	}
	return out
}

var (
	pA  = alphabet.Identity("a")
	pAB = alphabet.Pair{In: "a", Out: "b"}
	pB  = alphabet.Identity("b")
	pC  = alphabet.Identity("c")
)

func at(s []alphabet.Pair, i int) alphabet.Pair {
	if i < 0 || i >= len(s) {
		return alphabet.Pair{}
	}
	return s[i]
}

// every reports whether cond holds at every position where p occurs.
func every(s []alphabet.Pair, when func(i int) bool, cond func(i int) bool) bool {
	for i := range s {
		if when(i) && !cond(i) {
			return false
		}
	}
	return true
}

func TestGeneralizedRestriction_Exhaustive(t *testing.T) {
	c := newTestCompiler(t, "a b c", "a:b c")

	isAB := func(s []alphabet.Pair) func(int) bool {
		return func(i int) bool { return s[i] == pAB }
	}

	tests := []struct {
		rule string
		ok   func(s []alphabet.Pair) bool
	}{
		{
			rule: "a:b => _ c ;",
			ok: func(s []alphabet.Pair) bool {
				return every(s, isAB(s), func(i int) bool { return at(s, i+1) == pC })
			},
		},
		{
			rule: "a:b => c _ , _ c ;",
			ok: func(s []alphabet.Pair) bool {
				return every(s, isAB(s), func(i int) bool { return at(s, i-1) == pC || at(s, i+1) == pC })
			},
		},
		{
			rule: "a:b <= _ c ;",
			ok: func(s []alphabet.Pair) bool {
				return every(s,
					func(i int) bool { return s[i].In == "a" && at(s, i+1) == pC },
					func(i int) bool { return s[i] == pAB })
			},
		},
		{
			rule: "a:b <-- _ c ;",
			ok: func(s []alphabet.Pair) bool {
				return every(s,
					func(i int) bool { return s[i].Out == "b" && at(s, i+1) == pC },
					func(i int) bool { return s[i] == pAB })
			},
		},
		{
			rule: "a:b /<= _ c ;",
			ok: func(s []alphabet.Pair) bool {
				return every(s, isAB(s), func(i int) bool { return at(s, i+1) != pC })
			},
		},
		{
			rule: "a:b => .#. _ ;",
			ok: func(s []alphabet.Pair) bool {
				return every(s, isAB(s), func(i int) bool { return i == 0 })
			},
		},
		{
			rule: "a:b => _ .#. ;",
			ok: func(s []alphabet.Pair) bool {
				return every(s, isAB(s), func(i int) bool { return i == len(s)-1 })
			},
		},
		{
			rule: "a:b => _ :b ;",
			ok: func(s []alphabet.Pair) bool {
				return every(s, isAB(s), func(i int) bool { return at(s, i+1).Out == "b" })
			},
		},
		{
			rule: `a:b => _ \c ;`,
			ok: func(s []alphabet.Pair) bool {
				return every(s, isAB(s), func(i int) bool { return i+1 < len(s) && s[i+1] != pC })
			},
		},
		{
			rule: "c => _ a.m ;",
			ok: func(s []alphabet.Pair) bool {
				return every(s,
					func(i int) bool { return s[i] == pC },
					func(i int) bool { return at(s, i+1).In == "a" })
			},
		},
		{
			rule: "c => _ b.s ;",
			ok: func(s []alphabet.Pair) bool {
				return every(s,
					func(i int) bool { return s[i] == pC },
					func(i int) bool { return at(s, i+1).Out == "b" })
			},
		},
		{
			rule: "a:b => _ b* c ;",
			ok: func(s []alphabet.Pair) bool {
				return every(s, isAB(s), func(i int) bool {
					j := i + 1
					for j < len(s) && s[j] == pB {
						j++
					}
					return at(s, j) == pC
				})
			},
		},
	}

	strs := allStrings(c.cc.alpha.Pairs(), 6)
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			r := compileRule(t, c, tt.rule)
			for _, s := range strs {
				want := tt.ok(s)
				if got := accepts(c, r.Automaton, s); got != want {
					require.Failf(t, "wrong verdict", "%q: got %v, want %v", alphabet.FormatPairs(s), got, want)
				}
			}
		})
	}
}

func TestRightArrow_ExhaustiveLengthEight(t *testing.T) {
	c := newTestCompiler(t, "a b", "a:b b")
	r := compileRule(t, c, "a:b => _ b, b _ ;")

	for _, s := range allStrings(c.cc.alpha.Pairs(), 8) {
		want := every(s,
			func(i int) bool { return s[i] == pAB },
			func(i int) bool { return at(s, i-1) == pB || at(s, i+1) == pB })
		if got := accepts(c, r.Automaton, s); got != want {
			require.Failf(t, "wrong verdict", "%q: got %v, want %v", alphabet.FormatPairs(s), got, want)
		}
	}
}

func TestRuleAutomaton_OnlyLegalPairs(t *testing.T) {
	c := newTestCompiler(t, "a b c", "a:b c")
	r := compileRule(t, c, "a:b <=> _ c ;")

	e := c.eng
	assert.True(t, e.IsEmpty(e.Difference(r.Automaton, c.cc.piStar)))
	assert.Equal(t, "a:b <=> _ c ;", r.Automaton.Name())
}

func TestDoubleArrow_IsRightArrowAndOutputCoercion(t *testing.T) {
	c := newTestCompiler(t, "a b c", "a:b c", "c a")
	define(t, c, "X = c | b ;")

	for _, ctx := range []string{"_ c", "X _", ".#. _ X, c _ .#."} {
		t.Run(ctx, func(t *testing.T) {
			both := compileRule(t, c, "a:b <=> "+ctx+" ;")
			right := compileRule(t, c, "a:b => "+ctx+" ;")
			left := compileRule(t, c, "a:b <= "+ctx+" ;")

			e := c.eng
			assert.True(t, e.Equivalent(both.Automaton, e.Intersect(right.Automaton, left.Automaton)))
		})
	}
}

func TestRule_Idempotent(t *testing.T) {
	c := newTestCompiler(t, "a b c", "a:b c")
	r1 := compileRule(t, c, "a:b <=> c _ ;")
	r2 := compileRule(t, c, "a:b <=> c _ ;")

	assert.True(t, c.eng.Equivalent(r1.Automaton, r2.Automaton))
	assert.True(t, c.eng.Equivalent(r1.Selector, r2.Selector))
	assert.True(t, c.eng.Equivalent(r1.Scrambler, r2.Scrambler))
}

func TestScenario_AnchoredRightArrow(t *testing.T) {
	c := newTestCompiler(t, "a b", "b a", "Ø")
	define(t, c, "V = a:a | b:b ;")
	r := compileRule(t, c, "a:a => .#. _ V ;")

	assert.True(t, accepts(c, r.Automaton, pairs(t, "a:a b:b")))
	assert.False(t, accepts(c, r.Automaton, pairs(t, "b:b a:a")))
	assert.False(t, accepts(c, r.Automaton, pairs(t, "a")))
	assert.True(t, accepts(c, r.Automaton, pairs(t, "Ø b")))
}

func TestScenario_Exclusion(t *testing.T) {
	c := newTestCompiler(t, "x:y z", "x:y w", "x z")
	r := compileRule(t, c, "x:y /<= _ z:z ;")

	assert.False(t, accepts(c, r.Automaton, pairs(t, "x:y z")))
	assert.True(t, accepts(c, r.Automaton, pairs(t, "x:y w")))
	assert.True(t, accepts(c, r.Automaton, pairs(t, "x z")))
	assert.True(t, c.eng.IsEmpty(r.Scrambler))
}

func TestTrim(t *testing.T) {
	c := newTestCompiler(t, "a b c")
	alpha := c.cc.alpha
	a, b, cc := alpha.Label(pA), alpha.Label(pB), alpha.Label(pC)
	begin := fst.Identity(c.cc.begin)
	end := fst.Identity(c.cc.end)

	tests := []struct {
		name string
		in   []fst.Label
		want []fst.Label
	}{
		{name: "no boundary", in: []fst.Label{a, b}, want: []fst.Label{a, b}},
		{name: "after begin", in: []fst.Label{a, begin, b, cc}, want: []fst.Label{b, cc}},
		{name: "innermost begin", in: []fst.Label{a, begin, b, begin, cc}, want: []fst.Label{cc}},
		{name: "before end", in: []fst.Label{a, end, b}, want: []fst.Label{a}},
		{name: "first end", in: []fst.Label{a, end, b, end, cc}, want: []fst.Label{a}},
		{name: "between", in: []fst.Label{a, begin, b, end, cc}, want: []fst.Label{b}},
		{name: "boundary only", in: []fst.Label{begin}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Trim(c.eng.Path(tt.in))
			assert.True(t, c.eng.Equivalent(got, c.eng.Path(tt.want)))
		})
	}
}

func TestTrim_ContextNeverMatchesAcrossBoundary(t *testing.T) {
	c := newTestCompiler(t, "a b c", "a:b c")
	r := compileRule(t, c, "a:b => c _ ;")

	// each word alone
	assert.True(t, accepts(c, r.Automaton, pairs(t, "c a:b")))
	assert.False(t, accepts(c, r.Automaton, pairs(t, "a:b")))

	// a left context anchored at the word start must not be satisfied
	// by material further left
	anchored := compileRule(t, c, "a:b => .#. c _ ;")
	assert.True(t, accepts(c, anchored.Automaton, pairs(t, "c a:b")))
	assert.False(t, accepts(c, anchored.Automaton, pairs(t, "a c a:b")))
	assert.False(t, accepts(c, anchored.Automaton, pairs(t, "c a:b c c a:b")))
}

func TestTrim_ConcatenatedExamplesStayRejected(t *testing.T) {
	tests := []struct {
		name     string
		rule     string
		free     string // same rule without the anchor
		examples []string
	}{
		{
			name:     "left anchored",
			rule:     "a:b => .#. c _ ;",
			free:     "a:b => c _ ;",
			examples: []string{"c a:b", "c a:b b", "c a:b c", "c a:b b c"},
		},
		{
			name:     "right anchored",
			rule:     "a:b => _ c .#. ;",
			free:     "a:b => _ c ;",
			examples: []string{"a:b c", "b a:b c", "c a:b c", "b b a:b c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCompiler(t, tt.examples...)
			anchored := compileRule(t, c, tt.rule)
			free := compileRule(t, c, tt.free)

			for _, ex := range tt.examples {
				require.True(t, accepts(c, anchored.Automaton, pairs(t, ex)), ex)
			}
			for _, x := range tt.examples {
				for _, y := range tt.examples {
					joined := x + " " + y
					s := pairs(t, joined)
					assert.True(t, accepts(c, free.Automaton, s), "unanchored rule should accept %q", joined)
					assert.False(t, accepts(c, anchored.Automaton, s), "anchored rule accepted %q", joined)
				}
			}
		})
	}
}

func TestSelector_Completeness(t *testing.T) {
	c := newTestCompiler(t, "a b c", "a:b c")

	tests := []struct {
		rule string
		has  func(p alphabet.Pair) bool
	}{
		{rule: "a:b => _ c ;", has: func(p alphabet.Pair) bool { return p == pAB }},
		{rule: "a:b <= _ c ;", has: func(p alphabet.Pair) bool { return p.In == "a" }},
		{rule: "a:b <-- _ c ;", has: func(p alphabet.Pair) bool { return p.Out == "b" }},
		{rule: "a:b /<= _ c ;", has: func(p alphabet.Pair) bool { return p == pAB }},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			r := compileRule(t, c, tt.rule)
			for _, s := range allStrings(c.cc.alpha.Pairs(), 4) {
				want := false
				for _, p := range s {
					if tt.has(p) {
						want = true
					}
				}
				assert.Equal(t, want, accepts(c, r.Selector, s), alphabet.FormatPairs(s))
			}
		})
	}
}

// scramble returns the decoded outputs of the scrambler for one string.
func scramble(c *Compiler, scr *fst.Automaton, s []alphabet.Pair) *fst.Automaton {
	e := c.eng
	in := e.Encode(e.Path(c.cc.alpha.Labels(s)))
	return e.Decode(e.ProjectOutput(e.Compose(in, scr)))
}

func TestScrambler_RightArrow(t *testing.T) {
	c := newTestCompiler(t, "a b c", "a:b c")
	r := compileRule(t, c, "a:b => _ c ;")

	out := scramble(c, r.Scrambler, pairs(t, "a a"))
	assert.True(t, accepts(c, out, pairs(t, "a:b a")))
	assert.True(t, accepts(c, out, pairs(t, "a a:b")))
	assert.False(t, accepts(c, out, pairs(t, "a:b a:b")))
	assert.False(t, accepts(c, out, pairs(t, "a a")))
}

func TestScrambler_OutputCoercion(t *testing.T) {
	c := newTestCompiler(t, "a b c", "a:b c")
	r := compileRule(t, c, "a:b <= _ c ;")

	out := scramble(c, r.Scrambler, pairs(t, "a:b c"))
	assert.True(t, accepts(c, out, pairs(t, "a c")))
	assert.True(t, accepts(c, out, pairs(t, "a:b c")))
	assert.False(t, accepts(c, out, pairs(t, "b c")))
}

func TestScrambler_InputCoercion(t *testing.T) {
	c := newTestCompiler(t, "a b c", "a:b c")
	r := compileRule(t, c, "a:b <-- _ c ;")

	out := scramble(c, r.Scrambler, pairs(t, "a:b c"))
	assert.True(t, accepts(c, out, pairs(t, "b c")))
	assert.False(t, accepts(c, out, pairs(t, "a c")))
}

func TestCompileErrors(t *testing.T) {
	c := newTestCompiler(t, "a b c", "a:b c")

	tests := []struct {
		rule    string
		kind    ErrorKind
		message string
	}{
		{rule: "x => _ c ;", kind: UndefinedSymbol, message: "'x' is neither defined"},
		{rule: "a:c => _ c ;", kind: InvalidPair, message: "symbol pair 'a:c' not in alphabet"},
		{rule: "z:b => _ c ;", kind: InvalidPair, message: "input symbol 'z' and symbol pair 'z:b' not in alphabet"},
		{rule: "a:z => _ c ;", kind: InvalidPair, message: "output symbol 'z' and symbol pair 'a:z' not in alphabet"},
		{rule: "a:b => _ q: ;", kind: InvalidPair, message: "input symbol 'q'"},
	}

	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			stmt, err := syntax.ParseStatement(tt.rule, 1)
			require.NoError(t, err)
			_, err = c.Rule(stmt.Rule, tt.rule)
			require.Error(t, err)
			assert.True(t, IsKind(err, tt.kind), "got %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestDefine_Duplicate(t *testing.T) {
	c := newTestCompiler(t, "a b c")
	define(t, c, "V = a | b ;")

	for _, text := range []string{"V = c ;", "PI = a ;"} {
		stmt, err := syntax.ParseStatement(text, 1)
		require.NoError(t, err)
		err = c.Define(stmt.Definition)
		assert.True(t, IsKind(err, DuplicateDefinition), "got %v", err)
	}
	assert.Equal(t, []string{"PI", "PAIRS", "V"}, c.Env().Names())
}

func TestDefinitionsAreResolvedBeforePairs(t *testing.T) {
	c := newTestCompiler(t, "a b c")
	define(t, c, "a = b ;")

	expr, err := syntax.ParseExpr("a")
	require.NoError(t, err)
	got, err := c.Expr(expr)
	require.NoError(t, err)
	assert.True(t, accepts(c, got, pairs(t, "b")))
}

func TestLimitExceeded(t *testing.T) {
	c := newTestCompiler(t, "a b c", "a:b c")
	small := c.WithMaxStates(3)

	stmt, err := syntax.ParseStatement("a:b <=> _ c ;", 1)
	require.NoError(t, err)
	_, err = small.Rule(stmt.Rule, "r")
	require.Error(t, err)
	assert.True(t, IsKind(err, LimitExceeded))
	assert.True(t, fst.IsLimitError(err))
}

func TestParseOperator(t *testing.T) {
	for tok, want := range map[string]Operator{
		"=>": RightArrow, "<=": OutputCoercion, "<--": InputCoercion,
		"<=>": DoubleArrow, "/<=": Exclusion,
	} {
		got, err := ParseOperator(tok)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, tok, got.String())
	}

	_, err := ParseOperator("==>")
	assert.True(t, IsKind(err, UnknownOperator))
}

func TestCompileError_Format(t *testing.T) {
	err := errorf(InvalidPair, "bad").At("a:z => _ ;", 3, 4)
	assert.Equal(t, "[E203] lines 3-4: invalid pair: bad", err.Error())
	assert.Equal(t, "[E203] line 3: invalid pair: bad", errorf(InvalidPair, "bad").At("", 3, 3).Error())
}

func TestParseErrorKind(t *testing.T) {
	for _, s := range []string{"InvalidPair", "invalid pair", "E203"} {
		k, err := ParseErrorKind(s)
		require.NoError(t, err, s)
		assert.Equal(t, InvalidPair, k, s)
	}

	_, err := ParseErrorKind("Bogus")
	assert.Error(t, err)
}
