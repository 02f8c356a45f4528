package compiler

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/twolc/internal/alphabet"
	"github.com/roach88/twolc/internal/fst"
	"github.com/roach88/twolc/internal/syntax"
)

// Compiler compiles expressions, contexts and rules of one rule file.
type Compiler struct {
	cc  *CompilationContext
	env *Env
	eng *fst.Engine
}

// New returns a compiler resolving names in env.
func New(cc *CompilationContext, env *Env) *Compiler {
	return &Compiler{cc: cc, env: env, eng: cc.Engine()}
}

// WithContext returns a compiler whose automaton operations abort when
// ctx is done.
func (c *Compiler) WithContext(ctx context.Context) *Compiler {
	cp := *c
	cp.eng = c.eng.WithContext(ctx)
	return &cp
}

// WithMaxStates returns a compiler with its own automaton state budget.
func (c *Compiler) WithMaxStates(n int) *Compiler {
	cp := *c
	cp.eng = c.eng.WithLimit(n)
	return &cp
}

// WithEnv returns a compiler resolving names in env.
func (c *Compiler) WithEnv(env *Env) *Compiler {
	cp := *c
	cp.env = env
	return &cp
}

// Env returns the definition environment.
func (c *Compiler) Env() *Env {
	return c.env
}

// Define compiles a definition and binds it.
func (c *Compiler) Define(def *syntax.Definition) (err error) {
	defer recoverLimit(&err)
	defer fst.Catch(&err)

	a, err := c.expr(def.Expr)
	if err != nil {
		return err
	}
	return c.env.Define(def.Name, a)
}

// Expr compiles an expression to a minimal automaton.
func (c *Compiler) Expr(node *syntax.Expr) (a *fst.Automaton, err error) {
	defer recoverLimit(&err)
	defer fst.Catch(&err)
	return c.expr(node)
}

func (c *Compiler) expr(node *syntax.Expr) (*fst.Automaton, error) {
	alts := make([]*fst.Automaton, 0, len(node.Alts))
	for _, alt := range node.Alts {
		a, err := c.inter(alt)
		if err != nil {
			return nil, err
		}
		alts = append(alts, a)
	}
	if len(alts) == 1 {
		return alts[0], nil
	}
	return c.eng.Minimize(c.eng.Union(alts...)).WithName(node.String()), nil
}

func (c *Compiler) inter(node *syntax.Inter) (*fst.Automaton, error) {
	a, err := c.seq(node.Head)
	if err != nil {
		return nil, err
	}
	for _, op := range node.Tail {
		b, err := c.seq(op.Right)
		if err != nil {
			return nil, err
		}
		switch op.Op {
		case "&":
			a = c.eng.Intersect(a, b)
		case "-":
			a = c.eng.Difference(a, b)
		default:
			return nil, errorf(SyntaxError, "unknown set operator %q", op.Op)
		}
		a = c.eng.Minimize(a)
	}
	return a.WithName(node.String()), nil
}

func (c *Compiler) seq(node *syntax.Seq) (*fst.Automaton, error) {
	parts := make([]*fst.Automaton, 0, len(node.Factors))
	for _, f := range node.Factors {
		a, err := c.factor(f)
		if err != nil {
			return nil, err
		}
		parts = append(parts, a)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return c.eng.Minimize(c.eng.Concat(parts...)).WithName(node.String()), nil
}

// factor applies a leading complement to the atom first, then the
// postfix operators left to right.
func (c *Compiler) factor(node *syntax.Factor) (*fst.Automaton, error) {
	a, err := c.atom(node.Atom)
	if err != nil {
		return nil, err
	}
	e := c.eng
	if node.Negated {
		a = e.Minimize(e.Difference(c.cc.pi, a))
	}
	for _, op := range node.Ops {
		switch op {
		case "*":
			a = e.Star(a)
		case "+":
			a = e.Plus(a)
		case ".m":
			// every legal realization of the input side
			a = e.Compose(e.ProjectInput(a), c.cc.piStar)
		case ".s":
			// every legal input for the output side
			a = e.Compose(c.cc.piStar, e.ProjectOutput(a))
		default:
			return nil, errorf(SyntaxError, "unknown postfix operator %q", op)
		}
		a = e.Minimize(a)
	}
	return a.WithName(node.String()), nil
}

func (c *Compiler) atom(node *syntax.Atom) (*fst.Automaton, error) {
	switch {
	case node.Boundary:
		return c.cc.boundary, nil
	case node.Group != nil:
		a, err := c.expr(node.Group)
		if err != nil {
			return nil, err
		}
		return a.WithName(node.String()), nil
	case node.Optional != nil:
		a, err := c.expr(node.Optional)
		if err != nil {
			return nil, err
		}
		return c.eng.Minimize(c.eng.Optional(a)).WithName(node.String()), nil
	case node.Pair != "":
		return c.pair(node.Pair)
	default:
		return c.symbol(node.Symbol)
	}
}

// pair resolves a:b, a:, :b and : against the alphabet.
func (c *Compiler) pair(token string) (*fst.Automaton, error) {
	in, out, err := alphabet.SplitPairSymbol(token)
	if err != nil {
		return nil, errorf(InvalidPair, "%v", err)
	}
	alpha := c.cc.alpha

	var missing []string
	if in != "" && !alpha.HasInput(in) {
		missing = append(missing, fmt.Sprintf("input symbol '%s'", in))
	}
	if out != "" && !alpha.HasOutput(out) {
		missing = append(missing, fmt.Sprintf("output symbol '%s'", out))
	}
	if in != "" && out != "" && !alpha.HasPair(alphabet.Pair{In: in, Out: out}) {
		missing = append(missing, fmt.Sprintf("symbol pair '%s:%s'", in, out))
	}
	if len(missing) > 0 {
		return nil, errorf(InvalidPair, "%s not in alphabet", strings.Join(missing, " and "))
	}

	var pairs []alphabet.Pair
	switch {
	case in != "" && out != "":
		pairs = []alphabet.Pair{{In: in, Out: out}}
	case in != "":
		pairs = alpha.PairsWithInput(in)
	case out != "":
		pairs = alpha.PairsWithOutput(out)
	default:
		return c.cc.pi.WithName(token), nil
	}
	return c.eng.Labels(alpha.Labels(pairs)...).WithName(token), nil
}

// symbol resolves a bare name: a definition if one is bound, otherwise
// the identity pair x:x.
func (c *Compiler) symbol(token string) (*fst.Automaton, error) {
	if a, ok := c.env.Lookup(token); ok {
		return a, nil
	}
	sym := alphabet.NormalizeSymbol(token)
	p := alphabet.Identity(sym)
	if c.cc.alpha.HasPair(p) {
		return c.eng.Labels(c.cc.alpha.Label(p)).WithName(token), nil
	}
	return nil, errorf(UndefinedSymbol, "'%s' is neither defined nor a symbol pair in the alphabet", token)
}
