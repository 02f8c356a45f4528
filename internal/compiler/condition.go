package compiler

import (
	"strings"

	"github.com/roach88/twolc/internal/fst"
	"github.com/roach88/twolc/internal/syntax"
)

// Context is a compiled left/right context pair. An absent side is the
// empty string.
type Context struct {
	Name  string
	Left  *fst.Automaton
	Right *fst.Automaton
}

// Context compiles one context. Either side may be nil. In the left
// context the boundary .#. is rewritten to BEGIN so that it anchors the
// start of the word.
func (c *Compiler) Context(node *syntax.Context) (ctx Context, err error) {
	defer recoverLimit(&err)
	defer fst.Catch(&err)
	return c.context(node)
}

func (c *Compiler) context(node *syntax.Context) (Context, error) {
	e := c.eng
	ctx := Context{
		Name:  node.String(),
		Left:  e.EpsilonAutomaton(),
		Right: e.EpsilonAutomaton(),
	}
	if node.Left != nil {
		lc, err := c.expr(node.Left)
		if err != nil {
			return Context{}, err
		}
		ctx.Left = e.Substitute(lc, c.cc.end, c.cc.begin).WithName(lc.Name())
	}
	if node.Right != nil {
		rc, err := c.expr(node.Right)
		if err != nil {
			return Context{}, err
		}
		ctx.Right = rc
	}
	return ctx, nil
}

// Trim returns the maximal boundary-free parts of the strings of a:
// everything up to the last BEGIN and from the first END is dropped.
func (c *Compiler) Trim(a *fst.Automaton) *fst.Automaton {
	e := c.eng
	t := e.Compose(e.Compose(c.cc.trimPre, a), c.cc.trimPost)
	return e.Minimize(e.Substitute(t, c.cc.zero, fst.Epsilon))
}

// ContextToCondition returns trim(PI* LC) ◇ PI* ◇ trim(RC PI*).
func (c *Compiler) ContextToCondition(ctx Context) *fst.Automaton {
	e := c.eng
	left := c.Trim(e.Minimize(e.Concat(c.cc.piStar, ctx.Left)))
	right := c.Trim(e.Minimize(e.Concat(ctx.Right, c.cc.piStar)))
	cond := e.Concat(left, c.cc.diamondFSA, c.cc.piStar, c.cc.diamondFSA, right)
	return e.Minimize(cond).WithName(ctx.Name)
}

// ContextsToCondition returns the union of the conditions of ctxs.
func (c *Compiler) ContextsToCondition(ctxs []Context) *fst.Automaton {
	e := c.eng
	conds := make([]*fst.Automaton, len(ctxs))
	names := make([]string, len(ctxs))
	for i, ctx := range ctxs {
		conds[i] = c.ContextToCondition(ctx)
		names[i] = ctx.Name
	}
	return e.Minimize(e.Union(conds...)).WithName(strings.Join(names, ", "))
}

// XToCondition returns PI* ◇ X ◇ PI*.
func (c *Compiler) XToCondition(x *fst.Automaton) *fst.Automaton {
	e := c.eng
	cond := e.Concat(c.cc.piStar, c.cc.diamondFSA, x, c.cc.diamondFSA, c.cc.piStar)
	return e.Minimize(cond)
}

// GeneralizedRestriction returns PI* - remove◇(pre - post): the strings
// in which every center occurrence allowed by pre is also allowed by
// post.
func (c *Compiler) GeneralizedRestriction(pre, post *fst.Automaton) *fst.Automaton {
	e := c.eng
	bad := e.Minimize(e.Difference(pre, post))
	bad = e.Minimize(e.Substitute(bad, c.cc.diamond, fst.Epsilon))
	return e.Minimize(e.Difference(c.cc.piStar, bad))
}

// Selector returns PI* X PI*.
func (c *Compiler) Selector(x *fst.Automaton) *fst.Automaton {
	e := c.eng
	return e.Minimize(e.Concat(c.cc.piStar, x, c.cc.piStar)).WithName("selector " + x.Name())
}
