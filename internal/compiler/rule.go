package compiler

import (
	"github.com/roach88/twolc/internal/fst"
	"github.com/roach88/twolc/internal/syntax"
)

// Rule is a compiled rule. It is immutable once returned.
type Rule struct {
	Name     string
	Op       Operator
	Center   *fst.Automaton
	Contexts []Context

	// Automaton accepts exactly the pair strings that obey the rule.
	Automaton *fst.Automaton
	// Selector accepts the strings that contain an occurrence the rule
	// is about.
	Selector *fst.Automaton
	// Scrambler is an encoded transducer from correct strings to
	// candidate incorrect ones. It is empty for /<= rules.
	Scrambler *fst.Automaton

	FirstLine int
	LastLine  int
}

// Rule compiles a parsed rule. name labels the resulting automata.
func (c *Compiler) Rule(node *syntax.Rule, name string) (rule *Rule, err error) {
	defer recoverLimit(&err)
	defer fst.Catch(&err)

	op, err := ParseOperator(node.Op)
	if err != nil {
		return nil, err
	}
	x, err := c.expr(node.Center)
	if err != nil {
		return nil, err
	}
	ctxs := make([]Context, 0, len(node.Contexts))
	for _, n := range node.Contexts {
		ctx, err := c.context(n)
		if err != nil {
			return nil, err
		}
		ctxs = append(ctxs, ctx)
	}
	return c.BuildRule(name, op, x, ctxs)
}

// BuildRule builds the rule, selector and scrambler automata for an
// already compiled center and contexts.
func (c *Compiler) BuildRule(name string, op Operator, x *fst.Automaton, ctxs []Context) (rule *Rule, err error) {
	defer recoverLimit(&err)
	defer fst.Catch(&err)

	var r, sel, scr *fst.Automaton
	switch op {
	case RightArrow:
		r, sel, scr = c.rightArrow(x, ctxs)
	case OutputCoercion:
		r, sel, scr = c.coercion(x, ctxs, c.mixOutput)
	case InputCoercion:
		r, sel, scr = c.coercion(x, ctxs, c.mixInput)
	case DoubleArrow:
		r, sel, scr = c.doubleArrow(x, ctxs)
	case Exclusion:
		r, sel, scr = c.exclusion(x, ctxs)
	default:
		return nil, errorf(UnknownOperator, "operator %d", int(op))
	}

	return &Rule{
		Name:      name,
		Op:        op,
		Center:    x,
		Contexts:  ctxs,
		Automaton: r.WithName(name),
		Selector:  sel,
		Scrambler: scr,
	}, nil
}

func (c *Compiler) rightArrow(x *fst.Automaton, ctxs []Context) (r, sel, scr *fst.Automaton) {
	pre := c.XToCondition(x)
	post := c.ContextsToCondition(ctxs)
	r = c.GeneralizedRestriction(pre, post)
	return r, c.Selector(x), c.incorrectToCorrect(x)
}

// coercion builds <= and <--. mix gives, as an unencoded automaton, every
// legal variation of x on the side the rule does not fix.
func (c *Compiler) coercion(x *fst.Automaton, ctxs []Context, mix func(*fst.Automaton) *fst.Automaton) (r, sel, scr *fst.Automaton) {
	e := c.eng
	post := c.XToCondition(x)
	xAll := mix(x)
	pre := e.Minimize(e.Intersect(c.XToCondition(xAll), c.ContextsToCondition(ctxs)))
	r = c.GeneralizedRestriction(pre, post)
	return r, c.Selector(xAll), c.correctToIncorrect(x, xAll)
}

func (c *Compiler) doubleArrow(x *fst.Automaton, ctxs []Context) (r, sel, scr *fst.Automaton) {
	e := c.eng
	r1, sel1, scr1 := c.rightArrow(x, ctxs)
	r2, sel2, scr2 := c.coercion(x, ctxs, c.mixOutput)
	r = e.Minimize(e.Intersect(r1, r2))
	sel = e.Minimize(e.Union(sel1, sel2))
	scr = e.Minimize(e.Union(scr1, scr2))
	return r, sel, scr
}

func (c *Compiler) exclusion(x *fst.Automaton, ctxs []Context) (r, sel, scr *fst.Automaton) {
	e := c.eng
	pre := e.Minimize(e.Intersect(c.ContextsToCondition(ctxs), c.XToCondition(x)))
	r = c.GeneralizedRestriction(pre, e.Empty())
	return r, c.Selector(x), e.Empty()
}

// mixOutput returns X.u ∘ PI*: every legal pair string with the input
// side of x.
func (c *Compiler) mixOutput(x *fst.Automaton) *fst.Automaton {
	e := c.eng
	return e.Minimize(e.Compose(e.ProjectInput(x), c.cc.piStar))
}

// mixInput returns PI* ∘ X.l: every legal pair string with the output
// side of x.
func (c *Compiler) mixInput(x *fst.Automaton) *fst.Automaton {
	e := c.eng
	return e.Minimize(e.Compose(c.cc.piStar, e.ProjectOutput(x)))
}

// correctToIncorrect returns PI* [X .x. mix] PI* over encoded pairs. It
// rewrites one correct occurrence of x to any of its variations.
func (c *Compiler) correctToIncorrect(x, mix *fst.Automaton) *fst.Automaton {
	e := c.eng
	swap := e.CrossProduct(e.Encode(x), e.Encode(mix))
	return e.Minimize(e.Concat(c.cc.piStarEnc, swap, c.cc.piStarEnc)).WithName("scrambler " + x.Name())
}

// incorrectToCorrect returns PI* [mixOutput(X) .x. X] PI* over encoded
// pairs. It puts x where some other realization of its input stood,
// possibly into a context where the rule forbids it.
func (c *Compiler) incorrectToCorrect(x *fst.Automaton) *fst.Automaton {
	e := c.eng
	swap := e.CrossProduct(e.Encode(c.mixOutput(x)), e.Encode(x))
	return e.Minimize(e.Concat(c.cc.piStarEnc, swap, c.cc.piStarEnc)).WithName("scrambler " + x.Name())
}
