package syntax

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Expr is a union of intersections: A | B & C - D.
type Expr struct {
	Pos  lexer.Position
	Alts []*Inter `parser:"@@ ( '|' @@ )*"`
}

// Inter is a sequence followed by left-associative & and - operations.
type Inter struct {
	Head *Seq     `parser:"@@"`
	Tail []*SetOp `parser:"@@*"`
}

// SetOp is one & or - step of an Inter.
type SetOp struct {
	Op    string `parser:"@( '&' | '-' )"`
	Right *Seq   `parser:"@@"`
}

// Seq is a concatenation.
type Seq struct {
	Factors []*Factor `parser:"@@+"`
}

// Factor is an atom with an optional leading complement and any number of
// postfix operators, applied left to right.
type Factor struct {
	Pos     lexer.Position
	Negated bool     `parser:"@Not?"`
	Atom    *Atom    `parser:"@@"`
	Ops     []string `parser:"@( '*' | '+' | Proj )*"`
}

// Atom is the smallest unit of an expression.
type Atom struct {
	Pos      lexer.Position
	Boundary bool   `parser:"  @Boundary"`
	Group    *Expr  `parser:"| '[' @@ ']'"`
	Optional *Expr  `parser:"| '(' @@ ')'"`
	Pair     string `parser:"| @Pair"`
	Symbol   string `parser:"| @Symbol"`
}

// Definition binds a name: Name = Expr ;
type Definition struct {
	Pos  lexer.Position
	Name string `parser:"@Symbol '='"`
	Expr *Expr  `parser:"@@ ';'"`
}

// Rule is Center Op Context, ... ;
type Rule struct {
	Pos      lexer.Position
	Center   *Expr      `parser:"@@"`
	Op       string     `parser:"@Op"`
	Contexts []*Context `parser:"@@ ( ',' @@ )* ';'"`
}

// Context is Left _ Right; either side may be absent.
type Context struct {
	Pos   lexer.Position
	Left  *Expr `parser:"@@?"`
	Right *Expr `parser:"'_' @@?"`
}

// String renders the expression in canonical form.
func (e *Expr) String() string {
	if e == nil {
		return ""
	}
	parts := make([]string, len(e.Alts))
	for i, a := range e.Alts {
		parts[i] = a.String()
	}
	return strings.Join(parts, " | ")
}

func (i *Inter) String() string {
	var sb strings.Builder
	sb.WriteString(i.Head.String())
	for _, op := range i.Tail {
		sb.WriteString(" " + op.Op + " ")
		sb.WriteString(op.Right.String())
	}
	return sb.String()
}

func (s *Seq) String() string {
	parts := make([]string, len(s.Factors))
	for i, f := range s.Factors {
		parts[i] = f.String()
	}
	return strings.Join(parts, " ")
}

func (f *Factor) String() string {
	var sb strings.Builder
	if f.Negated {
		sb.WriteByte('\\')
	}
	sb.WriteString(f.Atom.String())
	for _, op := range f.Ops {
		sb.WriteString(op)
	}
	return sb.String()
}

func (a *Atom) String() string {
	switch {
	case a.Boundary:
		return ".#."
	case a.Group != nil:
		return "[" + a.Group.String() + "]"
	case a.Optional != nil:
		return "(" + a.Optional.String() + ")"
	case a.Pair != "":
		return a.Pair
	default:
		return a.Symbol
	}
}

func (c *Context) String() string {
	var sb strings.Builder
	if c.Left != nil {
		sb.WriteString(c.Left.String())
		sb.WriteByte(' ')
	}
	sb.WriteByte('_')
	if c.Right != nil {
		sb.WriteByte(' ')
		sb.WriteString(c.Right.String())
	}
	return sb.String()
}

func (r *Rule) String() string {
	ctxs := make([]string, len(r.Contexts))
	for i, c := range r.Contexts {
		ctxs[i] = c.String()
	}
	return r.Center.String() + " " + r.Op + " " + strings.Join(ctxs, ", ") + " ;"
}

func (d *Definition) String() string {
	return d.Name + " = " + d.Expr.String() + " ;"
}
