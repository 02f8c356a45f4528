package compiler

import (
	"github.com/roach88/twolc/internal/alphabet"
	"github.com/roach88/twolc/internal/fst"
)

// CompilationContext carries the alphabet and the automata every rule
// needs. It is built once per alphabet and shared read-only by all
// compilations.
type CompilationContext struct {
	alpha *alphabet.Alphabet
	eng   *fst.Engine

	begin, end, zero, diamond fst.Symbol

	pi         *fst.Automaton // any one legal pair
	piStar     *fst.Automaton
	piStarEnc  *fst.Automaton // PI* over encoded pair symbols
	diamondFSA *fst.Automaton
	boundary   *fst.Automaton // .#.
	trimPre    *fst.Automaton
	trimPost   *fst.Automaton
}

// NewCompilationContext precomputes the shared automata for alpha.
func NewCompilationContext(alpha *alphabet.Alphabet) (cc *CompilationContext, err error) {
	defer recoverLimit(&err)
	defer fst.Catch(&err)

	eng := alpha.Engine()
	syms := eng.Symbols()
	cc = &CompilationContext{
		alpha:   alpha,
		eng:     eng,
		begin:   syms.Intern(alphabet.BeginSymbol),
		end:     syms.Intern(alphabet.EndSymbol),
		zero:    syms.Intern(alphabet.ZeroSymbol),
		diamond: syms.Intern(alphabet.DiamondSymbol),
	}

	cc.pi = alpha.PI()
	cc.piStar = eng.Minimize(eng.Star(cc.pi)).WithName("PI*")
	cc.piStarEnc = eng.Encode(cc.piStar)
	cc.diamondFSA = eng.Labels(fst.Identity(cc.diamond))
	cc.boundary = eng.Labels(fst.Identity(cc.end)).WithName(alphabet.BoundaryDisplay)
	cc.trimPre, cc.trimPost = cc.buildTrimmers()
	return cc, nil
}

// buildTrimmers returns the two transducers used by Trim:
//
//	pre  = [[ZERO .x. PI.u]* ZERO:BEGIN]* [PI.u]* [ZERO:END [ZERO .x. PI.u]*]*
//	post = [[PI.l .x. ZERO]* BEGIN:ZERO]* [PI.l]* [END:ZERO [PI.l .x. ZERO]*]*
//
// pre maps the input side of a string to ZERO up to its last BEGIN and
// from its first END, post does the same on the output side.
func (cc *CompilationContext) buildTrimmers() (pre, post *fst.Automaton) {
	e := cc.eng
	zero := e.Labels(fst.Identity(cc.zero))
	piIn := e.Minimize(e.ProjectInput(cc.pi))
	piOut := e.Minimize(e.ProjectOutput(cc.pi))

	zeroIn := e.Star(e.CrossProduct(zero, piIn))
	pre = e.Concat(
		e.Star(e.Concat(zeroIn, e.Labels(fst.Label{In: cc.zero, Out: cc.begin}))),
		e.Star(piIn),
		e.Star(e.Concat(e.Labels(fst.Label{In: cc.zero, Out: cc.end}), zeroIn)),
	)

	outZero := e.Star(e.CrossProduct(piOut, zero))
	post = e.Concat(
		e.Star(e.Concat(outZero, e.Labels(fst.Label{In: cc.begin, Out: cc.zero}))),
		e.Star(piOut),
		e.Star(e.Concat(e.Labels(fst.Label{In: cc.end, Out: cc.zero}), outZero)),
	)
	return e.Minimize(pre).WithName("trim pre"), e.Minimize(post).WithName("trim post")
}

// Alphabet returns the alphabet the context was built for.
func (cc *CompilationContext) Alphabet() *alphabet.Alphabet {
	return cc.alpha
}

// Engine returns the engine shared by all compilations.
func (cc *CompilationContext) Engine() *fst.Engine {
	return cc.eng
}

// PI returns the automaton accepting one legal pair.
func (cc *CompilationContext) PI() *fst.Automaton {
	return cc.pi
}

// PIStar returns the automaton accepting any string of legal pairs.
func (cc *CompilationContext) PIStar() *fst.Automaton {
	return cc.piStar
}
