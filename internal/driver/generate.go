package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/twolc/internal/alphabet"
	"github.com/roach88/twolc/internal/fst"
)

// Generation lists the realizations of one morphophonemic word that the
// whole rule set allows, shortest and then lexically first.
type Generation struct {
	Word string `json:"word"`
	// Pairs holds each realization as a pair string.
	Pairs []string `json:"pairs"`
	// Surface holds the output sides of Pairs, symbols joined without
	// spaces.
	Surface []string `json:"surface"`
}

// ParseWord splits a space separated word into input symbols and checks
// each against the alphabet.
func (d *Driver) ParseWord(word string) ([]string, error) {
	fields := strings.Fields(word)
	if len(fields) == 0 {
		return nil, errors.New("empty word")
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		in, outSym, err := alphabet.SplitPairSymbol(f)
		if err != nil {
			return nil, err
		}
		if in != outSym {
			return nil, fmt.Errorf("%q is a pair: give input symbols only", f)
		}
		if !d.alpha.HasInput(in) {
			return nil, fmt.Errorf("%q is not an input symbol of the alphabet", f)
		}
		out[i] = in
	}
	return out, nil
}

// Generate finds the pair strings whose input side is word and which
// every rule accepts. At most MaxPaths realizations are listed.
func (d *Driver) Generate(ctx context.Context, rules []*fst.Automaton, word string) (g *Generation, err error) {
	symbols, err := d.ParseWord(word)
	if err != nil {
		return nil, err
	}
	defer fst.Catch(&err)

	eng := d.engine(ctx)
	labels := make([]fst.Label, len(symbols))
	for i, s := range symbols {
		labels[i] = d.alpha.Label(alphabet.Identity(s))
	}

	result := eng.Minimize(eng.Compose(eng.Path(labels), d.cc.PIStar()))
	for _, r := range rules {
		result = eng.Minimize(eng.Intersect(result, r))
	}

	g = &Generation{
		Word:    strings.Join(symbols, " "),
		Pairs:   []string{},
		Surface: []string{},
	}
	for _, p := range eng.Paths(result, d.maxPaths) {
		g.Pairs = append(g.Pairs, d.alpha.FormatPath(p))
		g.Surface = append(g.Surface, d.surface(p))
	}
	d.logger.Debug("word generated", "word", g.Word, "realizations", len(g.Pairs))
	return g, nil
}

func (d *Driver) surface(labels []fst.Label) string {
	var b strings.Builder
	for _, l := range labels {
		b.WriteString(d.alpha.Pair(l).Out)
	}
	return b.String()
}
