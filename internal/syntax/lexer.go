package syntax

import "github.com/alecthomas/participle/v2/lexer"

// symbolPattern matches one symbol: runs of ordinary characters, %
// escapes and braced morphophonemes such as {aä}.
const symbolPattern = `(?:%.|\{[^{}\s]*\}|[^\s%{}:|&\-\\*+()\[\];,=!_.<>/])+`

// Lexer tokenizes rule-file text. Rule order matters: operators must be
// tried before punctuation and pairs before bare symbols.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `![^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Boundary", Pattern: `\.#\.`},
	{Name: "Proj", Pattern: `\.[ms]`},
	{Name: "Op", Pattern: `<=>|/<=|<--|<=|=>`},
	{Name: "Pair", Pattern: `(?:` + symbolPattern + `)?:(?:` + symbolPattern + `)?`},
	{Name: "Symbol", Pattern: symbolPattern},
	{Name: "Not", Pattern: `\\`},
	{Name: "Punct", Pattern: `[\[\]|&\-*+();,=_]`},
})
