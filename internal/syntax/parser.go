package syntax

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var options = []participle.Option{
	participle.Lexer(Lexer),
	participle.Elide("Comment", "Whitespace"),
	participle.UseLookahead(2),
}

var (
	definitionParser = participle.MustBuild[Definition](options...)
	ruleParser       = participle.MustBuild[Rule](options...)
	exprParser       = participle.MustBuild[Expr](options...)
)

// Kind tells definitions and rules apart.
type Kind int

const (
	KindDefinition Kind = iota + 1
	KindRule
)

func (k Kind) String() string {
	switch k {
	case KindDefinition:
		return "definition"
	case KindRule:
		return "rule"
	default:
		return "unknown"
	}
}

// Error is a syntax error with a position in the rule file.
type Error struct {
	Line   int
	Column int
	Msg    string
}

func (e *Error) Error() string {
	if e.Line == 0 {
		return e.Msg
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

// IsSyntaxError returns true if err is or wraps a syntax *Error.
func IsSyntaxError(err error) bool {
	var se *Error
	return errors.As(err, &se)
}

// Statement is one parsed statement. Exactly one of Definition and Rule
// is set.
type Statement struct {
	Kind       Kind
	Definition *Definition
	Rule       *Rule
}

// ParseStatement parses the text of one statement. firstLine is the line
// of the rule file the text starts on; error positions are reported
// relative to the file.
func ParseStatement(text string, firstLine int) (*Statement, error) {
	kind, err := Classify(text)
	if err != nil {
		return nil, offset(err, firstLine)
	}

	switch kind {
	case KindDefinition:
		def, err := definitionParser.ParseString("", text)
		if err != nil {
			return nil, offset(err, firstLine)
		}
		return &Statement{Kind: kind, Definition: def}, nil
	default:
		rule, err := ruleParser.ParseString("", text)
		if err != nil {
			return nil, offset(err, firstLine)
		}
		return &Statement{Kind: kind, Rule: rule}, nil
	}
}

// ParseExpr parses a bare expression without a trailing ';'.
func ParseExpr(text string) (*Expr, error) {
	expr, err := exprParser.ParseString("", text)
	if err != nil {
		return nil, offset(err, 1)
	}
	return expr, nil
}

// Classify decides from the tokens of text whether it is a definition
// (a symbol followed by '=') or a rule (it contains a rule operator).
func Classify(text string) (Kind, error) {
	lex, err := Lexer.LexString("", text)
	if err != nil {
		return 0, err
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return 0, err
	}

	syms := Lexer.Symbols()
	elided := map[lexer.TokenType]bool{
		syms["Comment"]:    true,
		syms["Whitespace"]: true,
		lexer.EOF:          true,
	}
	var significant []lexer.Token
	for _, tok := range tokens {
		if !elided[tok.Type] {
			significant = append(significant, tok)
		}
	}

	if len(significant) >= 2 &&
		significant[0].Type == syms["Symbol"] &&
		significant[1].Type == syms["Punct"] && significant[1].Value == "=" {
		return KindDefinition, nil
	}
	for _, tok := range significant {
		if tok.Type == syms["Op"] {
			return KindRule, nil
		}
	}

	pos := lexer.Position{Line: 1, Column: 1}
	if len(significant) > 0 {
		pos = significant[0].Pos
	}
	return 0, &Error{
		Line:   pos.Line,
		Column: pos.Column,
		Msg:    "statement is neither a definition nor a rule",
	}
}

// offset converts parser and lexer errors to *Error with file lines.
func offset(err error, firstLine int) error {
	var se *Error
	if errors.As(err, &se) {
		return &Error{Line: se.Line + firstLine - 1, Column: se.Column, Msg: se.Msg}
	}
	var perr participle.Error
	if errors.As(err, &perr) {
		pos := perr.Position()
		return &Error{Line: pos.Line + firstLine - 1, Column: pos.Column, Msg: perr.Message()}
	}
	return &Error{Line: firstLine, Msg: err.Error()}
}
