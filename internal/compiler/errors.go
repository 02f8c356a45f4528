package compiler

import (
	"errors"
	"fmt"

	"github.com/roach88/twolc/internal/fst"
)

// Compile error codes (E200-E299)
const (
	CodeSyntaxError         = "E201" // malformed statement
	CodeUndefinedSymbol     = "E202" // name is neither defined nor a pair
	CodeInvalidPair         = "E203" // pair or symbol not in the alphabet
	CodeUnknownOperator     = "E204" // not one of the five rule operators
	CodeDuplicateDefinition = "E205" // name bound twice
	CodeLimitExceeded       = "E206" // automaton state budget or deadline
)

// ErrorKind classifies compile errors.
type ErrorKind int

const (
	SyntaxError ErrorKind = iota + 1
	UndefinedSymbol
	InvalidPair
	UnknownOperator
	DuplicateDefinition
	LimitExceeded
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case UndefinedSymbol:
		return "undefined symbol"
	case InvalidPair:
		return "invalid pair"
	case UnknownOperator:
		return "unknown operator"
	case DuplicateDefinition:
		return "duplicate definition"
	case LimitExceeded:
		return "limit exceeded"
	default:
		return "unknown error"
	}
}

// Code returns the stable error code of the kind.
func (k ErrorKind) Code() string {
	switch k {
	case SyntaxError:
		return CodeSyntaxError
	case UndefinedSymbol:
		return CodeUndefinedSymbol
	case InvalidPair:
		return CodeInvalidPair
	case UnknownOperator:
		return CodeUnknownOperator
	case DuplicateDefinition:
		return CodeDuplicateDefinition
	case LimitExceeded:
		return CodeLimitExceeded
	default:
		return "E200"
	}
}

var kindNames = map[string]ErrorKind{
	"SyntaxError":         SyntaxError,
	"UndefinedSymbol":     UndefinedSymbol,
	"InvalidPair":         InvalidPair,
	"UnknownOperator":     UnknownOperator,
	"DuplicateDefinition": DuplicateDefinition,
	"LimitExceeded":       LimitExceeded,
}

// ParseErrorKind accepts a kind by Go name ("InvalidPair"), by its
// String form ("invalid pair") or by code ("E203").
func ParseErrorKind(s string) (ErrorKind, error) {
	if k, ok := kindNames[s]; ok {
		return k, nil
	}
	for _, k := range kindNames {
		if s == k.String() || s == k.Code() {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown error kind %q", s)
}

// CompileError reports why one statement failed to compile. The
// statement text and line range are filled in by the driver.
type CompileError struct {
	Kind      ErrorKind
	Message   string
	Statement string
	FirstLine int
	LastLine  int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	switch {
	case e.FirstLine > 0 && e.LastLine > e.FirstLine:
		return fmt.Sprintf("[%s] lines %d-%d: %s: %s", e.Kind.Code(), e.FirstLine, e.LastLine, e.Kind, e.Message)
	case e.FirstLine > 0:
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Kind.Code(), e.FirstLine, e.Kind, e.Message)
	default:
		return fmt.Sprintf("[%s] %s: %s", e.Kind.Code(), e.Kind, e.Message)
	}
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// At returns a copy of e attributed to a statement and its lines.
func (e *CompileError) At(statement string, firstLine, lastLine int) *CompileError {
	c := *e
	c.Statement = statement
	c.FirstLine = firstLine
	c.LastLine = lastLine
	return &c
}

func errorf(kind ErrorKind, format string, args ...any) *CompileError {
	return &CompileError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// IsKind returns true if err is or wraps a *CompileError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var ce *CompileError
	return errors.As(err, &ce) && ce.Kind == kind
}

// AsCompileError converts any error to a *CompileError. Engine limit
// errors become LimitExceeded; anything else not already a compile error
// is reported as a syntax error.
func AsCompileError(err error) *CompileError {
	if err == nil {
		return nil
	}
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce
	}
	var le *fst.LimitError
	var cancel *fst.CanceledError
	if errors.As(err, &le) || errors.As(err, &cancel) {
		return &CompileError{Kind: LimitExceeded, Message: err.Error(), Err: err}
	}
	return &CompileError{Kind: SyntaxError, Message: err.Error(), Err: err}
}

// recoverLimit must be deferred before fst.Catch so that it sees the
// recovered engine error.
func recoverLimit(errp *error) {
	if *errp == nil {
		return
	}
	var le *fst.LimitError
	var cancel *fst.CanceledError
	if errors.As(*errp, &le) || errors.As(*errp, &cancel) {
		*errp = AsCompileError(*errp)
	}
}
