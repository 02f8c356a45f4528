package compiler

// Operator is one of the five rule operators.
type Operator int

const (
	// RightArrow (=>): X occurs only in the given contexts.
	RightArrow Operator = iota + 1
	// OutputCoercion (<=): in the contexts, the input of X is realized as X.
	OutputCoercion
	// InputCoercion (<--): in the contexts, the output of X comes from X.
	InputCoercion
	// DoubleArrow (<=>): both => and <=.
	DoubleArrow
	// Exclusion (/<=): X never occurs in the contexts.
	Exclusion
)

var operatorTokens = map[string]Operator{
	"=>":  RightArrow,
	"<=":  OutputCoercion,
	"<--": InputCoercion,
	"<=>": DoubleArrow,
	"/<=": Exclusion,
}

// ParseOperator maps an operator token to its Operator.
func ParseOperator(s string) (Operator, error) {
	op, ok := operatorTokens[s]
	if !ok {
		return 0, errorf(UnknownOperator, "%q is not a rule operator", s)
	}
	return op, nil
}

// String returns the operator token.
func (o Operator) String() string {
	switch o {
	case RightArrow:
		return "=>"
	case OutputCoercion:
		return "<="
	case InputCoercion:
		return "<--"
	case DoubleArrow:
		return "<=>"
	case Exclusion:
		return "/<="
	default:
		return "?"
	}
}

// HasScrambler reports whether rules with this operator can be tested
// against synthesized negative examples.
func (o Operator) HasScrambler() bool {
	return o != Exclusion
}
