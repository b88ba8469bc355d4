package token

// The supported operator set is closed. Multi-character operators are
// assembled by the tokenizer from this table, and the section detector uses
// the prefix relation to recognize a mid-typed operator at the cursor.

// operators maps every complete operator to its struct{} marker.
var operators = map[string]struct{}{
	"=": {}, "<": {}, ">": {}, "<=": {}, ">=": {}, "<>": {}, "!=": {},
	"+": {}, "-": {}, "*": {}, "/": {}, "%": {},
	"||": {}, "::": {},
}

// operatorContinuations maps a strict prefix to the complete operators it
// can grow into. "<" is both a complete operator and a prefix of "<=" and
// "<>"; "!" and "|" and ":" are prefixes only.
var operatorContinuations = map[string][]string{
	"<": {"<=", "<>"},
	">": {">="},
	"!": {"!="},
	"|": {"||"},
	":": {"::"},
}

// IsOperator reports whether s is a complete operator.
func IsOperator(s string) bool {
	_, ok := operators[s]
	return ok
}

// OperatorContinuations returns the complete operators a partial operator
// can still become, or nil when partial has no continuations.
func OperatorContinuations(partial string) []string {
	return operatorContinuations[partial]
}

// IsOperatorStart reports whether b can begin an operator.
func IsOperatorStart(b byte) bool {
	switch b {
	case '=', '<', '>', '!', '+', '-', '*', '/', '%', '|', ':':
		return true
	}
	return false
}

// ComparisonOperators lists operators that compare two expressions. The
// candidate generator suggests these after a completed expression in a
// predicate position.
var ComparisonOperators = []string{"=", "<", ">", "<=", ">=", "<>", "!="}
