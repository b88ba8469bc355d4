package complete

import (
	"github.com/leapstack-labs/leapcomplete/pkg/token"
)

// FunctionContext identifies the function call the cursor is inside, for
// parameter hints.
type FunctionContext struct {
	// Name of the function, as written (unqualified).
	Name string

	// StartPos is the byte offset of the function name.
	StartPos int

	// ArgIndex is the zero-based argument the cursor is on.
	ArgIndex int
}

// FindFunctionContext scans backward from the cursor for the unmatched open
// paren of a call and reports the call's name and the argument position.
// It returns false when the cursor is not inside a call, or sits inside a
// string or comment.
func FindFunctionContext(sql string, cursor int) (FunctionContext, bool) {
	buf := Tokenize(sql, cursor)
	if buf.InsideStringOrComment() {
		return FunctionContext{}, false
	}
	tokens := buf.TokensUpToCursor(true)

	depth := 0
	args := 0
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		switch {
		case tok.IsPunct(")"):
			depth++
		case tok.IsPunct("("):
			if depth > 0 {
				depth--
				continue
			}
			// Unmatched open paren: a call if an identifier precedes it.
			if i > 0 && isCallable(tokens[i-1]) {
				return FunctionContext{
					Name:     tokens[i-1].Value,
					StartPos: tokens[i-1].From,
					ArgIndex: args,
				}, true
			}
			return FunctionContext{}, false
		case tok.IsPunct(",") && depth == 0:
			args++
		case tok.IsPunct(";") && depth == 0:
			return FunctionContext{}, false
		}
	}
	return FunctionContext{}, false
}

// isCallable reports whether a token can name a function. A handful of
// keywords are call-shaped in SQL.
func isCallable(tok token.Token) bool {
	if tok.Kind == token.Ident {
		return true
	}
	if tok.Kind != token.Keyword {
		return false
	}
	for _, kw := range []string{"coalesce", "cast", "substring", "trim", "extract", "nullif", "greatest", "least", "left", "right", "values"} {
		if tok.Is(kw) {
			return true
		}
	}
	return false
}
