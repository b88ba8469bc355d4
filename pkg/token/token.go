// Package token defines the lexical token model shared by the completion
// engine and the statement parser.
//
// Tokens carry half-open [From, To) byte offsets into the source buffer so
// cursor positions can be resolved against them directly. Kinds are coarse
// on purpose: the engine cares about "is this a keyword, an identifier, or
// punctuation", not about the full grammar's token vocabulary.
package token

// Kind classifies a lexical token.
type Kind int

const (
	// Keyword is a reserved SQL word (SELECT, FROM, ...).
	Keyword Kind = iota
	// Ident is an unquoted or quoted identifier.
	Ident
	// Number is a numeric literal.
	Number
	// String is a string literal, including dollar-quoted strings.
	String
	// Operator is an arithmetic, comparison, or string operator.
	Operator
	// Punct is structural punctuation: parens, commas, dots, semicolons.
	Punct
	// Comment is a line or block comment.
	Comment
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case Keyword:
		return "keyword"
	case Ident:
		return "identifier"
	case Number:
		return "number"
	case String:
		return "string"
	case Operator:
		return "operator"
	case Punct:
		return "punctuation"
	case Comment:
		return "comment"
	default:
		return "unknown"
	}
}

// IsLiteral reports whether the kind is a literal value.
func (k Kind) IsLiteral() bool {
	return k == Number || k == String
}

// Token is a single lexical token. Value always equals the source slice
// sql[From:To], except for nothing: the tokenizer never rewrites text.
type Token struct {
	Value string
	Kind  Kind
	From  int
	To    int
}

// Is reports whether the token is a keyword equal to word (case-insensitive).
func (t Token) Is(word string) bool {
	return t.Kind == Keyword && equalFold(t.Value, word)
}

// IsPunct reports whether the token is the given punctuation.
func (t Token) IsPunct(p string) bool {
	return t.Kind == Punct && t.Value == p
}

// equalFold is an ASCII-only case-insensitive comparison. SQL keywords are
// ASCII, so the unicode folding in strings.EqualFold is unnecessary here.
func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}
