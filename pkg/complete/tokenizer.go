// Package complete implements a context-aware SQL completion engine.
//
// The engine is built for invalid input: the buffer it sees is whatever the
// user has typed so far, which is mid-keystroke more often than not. Every
// stage lexes, recovers structure, and classifies on a best-effort basis and
// degrades to an empty result instead of failing. The full pipeline is
// synchronous, allocation-local, and free of shared state; see Run.
package complete

import (
	"strings"

	"github.com/leapstack-labs/leapcomplete/pkg/token"
)

// Buffer is the tokenized form of a SQL buffer plus the cursor's position
// relative to the token stream.
type Buffer struct {
	SQL    string
	Cursor int // clamped to [0, len(SQL)]

	Tokens []token.Token

	// CursorToken is the index of the first token whose end reaches the
	// cursor. It equals len(Tokens) when the cursor sits past every token.
	CursorToken int

	// CursorInToken is the cursor's offset within Tokens[CursorToken], or
	// -1 when the cursor is not inside that token (it sits in whitespace
	// before it, or past all tokens).
	CursorInToken int

	// openTrailer is true when the final token is a string or comment that
	// ran to end-of-buffer without its closing delimiter.
	openTrailer bool
}

// Tokenize lexes sql and resolves cursor against the token stream. It never
// fails: unterminated strings and comments become a single trailing token
// spanning to end-of-buffer, and a cursor outside [0, len(sql)] is clamped.
func Tokenize(sql string, cursor int) Buffer {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(sql) {
		cursor = len(sql)
	}

	buf := Buffer{SQL: sql, Cursor: cursor, CursorInToken: -1}

	i := 0
	for i < len(sql) {
		c := sql[i]

		if isSpace(c) {
			i++
			continue
		}

		var tok token.Token
		var open bool

		switch {
		case c == '-' && i+1 < len(sql) && sql[i+1] == '-':
			tok, open = lexLineComment(sql, i)
		case c == '/' && i+1 < len(sql) && sql[i+1] == '*':
			tok, open = lexBlockComment(sql, i)
		case c == '\'':
			tok, open = lexString(sql, i)
		case c == '"':
			tok, open = lexQuotedIdent(sql, i)
		case c == '$':
			tok, open = lexDollar(sql, i)
		case isDigit(c):
			tok = lexNumber(sql, i)
		case isIdentStart(c):
			tok = lexWord(sql, i)
		case token.IsOperatorStart(c):
			tok = lexOperator(sql, i)
		default:
			tok = token.Token{Value: sql[i : i+1], Kind: token.Punct, From: i, To: i + 1}
		}

		buf.Tokens = append(buf.Tokens, tok)
		buf.openTrailer = open
		i = tok.To
	}

	buf.resolveCursor()
	return buf
}

// resolveCursor locates the cursor relative to the token stream.
func (b *Buffer) resolveCursor() {
	b.CursorToken = len(b.Tokens)
	b.CursorInToken = -1

	for i, t := range b.Tokens {
		if t.To < b.Cursor {
			continue
		}
		b.CursorToken = i
		if t.From < b.Cursor {
			b.CursorInToken = b.Cursor - t.From
		}
		return
	}
}

// PartialToken returns the in-progress identifier or keyword the cursor is
// inside, or "" when the cursor sits cleanly at a token boundary. A word the
// cursor touches only at its very start is not partial: the user has not
// begun typing it.
func (b *Buffer) PartialToken() string {
	if b.CursorToken >= len(b.Tokens) || b.CursorInToken <= 0 {
		return ""
	}
	t := b.Tokens[b.CursorToken]
	if t.Kind != token.Ident && t.Kind != token.Keyword && t.Kind != token.Number {
		return ""
	}
	if t.Kind == token.Number {
		// Mid-number is not a completable word.
		return ""
	}
	return t.Value[:b.CursorInToken]
}

// InsideStringOrComment reports whether the cursor falls inside an active
// string or comment span. Strictly interior positions always count; the
// position just past the final token counts only when that token is still
// open (no closing quote or comment terminator before end-of-buffer).
func (b *Buffer) InsideStringOrComment() bool {
	if b.CursorToken >= len(b.Tokens) {
		// Cursor past all tokens: inside only if the last token ran open
		// to end-of-buffer, which resolveCursor maps to the token itself.
		return false
	}
	t := b.Tokens[b.CursorToken]
	if t.Kind != token.String && t.Kind != token.Comment {
		return false
	}
	if b.CursorInToken <= 0 {
		return false
	}
	if b.Cursor < t.To {
		return true
	}
	// Cursor exactly at the token's end: active only for an open trailer.
	return b.openTrailer && b.CursorToken == len(b.Tokens)-1
}

// TokensUpToCursor returns the prefix of tokens ending at the cursor's
// token. includeCurrent keeps the token the cursor touches; otherwise the
// prefix stops strictly before it.
func (b *Buffer) TokensUpToCursor(includeCurrent bool) []token.Token {
	end := b.CursorToken
	if includeCurrent && end < len(b.Tokens) && b.CursorInToken > 0 {
		end++
	}
	if end > len(b.Tokens) {
		end = len(b.Tokens)
	}
	return b.Tokens[:end]
}

// lastTokenBefore returns the nearest token that ends at or before the
// cursor, skipping the cursor's own partial token. ok is false when no such
// token exists.
func (b *Buffer) lastTokenBefore() (token.Token, bool) {
	i := b.CursorToken - 1
	for i >= 0 {
		if b.Tokens[i].To <= b.Cursor {
			return b.Tokens[i], true
		}
		i--
	}
	return token.Token{}, false
}

// --- lexer helpers ---

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isIdentStart(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || c == '_' || c >= 0x80
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

// lexLineComment scans "-- ..." to the end of line. The newline is not part
// of the token. open is true when the comment runs to end-of-buffer, since
// typing at the buffer end would continue it.
func lexLineComment(sql string, start int) (token.Token, bool) {
	i := start + 2
	for i < len(sql) && sql[i] != '\n' {
		i++
	}
	open := i == len(sql)
	return token.Token{Value: sql[start:i], Kind: token.Comment, From: start, To: i}, open
}

func lexBlockComment(sql string, start int) (token.Token, bool) {
	i := start + 2
	for i < len(sql) {
		if sql[i] == '*' && i+1 < len(sql) && sql[i+1] == '/' {
			i += 2
			return token.Token{Value: sql[start:i], Kind: token.Comment, From: start, To: i}, false
		}
		i++
	}
	return token.Token{Value: sql[start:], Kind: token.Comment, From: start, To: len(sql)}, true
}

// lexString scans a single-quoted literal. Doubled quotes escape: 'it''s'.
func lexString(sql string, start int) (token.Token, bool) {
	i := start + 1
	for i < len(sql) {
		if sql[i] == '\'' {
			if i+1 < len(sql) && sql[i+1] == '\'' {
				i += 2
				continue
			}
			i++
			return token.Token{Value: sql[start:i], Kind: token.String, From: start, To: i}, false
		}
		i++
	}
	return token.Token{Value: sql[start:], Kind: token.String, From: start, To: len(sql)}, true
}

// lexQuotedIdent scans a double-quoted identifier with doubled-quote escapes.
func lexQuotedIdent(sql string, start int) (token.Token, bool) {
	i := start + 1
	for i < len(sql) {
		if sql[i] == '"' {
			if i+1 < len(sql) && sql[i+1] == '"' {
				i += 2
				continue
			}
			i++
			return token.Token{Value: sql[start:i], Kind: token.Ident, From: start, To: i}, false
		}
		i++
	}
	return token.Token{Value: sql[start:], Kind: token.Ident, From: start, To: len(sql)}, true
}

// lexDollar scans dollar-quoted strings ($$...$$, $tag$...$tag$) and
// positional parameters ($1). A bare '$' degrades to punctuation.
func lexDollar(sql string, start int) (token.Token, bool) {
	// Try to read an opening tag: '$' [A-Za-z_0-9]* '$'.
	j := start + 1
	for j < len(sql) && isIdentPart(sql[j]) {
		j++
	}
	if j < len(sql) && sql[j] == '$' {
		tag := sql[start : j+1]
		if end := strings.Index(sql[j+1:], tag); end >= 0 {
			to := j + 1 + end + len(tag)
			return token.Token{Value: sql[start:to], Kind: token.String, From: start, To: to}, false
		}
		return token.Token{Value: sql[start:], Kind: token.String, From: start, To: len(sql)}, true
	}
	if start+1 < len(sql) && isDigit(sql[start+1]) {
		i := start + 1
		for i < len(sql) && isDigit(sql[i]) {
			i++
		}
		return token.Token{Value: sql[start:i], Kind: token.Number, From: start, To: i}, false
	}
	return token.Token{Value: sql[start : start+1], Kind: token.Punct, From: start, To: start + 1}, false
}

func lexNumber(sql string, start int) token.Token {
	i := start
	for i < len(sql) && isDigit(sql[i]) {
		i++
	}
	if i < len(sql) && sql[i] == '.' && i+1 < len(sql) && isDigit(sql[i+1]) {
		i++
		for i < len(sql) && isDigit(sql[i]) {
			i++
		}
	}
	if i < len(sql) && (sql[i] == 'e' || sql[i] == 'E') {
		j := i + 1
		if j < len(sql) && (sql[j] == '+' || sql[j] == '-') {
			j++
		}
		if j < len(sql) && isDigit(sql[j]) {
			i = j
			for i < len(sql) && isDigit(sql[i]) {
				i++
			}
		}
	}
	return token.Token{Value: sql[start:i], Kind: token.Number, From: start, To: i}
}

func lexWord(sql string, start int) token.Token {
	i := start
	for i < len(sql) && isIdentPart(sql[i]) {
		i++
	}
	word := sql[start:i]
	kind := token.Ident
	if token.IsKeyword(word) {
		kind = token.Keyword
	}
	return token.Token{Value: word, Kind: kind, From: start, To: i}
}

// lexOperator takes the longest match from the closed operator table. A
// lone continuation character ('!', '|', ':') still lexes as an operator so
// the section detector can see a mid-typed operator at the cursor.
func lexOperator(sql string, start int) token.Token {
	if start+2 <= len(sql) && token.IsOperator(sql[start:start+2]) {
		return token.Token{Value: sql[start : start+2], Kind: token.Operator, From: start, To: start + 2}
	}
	one := sql[start : start+1]
	if token.IsOperator(one) || token.OperatorContinuations(one) != nil {
		return token.Token{Value: one, Kind: token.Operator, From: start, To: start + 1}
	}
	return token.Token{Value: one, Kind: token.Punct, From: start, To: start + 1}
}
