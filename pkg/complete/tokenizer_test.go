package complete

import (
	"testing"

	"github.com/leapstack-labs/leapcomplete/pkg/token"
)

func TestTokenizeKinds(t *testing.T) {
	buf := Tokenize("SELECT id, 'x' FROM users WHERE n >= 1.5 -- done", 0)

	expected := []struct {
		value string
		kind  token.Kind
	}{
		{"SELECT", token.Keyword},
		{"id", token.Ident},
		{",", token.Punct},
		{"'x'", token.String},
		{"FROM", token.Keyword},
		{"users", token.Ident},
		{"WHERE", token.Keyword},
		{"n", token.Ident},
		{">=", token.Operator},
		{"1.5", token.Number},
		{"-- done", token.Comment},
	}

	if len(buf.Tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d: %v", len(expected), len(buf.Tokens), buf.Tokens)
	}
	for i, e := range expected {
		got := buf.Tokens[i]
		if got.Value != e.value || got.Kind != e.kind {
			t.Errorf("token %d: expected (%q, %v), got (%q, %v)", i, e.value, e.kind, got.Value, got.Kind)
		}
	}
}

func TestTokenizeOffsets(t *testing.T) {
	sql := "SELECT a.b"
	buf := Tokenize(sql, 0)
	for _, tok := range buf.Tokens {
		if sql[tok.From:tok.To] != tok.Value {
			t.Errorf("token %q: offsets [%d,%d) slice to %q", tok.Value, tok.From, tok.To, sql[tok.From:tok.To])
		}
	}
}

func TestTokenizeCursorClamp(t *testing.T) {
	buf := Tokenize("ab", 99)
	if buf.Cursor != 2 {
		t.Errorf("expected cursor clamped to 2, got %d", buf.Cursor)
	}
	buf = Tokenize("ab", -5)
	if buf.Cursor != 0 {
		t.Errorf("expected cursor clamped to 0, got %d", buf.Cursor)
	}
}

func TestTokenizeStrings(t *testing.T) {
	tests := []struct {
		sql   string
		value string
		kind  token.Kind
	}{
		{"SELECT 'it''s'", "'it''s'", token.String},
		{`SELECT "my ""col"""`, `"my ""col"""`, token.Ident},
		{"SELECT $$raw$$", "$$raw$$", token.String},
		{"SELECT $tag$x$tag$", "$tag$x$tag$", token.String},
		{"SELECT $1", "$1", token.Number},
		{"SELECT /* a\nb */ 1", "/* a\nb */", token.Comment},
	}

	for _, tt := range tests {
		buf := Tokenize(tt.sql, 0)
		if len(buf.Tokens) < 2 {
			t.Errorf("%q: expected at least 2 tokens, got %d", tt.sql, len(buf.Tokens))
			continue
		}
		got := buf.Tokens[1]
		if got.Value != tt.value || got.Kind != tt.kind {
			t.Errorf("%q: expected (%q, %v), got (%q, %v)", tt.sql, tt.value, tt.kind, got.Value, got.Kind)
		}
	}
}

func TestTokenizeOperators(t *testing.T) {
	buf := Tokenize("a<=b || c::int", 0)
	var ops []string
	for _, tok := range buf.Tokens {
		if tok.Kind == token.Operator {
			ops = append(ops, tok.Value)
		}
	}
	expected := []string{"<=", "||", "::"}
	if len(ops) != len(expected) {
		t.Fatalf("expected operators %v, got %v", expected, ops)
	}
	for i := range ops {
		if ops[i] != expected[i] {
			t.Errorf("operator %d: expected %q, got %q", i, expected[i], ops[i])
		}
	}
}

func TestTokenizeLoneContinuationChar(t *testing.T) {
	// A lone '!' is not a complete operator but must still lex as one so the
	// section detector can see a mid-typed "!=" at the cursor.
	buf := Tokenize("WHERE x !", 0)
	last := buf.Tokens[len(buf.Tokens)-1]
	if last.Value != "!" || last.Kind != token.Operator {
		t.Errorf("expected trailing '!' operator, got (%q, %v)", last.Value, last.Kind)
	}
}

func TestPartialToken(t *testing.T) {
	tests := []struct {
		sql      string
		cursor   int
		expected string
	}{
		{"SELECT us", 9, "us"},
		{"SELECT us", 8, "u"},
		{"SELECT us", 7, ""}, // cursor at the word's start: nothing typed yet
		{"SELECT ", 7, ""},
		{"SELECT username FROM t", 11, "user"},
		{"SEL", 3, "SEL"}, // mid-typed keyword prefix of SELECT is not a keyword
		{"SELECT 123", 9, ""},
		{"", 0, ""},
	}

	for _, tt := range tests {
		buf := Tokenize(tt.sql, tt.cursor)
		if got := buf.PartialToken(); got != tt.expected {
			t.Errorf("PartialToken(%q, %d): expected %q, got %q", tt.sql, tt.cursor, tt.expected, got)
		}
	}
}

func TestPartialTokenMidKeyword(t *testing.T) {
	// "FR" inside a buffer that later completes to FROM: the cursor token is
	// the keyword FROM, and the partial is its typed prefix.
	buf := Tokenize("SELECT x FROM t", 11)
	if got := buf.PartialToken(); got != "FR" {
		t.Errorf("expected partial %q, got %q", "FR", got)
	}
}

func TestInsideStringOrComment(t *testing.T) {
	tests := []struct {
		sql      string
		cursor   int
		expected bool
	}{
		{"SELECT 'hello", 13, true},   // open string, cursor at buffer end
		{"SELECT 'hello'", 14, false}, // closed string, cursor just past it
		{"SELECT 'hello'", 10, true},  // strictly inside
		{"SELECT 'hello'", 8, true},   // just past the opening quote
		{"SELECT 'hello'", 7, false},  // before the opening quote
		{"SELECT x -- note", 16, true},
		{"SELECT x -- note\ny", 18, false},
		{"SELECT /* c */ x", 10, true},
		{"SELECT /* c */ x", 16, false},
		{"SELECT /* open", 14, true},
		{"SELECT x", 8, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		buf := Tokenize(tt.sql, tt.cursor)
		if got := buf.InsideStringOrComment(); got != tt.expected {
			t.Errorf("InsideStringOrComment(%q, %d): expected %v, got %v", tt.sql, tt.cursor, tt.expected, got)
		}
	}
}

func TestTokensUpToCursor(t *testing.T) {
	buf := Tokenize("SELECT name FROM", 11)

	excl := buf.TokensUpToCursor(false)
	if len(excl) != 1 || !excl[0].Is("select") {
		t.Errorf("exclusive prefix: expected [SELECT], got %v", excl)
	}

	incl := buf.TokensUpToCursor(true)
	if len(incl) != 2 || incl[1].Value != "name" {
		t.Errorf("inclusive prefix: expected [SELECT name], got %v", incl)
	}
}

func TestTokenizeEmptyAndWhitespace(t *testing.T) {
	for _, sql := range []string{"", "   ", "\n\t "} {
		buf := Tokenize(sql, 0)
		if len(buf.Tokens) != 0 {
			t.Errorf("Tokenize(%q): expected no tokens, got %v", sql, buf.Tokens)
		}
		if buf.InsideStringOrComment() {
			t.Errorf("Tokenize(%q): blank buffer is never inside a string", sql)
		}
	}
}
