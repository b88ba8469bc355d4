package token

import "testing"

func TestIsKeyword(t *testing.T) {
	tests := []struct {
		word     string
		expected bool
	}{
		{"select", true},
		{"SELECT", true},
		{"SeLeCt", true},
		{"from", true},
		{"lateral", true},
		{"recursive", true},
		{"users", false},
		{"selecting", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsKeyword(tt.word); got != tt.expected {
			t.Errorf("IsKeyword(%q): expected %v, got %v", tt.word, tt.expected, got)
		}
	}
}

func TestTokenIs(t *testing.T) {
	kw := Token{Value: "FROM", Kind: Keyword}
	if !kw.Is("from") {
		t.Error("keyword FROM should match 'from' case-insensitively")
	}
	if kw.Is("where") {
		t.Error("keyword FROM should not match 'where'")
	}

	ident := Token{Value: "from", Kind: Ident}
	if ident.Is("from") {
		t.Error("an identifier never matches as a keyword")
	}
}

func TestTokenIsPunct(t *testing.T) {
	p := Token{Value: "(", Kind: Punct}
	if !p.IsPunct("(") {
		t.Error("expected punct match for '('")
	}
	if p.IsPunct(")") {
		t.Error("'(' should not match ')'")
	}
	op := Token{Value: "*", Kind: Operator}
	if op.IsPunct("*") {
		t.Error("operators are not punctuation")
	}
}

func TestKindIsLiteral(t *testing.T) {
	if !Number.IsLiteral() || !String.IsLiteral() {
		t.Error("numbers and strings are literals")
	}
	if Ident.IsLiteral() || Keyword.IsLiteral() || Comment.IsLiteral() {
		t.Error("idents, keywords, and comments are not literals")
	}
}

func TestLeadingStatementType(t *testing.T) {
	tests := []struct {
		word     string
		expected StatementType
	}{
		{"select", StmtSelect},
		{"SELECT", StmtSelect},
		{"with", StmtSelect},
		{"insert", StmtInsert},
		{"update", StmtUpdate},
		{"delete", StmtDelete},
		{"create", StmtDDL},
		{"drop", StmtDDL},
		{"alter", StmtDDL},
		{"truncate", StmtDDL},
		{"explain", StmtUnknown},
		{"", StmtUnknown},
	}

	for _, tt := range tests {
		if got := LeadingStatementType(tt.word); got != tt.expected {
			t.Errorf("LeadingStatementType(%q): expected %v, got %v", tt.word, tt.expected, got)
		}
	}
}

func TestOperatorContinuations(t *testing.T) {
	tests := []struct {
		partial  string
		expected []string
	}{
		{"<", []string{"<=", "<>"}},
		{">", []string{">="}},
		{"!", []string{"!="}},
		{"|", []string{"||"}},
		{":", []string{"::"}},
		{"=", nil},
		{"<=", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := OperatorContinuations(tt.partial)
		if len(got) != len(tt.expected) {
			t.Errorf("OperatorContinuations(%q): expected %v, got %v", tt.partial, tt.expected, got)
			continue
		}
		for i := range got {
			if got[i] != tt.expected[i] {
				t.Errorf("OperatorContinuations(%q): expected %v, got %v", tt.partial, tt.expected, got)
				break
			}
		}
	}
}

func TestIsOperator(t *testing.T) {
	for _, op := range []string{"=", "<=", "<>", "!=", "||", "::", "*", "%"} {
		if !IsOperator(op) {
			t.Errorf("IsOperator(%q): expected true", op)
		}
	}
	for _, s := range []string{"!", "|", ":", "==", "=>", ""} {
		if IsOperator(s) {
			t.Errorf("IsOperator(%q): expected false", s)
		}
	}
}

func TestIsOperatorStart(t *testing.T) {
	for _, b := range []byte{'=', '<', '>', '!', '+', '-', '*', '/', '%', '|', ':'} {
		if !IsOperatorStart(b) {
			t.Errorf("IsOperatorStart(%q): expected true", b)
		}
	}
	for _, b := range []byte{'a', '0', '(', '.', ' ', ';'} {
		if IsOperatorStart(b) {
			t.Errorf("IsOperatorStart(%q): expected false", b)
		}
	}
}

func TestIsClauseKeyword(t *testing.T) {
	for _, w := range []string{"select", "FROM", "where", "group", "order", "limit", "set", "values", "into"} {
		if !IsClauseKeyword(w) {
			t.Errorf("IsClauseKeyword(%q): expected true", w)
		}
	}
	for _, w := range []string{"by", "and", "distinct", "users", ""} {
		if IsClauseKeyword(w) {
			t.Errorf("IsClauseKeyword(%q): expected false", w)
		}
	}
}
