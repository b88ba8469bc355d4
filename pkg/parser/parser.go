// Package parser provides the grammar-level statement parser backing the
// completion engine's statement splitter. It validates top-level statement
// shape and reports per-statement start offsets; it deliberately does not
// build a full expression AST, since the completion core recovers structure
// on its own.
package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapcomplete/pkg/complete"
	"github.com/leapstack-labs/leapcomplete/pkg/token"
)

// Statement is one parsed top-level statement.
type Statement struct {
	Type token.StatementType

	// From/To bound the statement's source text, including its terminating
	// semicolon when present.
	From, To int
}

// Script is the parse result for a whole buffer.
type Script struct {
	Statements []Statement
}

// Starts returns the start offset of each statement.
func (s *Script) Starts() []int {
	out := make([]int, len(s.Statements))
	for i, stmt := range s.Statements {
		out[i] = stmt.From
	}
	return out
}

type parser struct {
	sql  string
	toks []token.Token
	pos  int
	errs []*ParseError
}

// Parse splits the buffer into statements and validates their top-level
// shape. On malformed input it returns the statements recognized so far
// together with the first error.
func Parse(sql string) (*Script, error) {
	buf := complete.Tokenize(sql, 0)
	p := &parser{sql: sql, toks: buf.Tokens}

	script := &Script{}
	for !p.atEnd() {
		if p.skipSeparators() {
			continue
		}
		stmt := p.parseStatement()
		script.Statements = append(script.Statements, stmt)
	}

	if len(p.errs) > 0 {
		return script, p.errs[0]
	}
	return script, nil
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *parser) cur() token.Token { return p.toks[p.pos] }

// skipSeparators consumes semicolons and comments between statements.
func (p *parser) skipSeparators() bool {
	skipped := false
	for !p.atEnd() {
		t := p.cur()
		if t.IsPunct(";") || t.Kind == token.Comment {
			p.pos++
			skipped = true
			continue
		}
		break
	}
	return skipped
}

// parseStatement consumes one statement through its terminating semicolon,
// checking that it opens with a statement keyword and that parens balance.
func (p *parser) parseStatement() Statement {
	first := p.cur()
	stmt := Statement{From: first.From, To: len(p.sql)}

	if !isStatementKeyword(first) {
		p.addError(first.From, "expected statement keyword, got %q", first.Value)
		p.recover()
		stmt.To = p.endOffset()
		return stmt
	}
	stmt.Type = token.LeadingStatementType(first.Value)

	depth := 0
	for !p.atEnd() {
		t := p.cur()
		switch {
		case t.IsPunct("("):
			depth++
		case t.IsPunct(")"):
			depth--
			if depth < 0 {
				p.addError(t.From, "unbalanced closing paren")
				depth = 0
			}
		case t.IsPunct(";") && depth == 0:
			p.pos++
			stmt.To = t.To
			return stmt
		}
		p.pos++
	}
	if depth > 0 {
		p.addError(len(p.sql), "unclosed paren at end of input")
	}
	stmt.To = len(p.sql)
	return stmt
}

// recover skips forward to the next semicolon at depth zero so later
// statements still parse after an error.
func (p *parser) recover() {
	depth := 0
	for !p.atEnd() {
		t := p.cur()
		switch {
		case t.IsPunct("("):
			depth++
		case t.IsPunct(")"):
			if depth > 0 {
				depth--
			}
		case t.IsPunct(";") && depth == 0:
			p.pos++
			return
		}
		p.pos++
	}
}

func (p *parser) endOffset() int {
	if p.pos > 0 && p.pos <= len(p.toks) {
		return p.toks[p.pos-1].To
	}
	return len(p.sql)
}

func (p *parser) addError(offset int, format string, args ...any) {
	p.errs = append(p.errs, &ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...)})
}

var statementKeywords = []string{
	"select", "with", "insert", "update", "delete", "create", "drop", "alter",
	"truncate", "explain", "show", "describe", "set", "begin", "commit",
	"rollback", "grant", "revoke", "copy", "values", "merge", "vacuum",
	"analyze", "pragma", "use",
}

// isStatementKeyword accepts identifier-shaped entries too: the lexer's
// keyword set is scoped to query grammar, so words like EXPLAIN or BEGIN
// arrive as identifiers.
func isStatementKeyword(t token.Token) bool {
	if t.Kind != token.Keyword && t.Kind != token.Ident {
		return false
	}
	word := strings.ToLower(t.Value)
	for _, kw := range statementKeywords {
		if word == kw {
			return true
		}
	}
	return false
}
