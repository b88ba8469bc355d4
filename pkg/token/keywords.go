package token

import "strings"

// keywords is the fixed SQL keyword set. The tokenizer classifies an
// identifier as a keyword iff its lowercase form appears here; the set is
// never schema-dependent.
var keywords = map[string]struct{}{
	"all": {}, "alter": {}, "and": {}, "as": {}, "asc": {},
	"between": {}, "by": {},
	"case": {}, "cast": {}, "create": {}, "cross": {}, "current": {},
	"delete": {}, "desc": {}, "distinct": {}, "drop": {},
	"else": {}, "end": {}, "except": {}, "exists": {},
	"false": {}, "filter": {}, "first": {}, "following": {}, "from": {}, "full": {},
	"group": {}, "groups": {},
	"having": {},
	"ilike":  {}, "in": {}, "index": {}, "inner": {}, "insert": {}, "intersect": {}, "into": {}, "is": {},
	"join": {},
	"last": {}, "lateral": {}, "left": {}, "like": {}, "limit": {},
	"not": {}, "null": {}, "nulls": {},
	"offset": {}, "on": {}, "or": {}, "order": {}, "outer": {}, "over": {},
	"partition": {}, "preceding": {},
	"range": {}, "recursive": {}, "right": {}, "row": {}, "rows": {},
	"select": {}, "set": {},
	"table": {}, "then": {}, "true": {}, "truncate": {},
	"unbounded": {}, "union": {}, "update": {}, "using": {},
	"values": {}, "view": {},
	"when": {}, "where": {}, "window": {}, "with": {}, "within": {},
}

// IsKeyword reports whether word is in the fixed keyword set.
func IsKeyword(word string) bool {
	_, ok := keywords[strings.ToLower(word)]
	return ok
}

// clauseKeywords are keywords that introduce a top-level clause within a
// SELECT-shaped statement. GROUP and ORDER stand in for their two-word
// forms; the section detector pairs them with the following BY.
var clauseKeywords = map[string]struct{}{
	"select": {}, "from": {}, "where": {}, "group": {}, "having": {},
	"order": {}, "limit": {}, "offset": {}, "window": {},
	"join": {}, "on": {}, "using": {}, "set": {}, "values": {}, "into": {},
}

// IsClauseKeyword reports whether word introduces a clause.
func IsClauseKeyword(word string) bool {
	_, ok := clauseKeywords[strings.ToLower(word)]
	return ok
}

// FoldableClauses lists the top-level clause keywords that delimit fold
// regions inside a SELECT statement, in no particular order. Two-word
// clauses are identified by their first keyword.
var FoldableClauses = []string{"select", "from", "where", "group", "having", "order"}

// StatementType classifies a statement by its leading keyword.
type StatementType int

const (
	StmtUnknown StatementType = iota
	StmtSelect
	StmtInsert
	StmtUpdate
	StmtDelete
	StmtDDL
)

// String returns the statement type name.
func (s StatementType) String() string {
	switch s {
	case StmtSelect:
		return "SELECT"
	case StmtInsert:
		return "INSERT"
	case StmtUpdate:
		return "UPDATE"
	case StmtDelete:
		return "DELETE"
	case StmtDDL:
		return "DDL"
	default:
		return "UNKNOWN"
	}
}

// LeadingStatementType maps a statement's first keyword to its type.
// WITH resolves to SELECT because a WITH prologue can only introduce a
// query here.
func LeadingStatementType(word string) StatementType {
	switch strings.ToLower(word) {
	case "select", "with":
		return StmtSelect
	case "insert":
		return StmtInsert
	case "update":
		return StmtUpdate
	case "delete":
		return StmtDelete
	case "create", "drop", "alter", "truncate":
		return StmtDDL
	default:
		return StmtUnknown
	}
}
