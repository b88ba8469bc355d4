package complete

import (
	"strings"

	"github.com/leapstack-labs/leapcomplete/pkg/token"
)

// CandidateKind classifies a completion candidate.
type CandidateKind int

const (
	CandidateKeyword CandidateKind = iota
	CandidateTable
	CandidateColumn
	CandidateAlias
	CandidateFunction
	CandidateSchema
	CandidateOperator
)

// String returns the candidate kind name.
func (k CandidateKind) String() string {
	switch k {
	case CandidateKeyword:
		return "keyword"
	case CandidateTable:
		return "table"
	case CandidateColumn:
		return "column"
	case CandidateAlias:
		return "alias"
	case CandidateFunction:
		return "function"
	case CandidateSchema:
		return "schema"
	case CandidateOperator:
		return "operator"
	default:
		return "unknown"
	}
}

// Candidate is one completion suggestion. Candidates live for a single
// pipeline invocation.
type Candidate struct {
	Value string
	Kind  CandidateKind

	// SourceTable names the scope entry a column came from, for display.
	SourceTable string

	// Detail is a short annotation: a column type or function signature.
	Detail string
}

// Keyword sets per position. Suggestions at an expression start differ from
// those after a completed expression; mixing the two is the main source of
// noisy completions, so the sets are kept strictly apart.
var (
	exprStartKeywords = map[Section][]string{
		SectionSelectList: {"DISTINCT", "CASE", "NOT", "NULL", "TRUE", "FALSE"},
		SectionWhere:      {"NOT", "EXISTS", "CASE", "NULL", "TRUE", "FALSE"},
		SectionGroupBy:    {},
		SectionHaving:     {"NOT", "CASE"},
		SectionOrderBy:    {"CASE"},
		SectionSet:        {},
	}

	afterExprKeywords = map[Section][]string{
		SectionSelectList: {"AS", "FROM"},
		SectionWhere:      {"AND", "OR", "NOT", "IN", "BETWEEN", "LIKE", "ILIKE", "IS", "GROUP BY", "ORDER BY"},
		SectionHaving:     {"AND", "OR", "ORDER BY"},
		SectionGroupBy:    {"HAVING", "ORDER BY", "LIMIT"},
		SectionOrderBy:    {"ASC", "DESC", "NULLS FIRST", "NULLS LAST", "LIMIT"},
		SectionSet:        {"WHERE"},
	}

	afterNotKeywords = []string{"IN", "BETWEEN", "LIKE", "ILIKE", "EXISTS", "NULL"}

	joinKeywords = []string{
		"JOIN", "LEFT JOIN", "RIGHT JOIN", "INNER JOIN", "FULL JOIN", "CROSS JOIN",
		"WHERE", "GROUP BY", "ORDER BY", "LIMIT", "ON", "USING",
	}

	statementStartKeywords = []string{
		"SELECT", "INSERT INTO", "UPDATE", "DELETE FROM", "WITH", "CREATE", "DROP", "ALTER",
	}
)

// GenerateCandidates produces the raw, unranked candidate set for the
// detected section and scope. Filtering against the partial token happens
// later, in the orchestrator; category isolation happens here.
func GenerateCandidates(ctx Context, scope ScopeInfo, schema *Schema) []Candidate {
	// A mid-typed multi-character operator admits only its continuations.
	if ctx.PartialOperator != "" {
		var out []Candidate
		for _, op := range token.OperatorContinuations(ctx.PartialOperator) {
			out = append(out, Candidate{Value: op, Kind: CandidateOperator})
		}
		return out
	}

	switch ctx.Section {
	case SectionSelectList, SectionWhere, SectionGroupBy, SectionHaving,
		SectionOrderBy, SectionSet:
		return expressionCandidates(ctx, scope, schema)
	case SectionFrom:
		return fromCandidates(ctx, scope, schema)
	case SectionInto:
		return tableCandidates(ctx, scope, schema, false)
	case SectionValues, SectionLimit:
		return nil
	default:
		return unknownSectionCandidates(ctx)
	}
}

// expressionCandidates covers the clause sections whose grammar expects an
// expression: column references, functions, and position-gated keywords.
func expressionCandidates(ctx Context, scope ScopeInfo, schema *Schema) []Candidate {
	var out []Candidate

	if ctx.TablePrefix != "" {
		return qualifiedColumnCandidates(ctx, scope, schema)
	}

	// Columns from every visible entry.
	for i := range scope.Entries {
		e := &scope.Entries[i]
		out = append(out, columnCandidatesOf(e)...)
	}

	// Entry names themselves, for building qualified references.
	for i := range scope.Entries {
		e := &scope.Entries[i]
		kind := CandidateTable
		if e.Alias != "" {
			kind = CandidateAlias
		}
		out = append(out, Candidate{Value: e.EffectiveName(), Kind: kind})
	}

	// Functions are valid wherever an expression is.
	if schema != nil {
		for i := range schema.Functions {
			f := &schema.Functions[i]
			out = append(out, Candidate{Value: f.Name, Kind: CandidateFunction, Detail: f.Signature()})
		}
	}

	switch {
	case ctx.AfterNot:
		out = append(out, keywordCandidates(afterNotKeywords)...)
	case ctx.AfterComma, ctx.AfterOperator, ctx.TypingOperator:
		// Another expression is expected; keywords would be noise.
	case ctx.AfterCompletedIdent || ctx.AfterCompletedExpr:
		out = append(out, keywordCandidates(afterExprKeywords[ctx.Section])...)
		if ctx.Section == SectionWhere || ctx.Section == SectionHaving || ctx.Section == SectionSet {
			for _, op := range token.ComparisonOperators {
				out = append(out, Candidate{Value: op, Kind: CandidateOperator})
			}
		}
	case ctx.AfterOrderModifier:
		out = append(out, keywordCandidates([]string{"NULLS FIRST", "NULLS LAST", "LIMIT"})...)
	default:
		out = append(out, keywordCandidates(exprStartKeywords[ctx.Section])...)
	}

	return out
}

// qualifiedColumnCandidates restricts completion to the single table or
// alias named by the prefix.
func qualifiedColumnCandidates(ctx Context, scope ScopeInfo, schema *Schema) []Candidate {
	prefix := strings.TrimSuffix(ctx.TablePrefix, ".")

	if e := scope.Resolve(prefix); e != nil {
		return columnCandidatesOf(e)
	}

	// schema.table. where the table is reachable but not in scope.
	if qualifier, name, ok := strings.Cut(prefix, "."); ok {
		if t := schema.TableNamed(qualifier, name); t != nil {
			return snapshotColumns(t)
		}
	}
	if t := schema.TableNamed("", prefix); t != nil {
		return snapshotColumns(t)
	}
	return nil
}

func columnCandidatesOf(e *ScopeEntry) []Candidate {
	if e.Table != nil {
		out := snapshotColumns(e.Table)
		for i := range out {
			out[i].SourceTable = e.EffectiveName()
		}
		return out
	}
	var out []Candidate
	for _, name := range e.Columns {
		out = append(out, Candidate{Value: name, Kind: CandidateColumn, SourceTable: e.EffectiveName()})
	}
	return out
}

func snapshotColumns(t *Table) []Candidate {
	out := make([]Candidate, 0, len(t.Columns))
	for _, c := range t.Columns {
		out = append(out, Candidate{
			Value:       c.Name,
			Kind:        CandidateColumn,
			SourceTable: t.Name,
			Detail:      c.Type,
		})
	}
	return out
}

// fromCandidates covers the FROM/JOIN section: tables, schemas, CTEs, and
// join keywords once a table reference is complete.
func fromCandidates(ctx Context, scope ScopeInfo, schema *Schema) []Candidate {
	out := tableCandidates(ctx, scope, schema, true)

	if ctx.AfterCompletedIdent || ctx.AfterCompletedExpr {
		out = append(out, keywordCandidates(joinKeywords)...)
	}
	return out
}

// tableCandidates lists completable table references. includeCTEs is false
// for INSERT INTO, where a CTE is not a valid target.
func tableCandidates(ctx Context, scope ScopeInfo, schema *Schema, includeCTEs bool) []Candidate {
	var out []Candidate

	if ctx.TablePrefix != "" {
		qualifier := strings.TrimSuffix(ctx.TablePrefix, ".")
		if schema != nil {
			for i := range schema.Tables {
				t := &schema.Tables[i]
				if strings.EqualFold(t.Schema, qualifier) {
					out = append(out, Candidate{Value: t.Name, Kind: CandidateTable, SourceTable: t.Schema})
				}
			}
		}
		return out
	}

	if schema != nil {
		for i := range schema.Tables {
			t := &schema.Tables[i]
			out = append(out, Candidate{Value: t.Name, Kind: CandidateTable, SourceTable: t.Schema})
		}
		for _, name := range schema.SchemaNames() {
			out = append(out, Candidate{Value: name, Kind: CandidateSchema})
		}
	}

	if includeCTEs {
		for i := range scope.Entries {
			e := &scope.Entries[i]
			if e.Origin == OriginCTE && e.Alias == "" {
				out = append(out, Candidate{Value: e.Name, Kind: CandidateTable})
			}
		}
	}
	return out
}

// unknownSectionCandidates handles positions outside a recognized clause: a
// fresh statement, or the gap after a set-operation keyword.
func unknownSectionCandidates(ctx Context) []Candidate {
	switch ctx.LastKeyword {
	case "union", "intersect", "except":
		return keywordCandidates([]string{"SELECT", "ALL", "DISTINCT"})
	case "":
		return keywordCandidates(statementStartKeywords)
	default:
		return nil
	}
}

func keywordCandidates(words []string) []Candidate {
	out := make([]Candidate, 0, len(words))
	for _, w := range words {
		out = append(out, Candidate{Value: w, Kind: CandidateKeyword})
	}
	return out
}
