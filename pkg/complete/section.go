package complete

import (
	"strings"

	"github.com/leapstack-labs/leapcomplete/pkg/token"
)

// Section is the SQL clause the cursor currently occupies.
type Section int

const (
	SectionUnknown Section = iota
	SectionSelectList
	SectionFrom
	SectionWhere
	SectionGroupBy
	SectionHaving
	SectionOrderBy
	SectionSet
	SectionValues
	SectionInto
	SectionLimit
)

// String returns the section name.
func (s Section) String() string {
	switch s {
	case SectionSelectList:
		return "select-list"
	case SectionFrom:
		return "from"
	case SectionWhere:
		return "where"
	case SectionGroupBy:
		return "group-by"
	case SectionHaving:
		return "having"
	case SectionOrderBy:
		return "order-by"
	case SectionSet:
		return "set"
	case SectionValues:
		return "values"
	case SectionInto:
		return "into"
	case SectionLimit:
		return "limit"
	default:
		return "unknown"
	}
}

// Context is the classified cursor state the candidate generator works from.
// Classification never fails; when the cursor context is ambiguous the
// section is SectionUnknown and the flags carry whatever could still be
// derived.
type Context struct {
	Section   Section
	Statement token.StatementType

	// Boundary flags, derived from the one or two tokens before the cursor.
	AtKeywordBoundary   bool
	AfterComma          bool
	AfterOperator       bool
	AfterCompletedIdent bool
	AfterCompletedExpr  bool
	TypingOperator      bool
	AfterNot            bool
	AfterOrderModifier  bool

	// PartialOperator is the mid-typed operator at the cursor ("<" while
	// heading for "<="), empty otherwise.
	PartialOperator string

	// PartialToken is the in-progress word at the cursor, if any.
	PartialToken string

	// LastKeyword is the nearest same-depth keyword before the cursor,
	// lowercased. Useful for keyword chaining (UNION -> SELECT).
	LastKeyword string

	// TablePrefix is a qualified prefix immediately before the partial
	// token: "alias." or "schema.table.". Empty when unqualified.
	TablePrefix string

	// Depth is the cursor's parenthesis nesting level.
	Depth int

	// Node is the structural node containing the cursor. Not owned.
	Node *Node

	// Parent is the context of the enclosing query when the cursor sits
	// inside a subquery or CTE body, nil at the top level.
	Parent *Context
}

// DetectSection classifies the cursor position against the token stream and
// structural tree. It is total: empty input yields SectionUnknown.
func DetectSection(buf Buffer, tree *Node) Context {
	ctx := detectAt(buf, tree, buf.Cursor)

	// Resolve the parent context one level out, for subqueries.
	if ctx.Node != nil {
		q := ctx.Node.EnclosingQuery()
		if q != nil && q.Parent != nil {
			parent := detectAt(buf, tree, q.From)
			ctx.Parent = &parent
		}
	}
	return ctx
}

// detectAt classifies the position at the given byte offset.
func detectAt(buf Buffer, tree *Node, offset int) Context {
	ctx := Context{Section: SectionUnknown, Statement: token.StmtUnknown}
	if tree != nil {
		ctx.Node = tree.Find(offset)
		ctx.Depth = ctx.Node.ParenDepth()
	}
	if len(buf.Tokens) == 0 {
		return ctx
	}

	if offset == buf.Cursor {
		ctx.PartialToken = buf.PartialToken()
	}

	before := tokensBefore(buf, offset, ctx.PartialToken != "")
	ctx.Statement = statementTypeFor(buf.Tokens, ctx.Node)
	ctx.Section, ctx.LastKeyword = scanSection(buf.Tokens, before)
	deriveFlags(&ctx, buf, before, offset)
	ctx.TablePrefix = tablePrefix(buf.Tokens, before)

	return ctx
}

// tokensBefore returns the index one past the last token that ends at or
// before offset, excluding the cursor's partial token when present.
func tokensBefore(buf Buffer, offset int, hasPartial bool) int {
	i := len(buf.Tokens)
	for i > 0 && buf.Tokens[i-1].To > offset {
		i--
	}
	if hasPartial && offset == buf.Cursor {
		// A partial word the cursor touches at its end survives the loop
		// above (its To equals offset); drop it so the flags are derived
		// from the token before the word being typed.
		if i > 0 && buf.Tokens[i-1].From < offset && buf.Tokens[i-1].To >= offset &&
			(buf.Tokens[i-1].Kind == token.Ident || buf.Tokens[i-1].Kind == token.Keyword) {
			i--
		}
	}
	return i
}

// statementTypeFor finds the leading keyword of the enclosing query level.
func statementTypeFor(tokens []token.Token, node *Node) token.StatementType {
	if node == nil {
		if len(tokens) > 0 && tokens[0].Kind == token.Keyword {
			return token.LeadingStatementType(tokens[0].Value)
		}
		return token.StmtUnknown
	}
	q := node.EnclosingQuery()
	i := q.TokFrom
	if i < len(tokens) && tokens[i].IsPunct("(") {
		i++
	}
	// Skip a WITH prologue: the statement type comes from the main body,
	// which WITH can only prefix with a query.
	if i < len(tokens) && tokens[i].Kind == token.Keyword {
		return token.LeadingStatementType(tokens[i].Value)
	}
	return token.StmtUnknown
}

// scanSection walks tokens backward from index end (exclusive), staying at
// the cursor's parenthesis level, and returns the section introduced by the
// nearest clause keyword. Child groups are skipped wholesale; the scan stops
// when it would leave the cursor's own group or cross a statement boundary.
func scanSection(tokens []token.Token, end int) (Section, string) {
	depth := 0
	lastKeyword := ""
	for i := end - 1; i >= 0; i-- {
		t := tokens[i]
		switch {
		case t.IsPunct(")"):
			depth++
		case t.IsPunct("("):
			if depth == 0 {
				return SectionUnknown, lastKeyword
			}
			depth--
		case t.IsPunct(";") && depth == 0:
			return SectionUnknown, lastKeyword
		case t.Kind == token.Keyword && depth == 0:
			word := strings.ToLower(t.Value)
			if lastKeyword == "" {
				lastKeyword = word
			}
			switch word {
			case "select", "distinct":
				return SectionSelectList, lastKeyword
			case "from", "join", "using":
				return SectionFrom, lastKeyword
			case "where", "on":
				return SectionWhere, lastKeyword
			case "having":
				return SectionHaving, lastKeyword
			case "set":
				return SectionSet, lastKeyword
			case "values":
				return SectionValues, lastKeyword
			case "into":
				return SectionInto, lastKeyword
			case "limit", "offset":
				return SectionLimit, lastKeyword
			case "by":
				// GROUP BY / ORDER BY / PARTITION BY: look one further.
				if i > 0 && depth == 0 {
					switch {
					case tokens[i-1].Is("group"):
						return SectionGroupBy, lastKeyword
					case tokens[i-1].Is("order"):
						return SectionOrderBy, lastKeyword
					case tokens[i-1].Is("partition"):
						return SectionGroupBy, lastKeyword
					}
				}
				return SectionUnknown, lastKeyword
			case "union", "intersect", "except":
				// Between branches: a new select body is expected.
				return SectionUnknown, lastKeyword
			}
		}
	}
	return SectionUnknown, lastKeyword
}

// deriveFlags inspects the one or two tokens immediately before the cursor.
func deriveFlags(ctx *Context, buf Buffer, before int, offset int) {
	if before == 0 {
		return
	}
	prev := buf.Tokens[before-1]
	touching := prev.To == offset

	switch {
	case prev.IsPunct(","):
		ctx.AfterComma = true
	case prev.Kind == token.Operator:
		if touching {
			ctx.TypingOperator = true
			if token.OperatorContinuations(prev.Value) != nil {
				ctx.PartialOperator = prev.Value
			}
		} else {
			ctx.AfterOperator = true
		}
	case prev.Is("not"):
		ctx.AfterNot = true
		ctx.AtKeywordBoundary = !touching
	case prev.Is("asc") || prev.Is("desc") ||
		prev.Is("nulls") || prev.Is("first") || prev.Is("last"):
		ctx.AfterOrderModifier = ctx.Section == SectionOrderBy
		ctx.AtKeywordBoundary = !touching
	case prev.Kind == token.Keyword:
		ctx.AtKeywordBoundary = !touching && ctx.PartialToken == ""
	case prev.Kind == token.Ident && !touching && ctx.PartialToken == "":
		ctx.AfterCompletedIdent = true
	case prev.IsPunct(")") || (prev.Kind.IsLiteral() && !buf.openTrailer):
		ctx.AfterCompletedExpr = true
	}
}

// tablePrefix captures an "alias." or "schema.table." prefix immediately
// before the cursor's partial token (or the cursor itself). The dot must
// directly abut the identifiers, which rules out matches across clause
// boundaries by construction.
func tablePrefix(tokens []token.Token, before int) string {
	i := before - 1
	if i < 0 || !tokens[i].IsPunct(".") {
		return ""
	}

	var parts []string
	for i >= 0 && tokens[i].IsPunct(".") {
		if i == 0 || tokens[i-1].To != tokens[i].From {
			break
		}
		t := tokens[i-1]
		if t.Kind != token.Ident && t.Kind != token.Keyword {
			break
		}
		parts = append([]string{t.Value}, parts...)
		i -= 2
		if i >= 0 && tokens[i].To != tokens[i+1].From {
			break
		}
	}
	if len(parts) == 0 {
		return ""
	}
	if len(parts) > 2 {
		parts = parts[len(parts)-2:]
	}
	return strings.Join(parts, ".") + "."
}
