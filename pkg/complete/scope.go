package complete

import (
	"strings"

	"github.com/leapstack-labs/leapcomplete/pkg/token"
)

// ScopeOrigin tags how an entry became visible at the cursor.
type ScopeOrigin int

const (
	// OriginFrom is a plain FROM item of the cursor's own query level.
	OriginFrom ScopeOrigin = iota
	// OriginJoin is a JOIN item of the cursor's own query level.
	OriginJoin
	// OriginCTE is a WITH-defined pseudo-table.
	OriginCTE
	// OriginOuter is a correlated table from an enclosing query.
	OriginOuter
	// OriginTarget is the target table of an INSERT/UPDATE/DELETE.
	OriginTarget
)

// ScopeEntry is one table-like name visible at the cursor.
type ScopeEntry struct {
	// Name is the bare table or CTE name; Schema its optional qualifier.
	Name   string
	Schema string
	// Alias is the explicit alias, when one was written.
	Alias  string
	Origin ScopeOrigin

	// Table is the snapshot table backing this entry, nil for CTEs,
	// subqueries, and unknown names.
	Table *Table

	// Columns are the resolvable column names when Table is nil (CTE or
	// subquery output list). Empty with Opaque set when the output is not
	// statically determinable.
	Columns []string
	Opaque  bool
}

// EffectiveName is the name this entry answers to: the alias when present,
// else the bare name.
func (e *ScopeEntry) EffectiveName() string {
	if e.Alias != "" {
		return e.Alias
	}
	return e.Name
}

// ColumnNames returns the entry's columns, from the snapshot table or the
// derived output list. Nil for opaque entries.
func (e *ScopeEntry) ColumnNames() []string {
	if e.Table != nil {
		names := make([]string, len(e.Table.Columns))
		for i, c := range e.Table.Columns {
			names[i] = c.Name
		}
		return names
	}
	return e.Columns
}

// ScopeInfo is the resolved visibility at the cursor: entries ordered
// innermost scope first, preserving source order within a level.
type ScopeInfo struct {
	Entries []ScopeEntry
}

// Resolve finds the entry a name refers to. The closest scope wins, and
// within the whole scope an explicit alias shadows a bare table name.
func (s *ScopeInfo) Resolve(name string) *ScopeEntry {
	for i := range s.Entries {
		if s.Entries[i].Alias != "" && strings.EqualFold(s.Entries[i].Alias, name) {
			return &s.Entries[i]
		}
	}
	for i := range s.Entries {
		e := &s.Entries[i]
		if strings.EqualFold(e.Name, name) || strings.EqualFold(e.Schema+"."+e.Name, name) {
			return e
		}
	}
	return nil
}

// AnalyzeScope resolves which tables, aliases, and CTEs are visible at the
// cursor. It walks outward from the cursor's structural node, collecting
// FROM/JOIN items per enclosing query level and the statement's CTEs, and
// degrades to a partial or empty result on malformed input.
func AnalyzeScope(ctx Context, buf Buffer, tree *Node, schema *Schema) ScopeInfo {
	var info ScopeInfo
	if len(buf.Tokens) == 0 || ctx.Node == nil {
		return info
	}

	stmtFrom, stmtTo := statementTokenBounds(buf.Tokens, buf.Cursor)
	ctes := collectCTEs(buf, stmtFrom, stmtTo)

	resolve := func(e *ScopeEntry) {
		// A bare name that matches a CTE binds to the CTE, not the
		// snapshot; the CTE is the closer definition.
		if e.Schema == "" {
			for i := range ctes {
				if strings.EqualFold(ctes[i].name, e.Name) && ctes[i].visibleAt(buf.Cursor) {
					e.Origin = OriginCTE
					e.Columns = ctes[i].columns
					e.Opaque = ctes[i].opaque
					return
				}
			}
		}
		e.Table = schema.TableNamed(e.Schema, e.Name)
	}

	for li, level := range queryLevels(ctx.Node) {
		from, to := level.TokFrom, level.TokTo
		switch level.Kind {
		case NodeStatement:
			// The root node spans the whole buffer; clamp to the cursor's
			// statement so neighbors do not leak into scope.
			if from < stmtFrom {
				from = stmtFrom
			}
			if to > stmtTo {
				to = stmtTo
			}
		case NodeSubquery, NodeCTEBody:
			// The node's range includes its own opening paren; step past it
			// so the level scan does not skip the whole body as a group.
			from++
		}
		entries := collectLevelEntries(buf.Tokens, from, to)
		for i := range entries {
			if li > 0 {
				entries[i].Origin = OriginOuter
			}
			resolve(&entries[i])
		}
		info.Entries = append(info.Entries, entries...)
	}

	// CTEs themselves are completable as table names wherever visible.
	for i := range ctes {
		if !ctes[i].visibleAt(buf.Cursor) {
			continue
		}
		info.Entries = append(info.Entries, ScopeEntry{
			Name:    ctes[i].name,
			Origin:  OriginCTE,
			Columns: ctes[i].columns,
			Opaque:  ctes[i].opaque,
		})
	}

	return info
}

// queryLevels returns the cursor's query level and each enclosing level,
// innermost first. A set-operation branch is its own level (sibling
// branches do not share scope); its parent query is skipped since the
// branch ranges already partition its tokens.
func queryLevels(node *Node) []*Node {
	var levels []*Node
	for n := node; n != nil; n = n.Parent {
		switch n.Kind {
		case NodeSetBranch:
			levels = append(levels, n)
			n = n.Parent // skip the query the branches partition
			if n == nil {
				return levels
			}
		case NodeStatement, NodeSubquery, NodeCTEBody:
			levels = append(levels, n)
		}
	}
	return levels
}

// statementTokenBounds returns the half-open token range of the statement
// containing the cursor in a semicolon-delimited multi-statement buffer.
func statementTokenBounds(tokens []token.Token, cursor int) (int, int) {
	start, end := 0, len(tokens)
	depth := 0
	for i, t := range tokens {
		switch {
		case t.IsPunct("("):
			depth++
		case t.IsPunct(")"):
			if depth > 0 {
				depth--
			}
		case t.IsPunct(";") && depth == 0:
			if t.To <= cursor {
				start = i + 1
			} else {
				return start, i + 1
			}
		}
	}
	return start, end
}

// collectLevelEntries scans one query level's token range at local depth
// and extracts FROM items, JOIN items, and DML target tables.
func collectLevelEntries(tokens []token.Token, from, to int) []ScopeEntry {
	var entries []ScopeEntry
	if to > len(tokens) {
		to = len(tokens)
	}

	i := from
	for i < to {
		t := tokens[i]
		switch {
		case t.IsPunct("("):
			i = matchingClose(tokens, i, to)
			continue
		case t.IsPunct(";"):
			return entries
		case t.Kind == token.Keyword:
			switch {
			case t.Is("from"):
				var items []ScopeEntry
				items, i = parseFromList(tokens, i+1, to)
				entries = append(entries, items...)
				continue
			case t.Is("update"):
				if e, next, ok := parseTableRef(tokens, i+1, to); ok {
					e.Origin = OriginTarget
					entries = append(entries, e)
					i = next
					continue
				}
			case t.Is("into"):
				if e, next, ok := parseTableRef(tokens, i+1, to); ok {
					e.Origin = OriginTarget
					entries = append(entries, e)
					i = next
					continue
				}
			}
		}
		i++
	}
	return entries
}

// parseFromList parses the items of a FROM clause, including joined tables,
// stopping at the next clause keyword at local depth. Returns the entries
// and the index where scanning should resume.
func parseFromList(tokens []token.Token, i, to int) ([]ScopeEntry, int) {
	var entries []ScopeEntry
	origin := OriginFrom

	for i < to {
		t := tokens[i]
		switch {
		case t.IsPunct(","):
			origin = OriginFrom
			i++
		case t.IsPunct("("):
			// Derived table: (SELECT ...) [AS] alias.
			close := matchingClose(tokens, i, to)
			e := ScopeEntry{Origin: origin}
			if cols, ok := selectOutputs(tokens, i+1, close-1); ok {
				e.Columns = cols
			} else {
				e.Opaque = true
			}
			var next int
			e.Alias, next = parseAlias(tokens, close, to)
			if e.Alias != "" {
				entries = append(entries, e)
			}
			i = next
		case t.Kind == token.Keyword:
			switch {
			case t.Is("join"):
				origin = OriginJoin
				i++
			case t.Is("inner"), t.Is("left"), t.Is("right"), t.Is("full"),
				t.Is("cross"), t.Is("outer"), t.Is("lateral"):
				i++
			case t.Is("on"):
				// Skip the join condition up to the next item boundary.
				i = skipCondition(tokens, i+1, to)
			case t.Is("using"):
				i++
				if i < to && tokens[i].IsPunct("(") {
					i = matchingClose(tokens, i, to)
				}
			default:
				// WHERE, GROUP, ORDER, UNION, ...: end of the FROM clause.
				return entries, i
			}
		case t.Kind == token.Ident:
			e, next, ok := parseTableRef(tokens, i, to)
			if !ok {
				return entries, i + 1
			}
			e.Origin = origin
			entries = append(entries, e)
			i = next
		default:
			return entries, i
		}
	}
	return entries, i
}

// parseTableRef parses "name", "schema.name", with an optional alias.
func parseTableRef(tokens []token.Token, i, to int) (ScopeEntry, int, bool) {
	if i >= to || tokens[i].Kind != token.Ident {
		return ScopeEntry{}, i, false
	}
	e := ScopeEntry{Name: unquoteIdent(tokens[i].Value)}
	i++

	if i+1 < to && tokens[i].IsPunct(".") && tokens[i+1].Kind == token.Ident {
		e.Schema = e.Name
		e.Name = unquoteIdent(tokens[i+1].Value)
		i += 2
	}

	e.Alias, i = parseAlias(tokens, i, to)
	return e, i, true
}

// parseAlias consumes "[AS] ident" when present.
func parseAlias(tokens []token.Token, i, to int) (string, int) {
	if i < to && tokens[i].Is("as") {
		i++
	}
	if i < to && tokens[i].Kind == token.Ident {
		return unquoteIdent(tokens[i].Value), i + 1
	}
	return "", i
}

// skipCondition advances past a join condition: everything up to the next
// comma, JOIN keyword, or clause keyword at local depth.
func skipCondition(tokens []token.Token, i, to int) int {
	for i < to {
		t := tokens[i]
		switch {
		case t.IsPunct("("):
			i = matchingClose(tokens, i, to)
			continue
		case t.IsPunct(","), t.IsPunct(";"):
			return i
		case t.Kind == token.Keyword:
			if t.Is("join") || t.Is("inner") || t.Is("left") || t.Is("right") ||
				t.Is("full") || t.Is("cross") ||
				(token.IsClauseKeyword(t.Value) && !t.Is("on")) {
				return i
			}
		}
		i++
	}
	return i
}

// matchingClose returns the index just past the ')' matching the '(' at i,
// or to when the group never closes.
func matchingClose(tokens []token.Token, i, to int) int {
	depth := 0
	for ; i < to; i++ {
		switch {
		case tokens[i].IsPunct("("):
			depth++
		case tokens[i].IsPunct(")"):
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return to
}

// selectOutputs derives the output column names of a SELECT body within
// [from, to). ok is false when the list is not statically determinable
// (star expansion, or no SELECT at all).
func selectOutputs(tokens []token.Token, from, to int) ([]string, bool) {
	if to > len(tokens) {
		to = len(tokens)
	}
	i := from
	// Skip a WITH prologue to the main SELECT.
	for i < to && !tokens[i].Is("select") {
		if tokens[i].IsPunct("(") {
			i = matchingClose(tokens, i, to)
			continue
		}
		i++
	}
	if i >= to {
		return nil, false
	}
	i++
	if i < to && (tokens[i].Is("distinct") || tokens[i].Is("all")) {
		i++
	}

	var cols []string
	itemStart := i
	var lastIdent string
	flush := func() {
		if lastIdent != "" {
			cols = append(cols, lastIdent)
		}
	}

	for ; i < to; i++ {
		t := tokens[i]
		switch {
		case t.IsPunct("("):
			i = matchingClose(tokens, i, to) - 1
		case t.Kind == token.Operator && t.Value == "*":
			if i == itemStart || (i > 0 && tokens[i-1].IsPunct(".")) {
				// "*" or "t.*": the output list is not statically known.
				return nil, false
			}
			// Multiplication inside an expression; the item needs an alias.
			lastIdent = ""
		case t.IsPunct(","):
			flush()
			itemStart = i + 1
			lastIdent = ""
		case t.Is("from") || (t.Kind == token.Keyword && token.IsClauseKeyword(t.Value) && !t.Is("select")):
			flush()
			return cols, true
		case t.Is("as"):
			if i+1 < to && tokens[i+1].Kind == token.Ident {
				lastIdent = unquoteIdent(tokens[i+1].Value)
				i++
			}
		case t.Kind == token.Ident:
			lastIdent = unquoteIdent(t.Value)
		case t.Kind.IsLiteral():
			lastIdent = ""
		}
	}
	flush()
	return cols, true
}

// cteDef is one WITH-prologue definition.
type cteDef struct {
	name      string
	columns   []string
	opaque    bool
	recursive bool
	// defFrom is where the definition begins; bodyFrom/bodyTo bound the
	// parenthesized body, in byte offsets.
	defFrom, bodyFrom, bodyTo int
}

// visibleAt reports whether the CTE can be referenced at the offset: after
// its body closes, or inside its own body when RECURSIVE.
func (c *cteDef) visibleAt(offset int) bool {
	if offset > c.bodyTo {
		return true
	}
	return c.recursive && offset > c.bodyFrom
}

// collectCTEs extracts the WITH-prologue definitions within the cursor's
// statement token range.
func collectCTEs(buf Buffer, stmtFrom, stmtTo int) []cteDef {
	tokens := buf.Tokens
	if stmtTo > len(tokens) {
		stmtTo = len(tokens)
	}
	var defs []cteDef

	for i := stmtFrom; i < stmtTo; i++ {
		if !tokens[i].Is("with") {
			continue
		}
		j := i + 1
		recursive := false
		if j < stmtTo && tokens[j].Is("recursive") {
			recursive = true
			j++
		}

		// name AS ( body ) [, name AS ( body )]*
		for j < stmtTo {
			if tokens[j].Kind != token.Ident {
				break
			}
			def := cteDef{
				name:      unquoteIdent(tokens[j].Value),
				recursive: recursive,
				defFrom:   tokens[j].From,
			}
			j++
			// Optional explicit column list: name (a, b) AS (...).
			var declared []string
			if j < stmtTo && tokens[j].IsPunct("(") && !isSelectShaped(tokens, j) {
				close := matchingClose(tokens, j, stmtTo)
				for k := j + 1; k < close-1; k++ {
					if tokens[k].Kind == token.Ident {
						declared = append(declared, unquoteIdent(tokens[k].Value))
					}
				}
				j = close
			}
			if j >= stmtTo || !tokens[j].Is("as") {
				break
			}
			j++
			if j >= stmtTo || !tokens[j].IsPunct("(") {
				break
			}
			close := matchingClose(tokens, j, stmtTo)
			def.bodyFrom = tokens[j].From
			if close > j && tokens[close-1].IsPunct(")") {
				def.bodyTo = tokens[close-1].To
			} else {
				// Unclosed body: it runs to end-of-buffer, so a
				// non-recursive CTE is never visible while being typed.
				def.bodyTo = len(buf.SQL)
			}
			switch {
			case len(declared) > 0:
				def.columns = declared
			default:
				if cols, ok := selectOutputs(tokens, j+1, close-1); ok {
					def.columns = cols
				} else {
					def.opaque = true
				}
			}
			defs = append(defs, def)
			j = close

			if j < stmtTo && tokens[j].IsPunct(",") {
				j++
				continue
			}
			break
		}
		i = j - 1
	}
	return defs
}

// isSelectShaped reports whether the group starting at the '(' token i
// begins with SELECT or WITH.
func isSelectShaped(tokens []token.Token, i int) bool {
	return i+1 < len(tokens) && (tokens[i+1].Is("select") || tokens[i+1].Is("with"))
}

// unquoteIdent strips the quotes of a double-quoted identifier and folds
// doubled quotes back to one.
func unquoteIdent(s string) string {
	if len(s) >= 2 && s[0] == '"' {
		inner := s[1:]
		if inner[len(inner)-1] == '"' {
			inner = inner[:len(inner)-1]
		}
		return strings.ReplaceAll(inner, `""`, `"`)
	}
	return s
}
