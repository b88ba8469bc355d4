package complete

import (
	"sort"
	"strings"

	"github.com/leapstack-labs/leapcomplete/pkg/token"
)

// StatementParser is the external grammar parser the splitter consults for
// statement boundaries. Implementations report the byte offset at which each
// statement in the buffer begins. An error means the buffer could not be
// parsed as any sequence of statements; callers then fall back to
// tokenizer-only heuristics.
type StatementParser interface {
	StatementStarts(sql string) ([]int, error)
}

// StatementRange is one statement's byte span within the buffer, leading
// whitespace trimmed.
type StatementRange struct {
	From int
	To   int
}

// Text returns the statement's source text.
func (r StatementRange) Text(sql string) string {
	return sql[r.From:r.To]
}

// FoldRegion is a clause span eligible for code folding, always contained in
// exactly one statement range.
type FoldRegion struct {
	From    int
	To      int
	Keyword string
}

// EditorInfo bundles the per-buffer analyses an editor integration needs:
// which statement a cursor falls in, and what can be folded.
type EditorInfo struct {
	Statements  []StatementRange
	FoldRegions []FoldRegion
}

// SplitStatements divides the buffer into statement ranges using the grammar
// parser's location metadata. Each statement ends where the next begins.
// When the parser is unavailable or rejects the buffer outright, the whole
// trimmed buffer is returned as a single range rather than an error: callers
// treat the degraded case as one statement.
func SplitStatements(sql string, parser StatementParser) []StatementRange {
	trimmed := wholeBufferRange(sql)
	if trimmed == nil {
		return nil
	}
	if parser == nil {
		return []StatementRange{*trimmed}
	}
	starts, err := parser.StatementStarts(sql)
	if err != nil || len(starts) == 0 {
		return []StatementRange{*trimmed}
	}
	sort.Ints(starts)

	out := make([]StatementRange, 0, len(starts))
	for i, from := range starts {
		to := len(sql)
		if i+1 < len(starts) {
			to = starts[i+1]
		}
		for from < to && isSpaceByte(sql[from]) {
			from++
		}
		if from >= to {
			continue
		}
		out = append(out, StatementRange{From: from, To: to})
	}
	if len(out) == 0 {
		return []StatementRange{*trimmed}
	}
	return out
}

func wholeBufferRange(sql string) *StatementRange {
	from, to := 0, len(sql)
	for from < to && isSpaceByte(sql[from]) {
		from++
	}
	for to > from && isSpaceByte(sql[to-1]) {
		to--
	}
	if from == to {
		return nil
	}
	return &StatementRange{From: from, To: to}
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// BuildEditorInfo computes statement ranges and their fold regions in one
// pass over the buffer.
func BuildEditorInfo(sql string, parser StatementParser) EditorInfo {
	info := EditorInfo{Statements: SplitStatements(sql, parser)}
	for _, stmt := range info.Statements {
		info.FoldRegions = append(info.FoldRegions, FoldRegions(sql, stmt)...)
	}
	return info
}

// FoldRegions extracts the foldable clause spans of one statement. A region
// runs from a top-level clause keyword to the next one (or to the closing
// semicolon). Set-operation branches are folded independently, so each arm
// of a UNION gets its own regions. Single-line spans are dropped.
func FoldRegions(sql string, stmt StatementRange) []FoldRegion {
	buf := Tokenize(stmt.Text(sql), 0)
	tree := BuildTree(buf.Tokens, len(buf.SQL))

	var regions []FoldRegion
	collectFoldRegions(buf.Tokens, tree, &regions)

	// Offsets so far are statement-relative.
	for i := range regions {
		regions[i].From += stmt.From
		regions[i].To += stmt.From
	}

	out := regions[:0]
	seen := make(map[int]struct{}, len(regions))
	for _, r := range regions {
		if !strings.Contains(sql[r.From:r.To], "\n") {
			continue
		}
		if _, ok := seen[r.From]; ok {
			continue
		}
		seen[r.From] = struct{}{}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

// collectFoldRegions scans one query level for clause keywords and recurses
// into set-operation branches. Nested parenthesized content belongs to child
// nodes and is skipped here.
func collectFoldRegions(tokens []token.Token, node *Node, out *[]FoldRegion) {
	type mark struct {
		from    int
		keyword string
	}
	var marks []mark
	end := node.To

	i := node.TokFrom
	for i < node.TokTo {
		// Skip spans owned by child nodes; branches fold themselves below.
		if child := childContaining(node, i); child != nil {
			i = child.TokTo
			continue
		}
		tok := tokens[i]
		switch {
		case tok.Kind == token.Keyword && isFoldClause(tok):
			kw := strings.ToUpper(tok.Value)
			if tok.Is("group") || tok.Is("order") {
				if i+1 >= node.TokTo || !tokens[i+1].Is("by") {
					i++
					continue
				}
				kw += " BY"
			}
			marks = append(marks, mark{from: tok.From, keyword: kw})
		case tok.Is("union") || tok.Is("intersect") || tok.Is("except"):
			// The set-op keyword ends the last clause of the left arm.
			marks = append(marks, mark{from: tok.From, keyword: ""})
		case tok.IsPunct(";"):
			if len(marks) > 0 && tok.From < end {
				end = tok.From
			}
		}
		i++
	}

	for j, m := range marks {
		if m.keyword == "" {
			continue
		}
		to := end
		if j+1 < len(marks) {
			to = marks[j+1].from
		}
		*out = append(*out, FoldRegion{From: m.from, To: to, Keyword: m.keyword})
	}

	for _, child := range node.Children {
		if child.Kind == NodeSetBranch {
			collectFoldRegions(tokens, child, out)
		}
	}
}

func childContaining(node *Node, tok int) *Node {
	for _, c := range node.Children {
		if c.TokFrom <= tok && tok < c.TokTo {
			return c
		}
	}
	return nil
}

func isFoldClause(tok token.Token) bool {
	for _, kw := range token.FoldableClauses {
		if tok.Is(kw) {
			return true
		}
	}
	return false
}
