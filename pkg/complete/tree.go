package complete

import "github.com/leapstack-labs/leapcomplete/pkg/token"

// NodeKind classifies a structural node.
type NodeKind int

const (
	// NodeStatement is the root of one statement's recovered structure.
	NodeStatement NodeKind = iota
	// NodeSubquery is a parenthesized group whose first token is SELECT or
	// WITH.
	NodeSubquery
	// NodeFunctionArgs is a parenthesized group directly following an
	// identifier.
	NodeFunctionArgs
	// NodeCTEBody is the parenthesized body of a WITH-prologue CTE.
	NodeCTEBody
	// NodeGroup is any other parenthesized group.
	NodeGroup
	// NodeSetBranch is one branch of a UNION/INTERSECT/EXCEPT chain.
	NodeSetBranch
)

// String returns the node kind name.
func (k NodeKind) String() string {
	switch k {
	case NodeStatement:
		return "statement"
	case NodeSubquery:
		return "subquery"
	case NodeFunctionArgs:
		return "function-args"
	case NodeCTEBody:
		return "cte-body"
	case NodeGroup:
		return "group"
	case NodeSetBranch:
		return "set-branch"
	default:
		return "unknown"
	}
}

// Node is one nesting level of the structural recovery tree. The tree is a
// deliberately shallow, permissive view of the buffer: it tracks parenthesis
// nesting and set-operation branches so the engine can answer "what level is
// the cursor in", and nothing more. It is built from tokens alone and is
// total over arbitrary input.
type Node struct {
	Kind NodeKind

	// From/To are byte offsets into the buffer, half-open.
	From, To int

	// TokFrom/TokTo are indexes into the token stream, half-open.
	TokFrom, TokTo int

	Parent   *Node
	Children []*Node
}

// ParenDepth returns the number of enclosing parenthesized groups. Set
// branches share their parent's depth.
func (n *Node) ParenDepth() int {
	d := 0
	for p := n; p.Parent != nil; p = p.Parent {
		if p.Kind != NodeSetBranch {
			d++
		}
	}
	return d
}

// Contains reports whether the byte offset falls inside the node's range.
// The end offset is included so a cursor at the very end of an unclosed
// group still resolves into it.
func (n *Node) Contains(offset int) bool {
	return n.From <= offset && offset <= n.To
}

// Find returns the deepest node containing offset. It always returns a
// non-nil node since the root covers the whole buffer.
func (n *Node) Find(offset int) *Node {
	for _, c := range n.Children {
		if c.Contains(offset) {
			return c.Find(offset)
		}
	}
	return n
}

// EnclosingQuery returns the nearest node, starting at n itself, that
// introduces a query level: a statement, subquery, or CTE body. Set
// branches and plain groups resolve to their enclosing query.
func (n *Node) EnclosingQuery() *Node {
	for p := n; p != nil; p = p.Parent {
		switch p.Kind {
		case NodeStatement, NodeSubquery, NodeCTEBody:
			return p
		}
	}
	return n
}

// BuildTree recovers a nesting tree from the token stream. Unmatched open
// parens are closed implicitly at end-of-buffer; stray close parens are
// ignored at the root. The result degrades to a single flat node when the
// input has no recognizable structure.
func BuildTree(tokens []token.Token, sqlLen int) *Node {
	root := &Node{Kind: NodeStatement, From: 0, To: sqlLen, TokFrom: 0, TokTo: len(tokens)}
	cur := root
	// withProlog tracks, per open node, whether we are inside a WITH
	// prologue so "AS (" opens a CTE body rather than a plain group.
	withProlog := map[*Node]bool{}

	open := func(kind NodeKind, i int) {
		child := &Node{
			Kind:    kind,
			From:    tokens[i].From,
			To:      sqlLen,
			TokFrom: i,
			TokTo:   len(tokens),
			Parent:  cur,
		}
		cur.Children = append(cur.Children, child)
		cur = child
	}

	for i, t := range tokens {
		switch {
		case t.Kind == token.Keyword:
			switch {
			case t.Is("with"):
				withProlog[cur] = true
			case t.Is("select"), t.Is("insert"), t.Is("update"), t.Is("delete"):
				withProlog[cur] = false
			case t.Is("union") || t.Is("intersect") || t.Is("except"):
				if cur.Kind == NodeSetBranch {
					cur.To = t.From
					cur.TokTo = i
					cur = cur.Parent
				} else {
					// First set-op boundary at this level: the span before
					// the keyword becomes the initial branch.
					first := &Node{
						Kind:    NodeSetBranch,
						From:    cur.From,
						To:      t.From,
						TokFrom: cur.TokFrom,
						TokTo:   i,
						Parent:  cur,
					}
					first.Children, cur.Children = cur.Children, nil
					for _, c := range first.Children {
						c.Parent = first
					}
					cur.Children = []*Node{first}
				}
				open(NodeSetBranch, i)
				cur.From = t.To // branch starts after the keyword
				cur.TokFrom = i + 1
			}
		case t.IsPunct("("):
			open(parenKind(tokens, i, withProlog[cur.EnclosingQuery()]), i)
		case t.IsPunct(")"):
			if cur.Kind == NodeSetBranch && cur.Parent != nil {
				cur.To = t.From
				cur.TokTo = i
				cur = cur.Parent
			}
			if cur.Parent != nil {
				cur.To = t.To
				cur.TokTo = i + 1
				cur = cur.Parent
			}
		}
	}

	return root
}

// parenKind infers what the group opening at token i is.
func parenKind(tokens []token.Token, i int, inWith bool) NodeKind {
	selectShaped := i+1 < len(tokens) && (tokens[i+1].Is("select") || tokens[i+1].Is("with"))
	afterAs := i > 0 && tokens[i-1].Is("as")

	switch {
	case inWith && afterAs:
		return NodeCTEBody
	case selectShaped:
		return NodeSubquery
	case i > 0 && tokens[i-1].Kind == token.Ident:
		return NodeFunctionArgs
	default:
		return NodeGroup
	}
}
