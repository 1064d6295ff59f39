package plan

import (
	pair "github.com/notEpsilon/go-pair"

	"github.com/finchdb/finchdb/internal/query"
)

// Kind identifies a physical operator. The set is closed: the cost model
// and the executor exhaustively switch on it.
type Kind int

const (
	FullScan Kind = iota
	PrimaryIndexScan
	SecondaryIndexScan
	MergeJoin
	IndexNLJoin
	BlockNLJoin
	HashJoin
)

func (k Kind) String() string {
	switch k {
	case FullScan:
		return "FullScan"
	case PrimaryIndexScan:
		return "PrimaryIndexScan"
	case SecondaryIndexScan:
		return "SecondaryIndexScan"
	case MergeJoin:
		return "MergeJoin"
	case IndexNLJoin:
		return "IndexNLJoin"
	case BlockNLJoin:
		return "BlockNLJoin"
	default:
		return "HashJoin"
	}
}

// IsJoin reports whether the kind is a join operator.
func (k Kind) IsJoin() bool {
	return k == MergeJoin || k == IndexNLJoin || k == BlockNLJoin || k == HashJoin
}

// JoinPair equates a column of the left input with a column of the right.
type JoinPair = pair.Pair[query.ColumnRef, query.ColumnRef]

// Node is one operator of a physical plan: either a base-table access path
// (leaf) or a join over two children. Cost is cumulative estimated I/O for
// the subtree; Rows is the estimated output cardinality.
type Node struct {
	Kind Kind

	// leaf fields
	Table       string
	Alias       string
	IndexColumn string
	Sarg        *query.Range
	// Probe marks the inner side of an index nested-loop join: the range is
	// supplied per outer row from the join key at execution time.
	Probe bool

	// join fields
	Left      *Node
	Right     *Node
	JoinPairs []JoinPair
	SortLeft  bool
	SortRight bool

	// Filter is the residual predicate applied at this node after the
	// access path (leaves) or the join condition (joins).
	Filter *query.Predicate

	Cost int64
	Rows int64
}

// Aliases returns the leaf table aliases of the subtree, left to right.
func (n *Node) Aliases() []string {
	if !n.Kind.IsJoin() {
		return []string{n.Alias}
	}
	return append(n.Left.Aliases(), n.Right.Aliases()...)
}

// Leaves returns the leaf nodes of the subtree, left to right.
func (n *Node) Leaves() []*Node {
	if !n.Kind.IsJoin() {
		return []*Node{n}
	}
	return append(n.Left.Leaves(), n.Right.Leaves()...)
}

// Contains reports whether any node of the subtree has the given kind.
func (n *Node) Contains(k Kind) bool {
	if n.Kind == k {
		return true
	}
	if !n.Kind.IsJoin() {
		return false
	}
	return n.Left.Contains(k) || n.Right.Contains(k)
}

// LeftDeep reports whether the subtree is a left-deep chain: every right
// child is a leaf.
func (n *Node) LeftDeep() bool {
	if !n.Kind.IsJoin() {
		return true
	}
	return !n.Right.Kind.IsJoin() && n.Left.LeftDeep()
}

// SortedOn reports whether the node's output is produced in order of the
// given column: true for index scans over that column (probe scans excepted).
func (n *Node) SortedOn(c query.ColumnRef) bool {
	switch n.Kind {
	case PrimaryIndexScan, SecondaryIndexScan:
		return !n.Probe && n.Alias == c.Table && n.IndexColumn == c.Column
	default:
		return false
	}
}
