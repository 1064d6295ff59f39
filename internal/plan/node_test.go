package plan

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchdb/finchdb/internal/query"
	"github.com/finchdb/finchdb/internal/record"
)

func leaf(kind Kind, table string) *Node {
	return &Node{Kind: kind, Table: table, Alias: table}
}

func join(kind Kind, left, right *Node) *Node {
	return &Node{
		Kind: kind, Left: left, Right: right,
		JoinPairs: []JoinPair{{
			First:  query.ColumnRef{Table: left.Aliases()[0], Column: "k"},
			Second: query.ColumnRef{Table: right.Alias, Column: "k"},
		}},
	}
}

func TestAliasesAndLeaves(t *testing.T) {
	n := join(HashJoin, join(MergeJoin, leaf(FullScan, "a"), leaf(FullScan, "b")), leaf(FullScan, "c"))

	assert.Equal(t, []string{"a", "b", "c"}, n.Aliases())
	require.Len(t, n.Leaves(), 3)
	assert.True(t, n.Contains(MergeJoin))
	assert.False(t, n.Contains(IndexNLJoin))
}

func TestLeftDeep(t *testing.T) {
	ld := join(BlockNLJoin, join(BlockNLJoin, leaf(FullScan, "a"), leaf(FullScan, "b")), leaf(FullScan, "c"))
	assert.True(t, ld.LeftDeep())

	bushy := join(BlockNLJoin, leaf(FullScan, "a"), join(BlockNLJoin, leaf(FullScan, "b"), leaf(FullScan, "c")))
	assert.False(t, bushy.LeftDeep())
}

func TestSortedOn(t *testing.T) {
	n := &Node{Kind: PrimaryIndexScan, Table: "t", Alias: "t", IndexColumn: "id"}
	assert.True(t, n.SortedOn(query.ColumnRef{Table: "t", Column: "id"}))
	assert.False(t, n.SortedOn(query.ColumnRef{Table: "t", Column: "x"}))

	n.Probe = true
	assert.False(t, n.SortedOn(query.ColumnRef{Table: "t", Column: "id"}))

	full := leaf(FullScan, "t")
	assert.False(t, full.SortedOn(query.ColumnRef{Table: "t", Column: "id"}))
}

func TestExplainRendering(t *testing.T) {
	lo := record.NewIntValue(10)
	scan := &Node{
		Kind: SecondaryIndexScan, Table: "orders", Alias: "o",
		IndexColumn: "total", Sarg: &query.Range{Lo: &lo, LoExcl: true},
		Cost: 12, Rows: 30,
	}
	n := &Node{
		Kind: IndexNLJoin,
		Left: leaf(FullScan, "users"), Right: scan,
		JoinPairs: []JoinPair{{
			First:  query.ColumnRef{Table: "users", Column: "id"},
			Second: query.ColumnRef{Table: "o", Column: "uid"},
		}},
		Cost: 150, Rows: 30,
	}

	out := n.Explain()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "IndexNLJoin on users.id = o.uid")
	assert.Contains(t, lines[0], "cost=150 rows=30")
	assert.True(t, strings.HasPrefix(lines[1], "  FullScan users"))
	assert.Contains(t, lines[2], "SecondaryIndexScan orders AS o on total")
	assert.Contains(t, lines[2], "(10, +inf]")
}
