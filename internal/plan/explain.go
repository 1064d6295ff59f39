package plan

import (
	"fmt"
	"strings"
)

// Explain renders the plan tree as an indented listing, one operator per
// line, with estimated cost and rows.
func (n *Node) Explain() string {
	var b strings.Builder
	n.explain(&b, 0)
	return b.String()
}

func (n *Node) explain(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(b, "%s%s", indent, n.describe())
	fmt.Fprintf(b, "  (cost=%d rows=%d)", n.Cost, n.Rows)
	if n.Filter != nil && !n.Filter.IsEmpty() {
		fmt.Fprintf(b, " filter: %s", n.Filter)
	}
	b.WriteByte('\n')
	if n.Kind.IsJoin() {
		n.Left.explain(b, depth+1)
		n.Right.explain(b, depth+1)
	}
}

func (n *Node) describe() string {
	switch n.Kind {
	case FullScan:
		return fmt.Sprintf("FullScan %s", n.leafName())
	case PrimaryIndexScan, SecondaryIndexScan:
		s := fmt.Sprintf("%s %s on %s", n.Kind, n.leafName(), n.IndexColumn)
		if n.Probe {
			return s + " (probe)"
		}
		if n.Sarg != nil {
			return fmt.Sprintf("%s %s", s, n.Sarg)
		}
		return s
	default:
		return fmt.Sprintf("%s on %s", n.Kind, joinCondition(n.JoinPairs))
	}
}

func (n *Node) leafName() string {
	if n.Alias != "" && n.Alias != n.Table {
		return fmt.Sprintf("%s AS %s", n.Table, n.Alias)
	}
	return n.Table
}

func joinCondition(pairs []JoinPair) string {
	if len(pairs) == 0 {
		return "(cross)"
	}
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = fmt.Sprintf("%s = %s", p.First, p.Second)
	}
	return strings.Join(parts, " AND ")
}
