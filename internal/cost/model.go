// Package cost implements the optimizer's cost model. Every estimate is
// pure arithmetic over a statistics snapshot: no locks, no I/O, no errors.
// Missing statistics degrade to conservative defaults and every count is
// clamped to at least one, so cost expressions never divide by zero.
package cost

import (
	"math"

	"github.com/finchdb/finchdb/internal/plan"
	"github.com/finchdb/finchdb/internal/query"
	"github.com/finchdb/finchdb/internal/stats"
)

const (
	// BlockRows is the buffer capacity, in rows, of one block nested-loop
	// join block.
	BlockRows = 100

	// DefaultSelectivity is assumed for any predicate term the model cannot
	// estimate from column statistics.
	DefaultSelectivity = 1.0 / 3

	// Fallbacks for unanalyzed tables and columns.
	DefaultRowCount    = 1000
	DefaultDistinct    = 10
	DefaultIndexHeight = 2
	DefaultFanout      = 64
)

// Model estimates costs and cardinalities against one immutable statistics
// snapshot, resolving query aliases to base tables.
type Model struct {
	snap    *stats.Snapshot
	aliases map[string]string
}

func NewModel(snap *stats.Snapshot, aliases map[string]string) *Model {
	return &Model{snap: snap, aliases: aliases}
}

func (m *Model) tableStats(alias string) *stats.TableStats {
	table, ok := m.aliases[alias]
	if !ok {
		table = alias
	}
	ts, err := m.snap.Get(table)
	if err != nil {
		return nil
	}
	return ts
}

// RowCount returns the row count recorded for the alias's table, or the
// fallback for an unanalyzed table.
func (m *Model) RowCount(alias string) int64 {
	if ts := m.tableStats(alias); ts != nil {
		return clamp(ts.RowCount)
	}
	return DefaultRowCount
}

// Distinct returns the distinct-value count for a column, or the fallback.
func (m *Model) Distinct(alias, column string) int64 {
	if ts := m.tableStats(alias); ts != nil {
		if cs, ok := ts.Column(column); ok {
			return clamp(cs.Distinct)
		}
	}
	return DefaultDistinct
}

func (m *Model) indexShape(alias, column string) (height, fanout int64) {
	if ts := m.tableStats(alias); ts != nil {
		if ix, ok := ts.Index(column); ok {
			return clamp(ix.Height), clamp(ix.Fanout)
		}
	}
	return DefaultIndexHeight, DefaultFanout
}

// CostLeaf fills Cost and Rows of an access-path leaf. For a probe leaf
// (inner side of an index nested-loop join) Cost is the per-probe cost and
// Rows the per-key match estimate.
func (m *Model) CostLeaf(n *plan.Node) {
	rowCount := m.RowCount(n.Alias)

	switch n.Kind {
	case plan.FullScan:
		n.Cost = rowCount
		n.Rows = clampf(float64(rowCount) * m.FilterSelectivity(n.Alias, n.Filter))
		return
	case plan.PrimaryIndexScan, plan.SecondaryIndexScan:
	default:
		return
	}

	height, fanout := m.indexShape(n.Alias, n.IndexColumn)
	var matching float64
	if n.Probe {
		matching = float64(rowCount) / float64(m.Distinct(n.Alias, n.IndexColumn))
	} else if n.Sarg != nil {
		matching = float64(rowCount) * m.RangeSelectivity(n.Alias, n.IndexColumn, n.Sarg)
	} else {
		// full sorted sweep, every entry matches
		matching = float64(rowCount)
	}
	if matching < 1 {
		matching = 1
	}

	cost := float64(height) + math.Ceil(matching/float64(fanout))
	if n.Kind == plan.SecondaryIndexScan {
		// one base-table fetch per matching entry
		cost += matching
	}
	n.Cost = clampf(cost)
	n.Rows = clampf(matching * m.FilterSelectivity(n.Alias, n.Filter))
}

// CostJoin fills Cost and Rows of a join node whose children are costed.
// Cost is cumulative: children plus the algorithm's own work.
func (m *Model) CostJoin(n *plan.Node) {
	l, r := n.Left, n.Right

	var self int64
	switch n.Kind {
	case plan.MergeJoin:
		self = l.Rows + r.Rows
		if n.SortLeft {
			self += 2 * l.Rows
		}
		if n.SortRight {
			self += 2 * r.Rows
		}
	case plan.IndexNLJoin:
		// right is a probe leaf; its Cost is the per-probe cost
		self = clampf(float64(l.Rows) * float64(r.Cost))
	case plan.BlockNLJoin:
		blocks := (l.Rows + BlockRows - 1) / BlockRows
		self = clampf(float64(blocks)*float64(r.Rows) + float64(l.Rows))
	case plan.HashJoin:
		self = l.Rows + r.Rows
	default:
		return
	}

	n.Cost = l.Cost + r.Cost + self

	rRows := r.Rows
	if n.Kind == plan.IndexNLJoin {
		// the probe leaf's Rows is a per-key match count, already divided by
		// the key's distinct count; rebuild the inner table's total estimate
		// so the output formula is the same for every algorithm
		rRows = clampf(float64(m.RowCount(r.Alias)) * m.FilterSelectivity(r.Alias, r.Filter))
	}
	n.Rows = m.joinRows(l.Rows, rRows, n.JoinPairs, n.Filter)
}

// JoinRows estimates the output cardinality of joining two costed inputs
// over the given equi-join pairs, after the residual filter.
func (m *Model) JoinRows(l, r *plan.Node, pairs []plan.JoinPair, residual *query.Predicate) int64 {
	return m.joinRows(l.Rows, r.Rows, pairs, residual)
}

func (m *Model) joinRows(lRows, rRows int64, pairs []plan.JoinPair, residual *query.Predicate) int64 {
	rows := float64(lRows) * float64(rRows)
	for _, p := range pairs {
		d := m.Distinct(p.First.Table, p.First.Column)
		if rd := m.Distinct(p.Second.Table, p.Second.Column); rd > d {
			d = rd
		}
		rows /= float64(d)
	}
	if residual != nil && !residual.IsEmpty() {
		for range residual.Terms() {
			rows *= DefaultSelectivity
		}
	}
	return clampf(rows)
}

func clamp(v int64) int64 {
	if v < 1 {
		return 1
	}
	return v
}

func clampf(v float64) int64 {
	if v < 1 || math.IsNaN(v) {
		return 1
	}
	if v > math.MaxInt64/2 {
		return math.MaxInt64 / 2
	}
	return int64(v)
}
