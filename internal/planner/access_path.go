package planner

import (
	"github.com/finchdb/finchdb/internal/plan"
	"github.com/finchdb/finchdb/internal/query"
	"github.com/finchdb/finchdb/internal/storage"
)

func scanKind(ix *storage.Index) plan.Kind {
	if ix.Primary() {
		return plan.PrimaryIndexScan
	}
	return plan.SecondaryIndexScan
}

// accessPaths enumerates the costed access-path candidates for one table:
// always a full scan, plus an index scan per index whose column either has a
// sargable bound in the table-local predicate or serves as a downstream join
// key (a sorted-order candidate for merge joins). Nothing is filtered here;
// choosing between candidates is the enumerators' job.
func (pc *planContext) accessPaths(ref TableRef) []*plan.Node {
	local := pc.localPred(ref.Alias)

	full := &plan.Node{Kind: plan.FullScan, Table: ref.Table, Alias: ref.Alias, Filter: local}
	pc.model.CostLeaf(full)
	paths := []*plan.Node{full}

	tbl, ok := pc.eng.Table(ref.Table)
	if !ok {
		return paths
	}
	joinCols := pc.q.joinColumns(ref.Alias)
	for _, ix := range tbl.Indexes() {
		n := &plan.Node{
			Kind:        scanKind(ix),
			Table:       ref.Table,
			Alias:       ref.Alias,
			IndexColumn: ix.Column(),
		}
		if rng, remainder, ok := query.ExtractRange(local, ref.Alias, ix.Column()); ok {
			n.Sarg = rng
			n.Filter = remainder
		} else if joinCols.Contains(ix.Column()) {
			// full sorted sweep: no bound, but the order may pay for itself
			n.Filter = local
		} else {
			continue
		}
		pc.model.CostLeaf(n)
		paths = append(paths, n)
	}
	return paths
}

// bestAccessPath returns the cheapest standalone candidate; the first
// enumerated wins ties.
func (pc *planContext) bestAccessPath(ref TableRef) *plan.Node {
	var best *plan.Node
	for _, n := range pc.accessPaths(ref) {
		if best == nil || n.Cost < best.Cost {
			best = n
		}
	}
	return best
}

// fullScanLeaf is the naive planner's default access path.
func (pc *planContext) fullScanLeaf(ref TableRef) *plan.Node {
	n := &plan.Node{Kind: plan.FullScan, Table: ref.Table, Alias: ref.Alias, Filter: pc.localPred(ref.Alias)}
	pc.model.CostLeaf(n)
	return n
}

// probeLeaf builds the inner side of an index nested-loop join: an index
// scan on the given column whose bound is supplied per outer row. Returns
// nil if the table has no index on the column.
func (pc *planContext) probeLeaf(ref TableRef, column string) *plan.Node {
	tbl, ok := pc.eng.Table(ref.Table)
	if !ok {
		return nil
	}
	ix, ok := tbl.Index(column)
	if !ok {
		return nil
	}
	n := &plan.Node{
		Kind:        scanKind(ix),
		Table:       ref.Table,
		Alias:       ref.Alias,
		IndexColumn: column,
		Probe:       true,
		Filter:      pc.localPred(ref.Alias),
	}
	pc.model.CostLeaf(n)
	return n
}

// sortedLeaf builds an index-scan leaf delivering rows in column order, for
// a merge join side. Returns nil without a matching index.
func (pc *planContext) sortedLeaf(ref TableRef, column string) *plan.Node {
	tbl, ok := pc.eng.Table(ref.Table)
	if !ok {
		return nil
	}
	ix, ok := tbl.Index(column)
	if !ok {
		return nil
	}
	local := pc.localPred(ref.Alias)
	n := &plan.Node{
		Kind:        scanKind(ix),
		Table:       ref.Table,
		Alias:       ref.Alias,
		IndexColumn: column,
		Filter:      local,
	}
	if rng, remainder, ok := query.ExtractRange(local, ref.Alias, column); ok {
		n.Sarg = rng
		n.Filter = remainder
	}
	pc.model.CostLeaf(n)
	return n
}

// tableRef finds the declaration entry for an alias.
func (pc *planContext) tableRef(alias string) (TableRef, bool) {
	for _, ref := range pc.q.Tables {
		if ref.Alias == alias {
			return ref, true
		}
	}
	return TableRef{}, false
}
