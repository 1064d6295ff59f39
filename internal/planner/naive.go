package planner

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/finchdb/finchdb/internal/plan"
	"github.com/finchdb/finchdb/internal/query"
)

// naive builds a strict left-deep tree in table declaration order with full
// scan leaves. Each step joins the accumulated result to the next table
// with a block nested loop, upgraded to an index nested loop when the new
// table has an index on its join column and index joins are enabled. No
// alternatives are costed; the single tree is merely priced for reporting.
func (pc *planContext) naive() *plan.Node {
	root := pc.fullScanLeaf(pc.q.Tables[0])
	for _, ref := range pc.q.Tables[1:] {
		kind := plan.BlockNLJoin
		var right *plan.Node
		if pc.sess.IndexJoin {
			if probe := pc.joinProbe(aliasSetOf(root), ref); probe != nil {
				kind, right = plan.IndexNLJoin, probe
			}
		}
		if right == nil {
			right = pc.fullScanLeaf(ref)
		}
		root = pc.buildJoin(kind, root, right)
	}
	return root
}

// joinProbe returns a probe leaf for ref if some equi-join column connecting
// it to the joined set is indexed; the first such term decides.
func (pc *planContext) joinProbe(joined mapset.Set[string], ref TableRef) *plan.Node {
	pairs, _ := query.EquiJoinPairs(pc.q.Pred, joined, mapset.NewThreadUnsafeSet(ref.Alias))
	for _, p := range pairs {
		if probe := pc.probeLeaf(ref, p.Second.Column); probe != nil {
			return probe
		}
	}
	return nil
}
