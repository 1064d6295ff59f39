package planner

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/finchdb/finchdb/internal/plan"
	"github.com/finchdb/finchdb/internal/query"
)

// baseline is the greedy heuristic planner: start from the first declared
// table's cheapest access path, then repeatedly join the remaining table
// that yields the smallest estimated output cardinality (ties go to
// declaration order). The join algorithm follows a fixed preference ladder
// instead of a cost comparison: merge join on an equality if enabled, then
// index nested loop if the new table's join column is indexed, then hash
// join on an equality, then block nested loop.
func (pc *planContext) baseline() *plan.Node {
	root := pc.bestAccessPath(pc.q.Tables[0])
	remaining := make([]int, 0, len(pc.q.Tables)-1)
	for i := 1; i < len(pc.q.Tables); i++ {
		remaining = append(remaining, i)
	}

	for len(remaining) > 0 {
		bestAt := -1
		var best *plan.Node
		for at, i := range remaining {
			cand := pc.baselineJoin(root, pc.q.Tables[i])
			if best == nil || cand.Rows < best.Rows {
				bestAt, best = at, cand
			}
		}
		root = best
		remaining = append(remaining[:bestAt], remaining[bestAt+1:]...)
	}
	return root
}

func (pc *planContext) baselineJoin(left *plan.Node, ref TableRef) *plan.Node {
	pairs, _ := query.EquiJoinPairs(pc.q.Pred, aliasSetOf(left), mapset.NewThreadUnsafeSet(ref.Alias))

	if len(pairs) > 0 && pc.sess.SortMergeJoin {
		right := pc.sortedLeaf(ref, pairs[0].Second.Column)
		if right == nil {
			right = pc.bestAccessPath(ref)
		}
		return pc.buildJoin(plan.MergeJoin, left, right)
	}
	if pc.sess.IndexJoin {
		if probe := pc.joinProbe(aliasSetOf(left), ref); probe != nil {
			return pc.buildJoin(plan.IndexNLJoin, left, probe)
		}
	}
	if len(pairs) > 0 && pc.sess.HashJoin {
		return pc.buildJoin(plan.HashJoin, left, pc.bestAccessPath(ref))
	}
	return pc.buildJoin(plan.BlockNLJoin, left, pc.bestAccessPath(ref))
}
