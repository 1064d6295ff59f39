package planner

import (
	"math/bits"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/finchdb/finchdb/internal/plan"
	"github.com/finchdb/finchdb/internal/query"
)

// costBased plans each connected component of the join graph with the
// bottom-up subset DP, then chains the component plans together with block
// nested loops in declaration order. Cross products are never introduced
// inside a component; chaining disconnected components is the one explicit,
// deterministic exception.
func (pc *planContext) costBased() *plan.Node {
	var root *plan.Node
	for _, comp := range pc.components() {
		sub := pc.dpSearch(comp)
		if root == nil {
			root = sub
			continue
		}
		root = pc.buildJoin(plan.BlockNLJoin, root, sub)
	}
	return root
}

// dpSearch runs the classic join-order dynamic program over the given table
// indices. Subsets are bitmasks enumerated size ascending then mask
// ascending, splits submask ascending; a strictly cheaper candidate is
// required to displace an entry, so the first enumerated plan wins ties and
// the result is reproducible.
func (pc *planContext) dpSearch(tables []int) *plan.Node {
	n := len(tables)
	dp := make([]*plan.Node, 1<<n)
	for i, ti := range tables {
		dp[1<<i] = pc.bestAccessPath(pc.q.Tables[ti])
	}

	for size := 2; size <= n; size++ {
		for mask := 1; mask < 1<<n; mask++ {
			if bits.OnesCount(uint(mask)) != size {
				continue
			}
			for sub := 1; sub < mask; sub++ {
				if sub&mask != sub {
					continue
				}
				left, right := dp[sub], dp[mask^sub]
				if left == nil || right == nil {
					continue
				}
				if !query.Connected(pc.q.Pred, aliasSetOf(left), aliasSetOf(right)) {
					continue
				}
				for _, cand := range pc.joinCandidates(left, right) {
					if dp[mask] == nil || cand.Cost < dp[mask].Cost {
						dp[mask] = cand
					}
				}
			}
		}
	}
	return dp[(1<<n)-1]
}

// joinCandidates prices every enabled algorithm applicable to joining the
// two costed inputs in this orientation.
func (pc *planContext) joinCandidates(left, right *plan.Node) []*plan.Node {
	var cands []*plan.Node
	pairs, _ := query.EquiJoinPairs(pc.q.Pred, aliasSetOf(left), aliasSetOf(right))

	if len(pairs) > 0 {
		if pc.sess.SortMergeJoin {
			cands = append(cands, pc.mergeCandidates(left, right, pairs[0])...)
		}
		if pc.sess.IndexJoin && !right.Kind.IsJoin() {
			if ref, ok := pc.tableRef(right.Alias); ok {
				for _, p := range pairs {
					if probe := pc.probeLeaf(ref, p.Second.Column); probe != nil {
						cands = append(cands, pc.buildJoin(plan.IndexNLJoin, left, probe))
						break
					}
				}
			}
		}
		if pc.sess.HashJoin {
			cands = append(cands, pc.buildJoin(plan.HashJoin, left, right))
		}
	}
	cands = append(cands, pc.buildJoin(plan.BlockNLJoin, left, right))
	return cands
}

// mergeCandidates prices the merge join on the inputs as stored, plus
// variants where a leaf side is swapped for a sorted index scan on the join
// key, trading scan cost against the sort.
func (pc *planContext) mergeCandidates(left, right *plan.Node, key plan.JoinPair) []*plan.Node {
	lefts := []*plan.Node{left}
	if alt := pc.sortedAlternative(left, key.First); alt != nil {
		lefts = append(lefts, alt)
	}
	rights := []*plan.Node{right}
	if alt := pc.sortedAlternative(right, key.Second); alt != nil {
		rights = append(rights, alt)
	}
	var cands []*plan.Node
	for _, l := range lefts {
		for _, r := range rights {
			cands = append(cands, pc.buildJoin(plan.MergeJoin, l, r))
		}
	}
	return cands
}

func (pc *planContext) sortedAlternative(n *plan.Node, key query.ColumnRef) *plan.Node {
	if n.Kind.IsJoin() || n.SortedOn(key) {
		return nil
	}
	ref, ok := pc.tableRef(n.Alias)
	if !ok {
		return nil
	}
	return pc.sortedLeaf(ref, key.Column)
}

// components partitions the query's table indices into join-graph connected
// components, members in declaration order.
func (pc *planContext) components() [][]int {
	n := len(pc.q.Tables)
	assigned := make([]int, n)
	for i := range assigned {
		assigned[i] = -1
	}

	comp := 0
	for i := 0; i < n; i++ {
		if assigned[i] >= 0 {
			continue
		}
		assigned[i] = comp
		for changed := true; changed; {
			changed = false
			members := mapset.NewThreadUnsafeSet[string]()
			for j, c := range assigned {
				if c == comp {
					members.Add(pc.q.Tables[j].Alias)
				}
			}
			for j := 0; j < n; j++ {
				if assigned[j] >= 0 {
					continue
				}
				if query.Connected(pc.q.Pred, members, mapset.NewThreadUnsafeSet(pc.q.Tables[j].Alias)) {
					assigned[j] = comp
					changed = true
				}
			}
		}
		comp++
	}

	out := make([][]int, comp)
	for i, c := range assigned {
		out[c] = append(out[c], i)
	}
	return out
}
