package query

import (
	mapset "github.com/deckarep/golang-set/v2"
	pair "github.com/notEpsilon/go-pair"
)

// EquiJoinPairs finds the pure column equalities of p that connect the left
// alias set to the right alias set. Each result pair carries the left-side
// column first. The second result is the remainder: spanning terms that are
// not simple column equalities (to be applied as a residual filter on top of
// the join). Terms local to either side are ignored entirely.
func EquiJoinPairs(p *Predicate, left, right mapset.Set[string]) ([]pair.Pair[ColumnRef, ColumnRef], *Predicate) {
	spanning := p.JoinSubPred(left, right)
	if spanning.IsEmpty() {
		return nil, nil
	}
	var pairs []pair.Pair[ColumnRef, ColumnRef]
	var consumed []Term
	for _, t := range spanning.Terms() {
		lc, rc, ok := t.EquatesColumns()
		if !ok {
			continue
		}
		switch {
		case left.Contains(lc.Table) && right.Contains(rc.Table):
			pairs = append(pairs, pair.Pair[ColumnRef, ColumnRef]{First: lc, Second: rc})
			consumed = append(consumed, t)
		case left.Contains(rc.Table) && right.Contains(lc.Table):
			pairs = append(pairs, pair.Pair[ColumnRef, ColumnRef]{First: rc, Second: lc})
			consumed = append(consumed, t)
		}
	}
	return pairs, spanning.Minus(consumed)
}

// Connected reports whether any term of p references both alias sets
// (equality or otherwise). Used by join enumeration to avoid introducing
// implicit cross products.
func Connected(p *Predicate, left, right mapset.Set[string]) bool {
	return !p.JoinSubPred(left, right).IsEmpty()
}
