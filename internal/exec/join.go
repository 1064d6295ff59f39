package exec

import (
	"sort"

	"github.com/finchdb/finchdb/internal/plan"
	"github.com/finchdb/finchdb/internal/query"
	"github.com/finchdb/finchdb/internal/record"
	"github.com/finchdb/finchdb/internal/storage"
)

func concatRow(l, r record.Row) record.Row {
	out := make(record.Row, 0, len(l)+len(r))
	out = append(out, l...)
	return append(out, r...)
}

func concatCols(l, r []query.ColumnRef) []query.ColumnRef {
	out := make([]query.ColumnRef, 0, len(l)+len(r))
	out = append(out, l...)
	return append(out, r...)
}

// joinMatch checks the equi-join pairs and the residual filter against a
// combined row.
func joinMatch(cols []query.ColumnRef, row record.Row, pairs []plan.JoinPair, residual *query.Predicate) (bool, error) {
	resolve := resolver(cols, row)
	for _, p := range pairs {
		lv, err := resolve(p.First)
		if err != nil {
			return false, err
		}
		rv, err := resolve(p.Second)
		if err != nil {
			return false, err
		}
		if !lv.Equals(rv) {
			return false, nil
		}
	}
	if residual.IsEmpty() {
		return true, nil
	}
	return residual.IsSatisfied(resolve)
}

// blockNLJoin materializes the inner side once and sweeps it per outer row.
type blockNLJoin struct {
	left, right Operator
	pairs       []plan.JoinPair
	residual    *query.Predicate
	cols        []query.ColumnRef

	inner   []record.Row
	current record.Row
	pos     int
}

func newBlockNLJoin(left, right Operator, n *plan.Node) *blockNLJoin {
	return &blockNLJoin{
		left: left, right: right,
		pairs:    n.JoinPairs,
		residual: n.Filter,
		cols:     concatCols(left.Columns(), right.Columns()),
	}
}

func (j *blockNLJoin) Open() error {
	if err := j.left.Open(); err != nil {
		return err
	}
	rows, err := Run(j.right)
	if err != nil {
		return err
	}
	j.inner = rows
	j.current = nil
	j.pos = 0
	return nil
}

func (j *blockNLJoin) Next() (record.Row, bool, error) {
	for {
		if j.current == nil {
			row, ok, err := j.left.Next()
			if err != nil || !ok {
				return nil, false, err
			}
			j.current = row
			j.pos = 0
		}
		for j.pos < len(j.inner) {
			combined := concatRow(j.current, j.inner[j.pos])
			j.pos++
			ok, err := joinMatch(j.cols, combined, j.pairs, j.residual)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return combined, true, nil
			}
		}
		j.current = nil
	}
}

func (j *blockNLJoin) Close() error { return j.left.Close() }

func (j *blockNLJoin) Columns() []query.ColumnRef { return j.cols }

// indexNLJoin probes the inner table's index with each outer row's join key.
type indexNLJoin struct {
	left     Operator
	tbl      *storage.Table
	ix       *storage.Index
	outerKey query.ColumnRef
	pairs    []plan.JoinPair
	inner    *query.Predicate
	residual *query.Predicate
	cols     []query.ColumnRef
	innerLen int

	current record.Row
	matches []storage.RowID
	pos     int
}

func newIndexNLJoin(left Operator, tbl *storage.Table, ix *storage.Index, alias string, n *plan.Node) *indexNLJoin {
	innerCols := tableColumns(tbl, alias)
	// the pair over the probed index column drives the lookup; any others
	// are re-checked per candidate row
	probeAt := 0
	for i, p := range n.JoinPairs {
		if p.Second.Table == alias && p.Second.Column == ix.Column() {
			probeAt = i
			break
		}
	}
	extra := make([]plan.JoinPair, 0, len(n.JoinPairs)-1)
	extra = append(extra, n.JoinPairs[:probeAt]...)
	extra = append(extra, n.JoinPairs[probeAt+1:]...)
	return &indexNLJoin{
		left:     left,
		tbl:      tbl,
		ix:       ix,
		outerKey: n.JoinPairs[probeAt].First,
		pairs:    extra,
		inner:    n.Right.Filter,
		residual: n.Filter,
		cols:     concatCols(left.Columns(), innerCols),
		innerLen: len(innerCols),
	}
}

func (j *indexNLJoin) Open() error {
	j.current = nil
	j.matches = nil
	return j.left.Open()
}

func (j *indexNLJoin) Next() (record.Row, bool, error) {
	for {
		if j.current == nil {
			row, ok, err := j.left.Next()
			if err != nil || !ok {
				return nil, false, err
			}
			key, err := columnValue(j.left.Columns(), row, j.outerKey)
			if err != nil {
				return nil, false, err
			}
			j.matches = j.matches[:0]
			err = j.ix.Scan(query.PointRange(key), func(_ record.Value, id storage.RowID) (bool, error) {
				j.matches = append(j.matches, id)
				return true, nil
			})
			if err != nil {
				return nil, false, err
			}
			j.current = row
			j.pos = 0
		}
		for j.pos < len(j.matches) {
			innerRow, err := j.tbl.Heap().Get(j.matches[j.pos])
			j.pos++
			if err != nil {
				return nil, false, err
			}
			if !j.inner.IsEmpty() {
				keep, err := j.inner.IsSatisfied(resolver(j.cols[len(j.cols)-j.innerLen:], innerRow))
				if err != nil {
					return nil, false, err
				}
				if !keep {
					continue
				}
			}
			combined := concatRow(j.current, innerRow)
			ok, err := joinMatch(j.cols, combined, j.pairs, j.residual)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return combined, true, nil
			}
		}
		j.current = nil
	}
}

func (j *indexNLJoin) Close() error { return j.left.Close() }

func (j *indexNLJoin) Columns() []query.ColumnRef { return j.cols }

// hashJoin builds a table over the right input's key and probes it with the
// left. Bucket hits are re-checked with a real equality, so hash collisions
// never produce a false match.
type hashJoin struct {
	left, right Operator
	pairs       []plan.JoinPair
	residual    *query.Predicate
	cols        []query.ColumnRef

	buckets map[uint64][]record.Row
	current record.Row
	probe   []record.Row
	pos     int
}

func newHashJoin(left, right Operator, n *plan.Node) *hashJoin {
	return &hashJoin{
		left: left, right: right,
		pairs:    n.JoinPairs,
		residual: n.Filter,
		cols:     concatCols(left.Columns(), right.Columns()),
	}
}

func (j *hashJoin) Open() error {
	if err := j.left.Open(); err != nil {
		return err
	}
	rows, err := Run(j.right)
	if err != nil {
		return err
	}
	j.buckets = make(map[uint64][]record.Row)
	for _, row := range rows {
		key, err := columnValue(j.right.Columns(), row, j.pairs[0].Second)
		if err != nil {
			return err
		}
		h := key.Hash()
		j.buckets[h] = append(j.buckets[h], row)
	}
	j.current = nil
	return nil
}

func (j *hashJoin) Next() (record.Row, bool, error) {
	for {
		if j.current == nil {
			row, ok, err := j.left.Next()
			if err != nil || !ok {
				return nil, false, err
			}
			key, err := columnValue(j.left.Columns(), row, j.pairs[0].First)
			if err != nil {
				return nil, false, err
			}
			j.current = row
			j.probe = j.buckets[key.Hash()]
			j.pos = 0
		}
		for j.pos < len(j.probe) {
			combined := concatRow(j.current, j.probe[j.pos])
			j.pos++
			ok, err := joinMatch(j.cols, combined, j.pairs, j.residual)
			if err != nil {
				return nil, false, err
			}
			if ok {
				return combined, true, nil
			}
		}
		j.current = nil
	}
}

func (j *hashJoin) Close() error { return j.left.Close() }

func (j *hashJoin) Columns() []query.ColumnRef { return j.cols }

// mergeJoin materializes and sorts both inputs on the join key, then zips
// them, crossing duplicate key groups.
type mergeJoin struct {
	left, right Operator
	pairs       []plan.JoinPair
	residual    *query.Predicate
	cols        []query.ColumnRef

	lrows, rrows []record.Row
	li, ri       int
	groupL       []record.Row
	groupR       []record.Row
	gl, gr       int
}

func newMergeJoin(left, right Operator, n *plan.Node) *mergeJoin {
	return &mergeJoin{
		left: left, right: right,
		pairs:    n.JoinPairs,
		residual: n.Filter,
		cols:     concatCols(left.Columns(), right.Columns()),
	}
}

func sortByKey(rows []record.Row, cols []query.ColumnRef, key query.ColumnRef) error {
	at := -1
	for i, c := range cols {
		if c == key {
			at = i
			break
		}
	}
	if at < 0 {
		return ErrUnknownColumn
	}
	var sortErr error
	sort.SliceStable(rows, func(i, k int) bool {
		cmp, err := rows[i][at].Compare(rows[k][at])
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return cmp < 0
	})
	return sortErr
}

func (j *mergeJoin) Open() error {
	lrows, err := Run(j.left)
	if err != nil {
		return err
	}
	rrows, err := Run(j.right)
	if err != nil {
		return err
	}
	if err := sortByKey(lrows, j.left.Columns(), j.pairs[0].First); err != nil {
		return err
	}
	if err := sortByKey(rrows, j.right.Columns(), j.pairs[0].Second); err != nil {
		return err
	}
	j.lrows, j.rrows = lrows, rrows
	j.li, j.ri = 0, 0
	j.groupL, j.groupR = nil, nil
	return nil
}

func (j *mergeJoin) keyAt(side []query.ColumnRef, row record.Row, key query.ColumnRef) (record.Value, error) {
	return columnValue(side, row, key)
}

func (j *mergeJoin) advanceGroups() (bool, error) {
	for j.li < len(j.lrows) && j.ri < len(j.rrows) {
		lk, err := j.keyAt(j.left.Columns(), j.lrows[j.li], j.pairs[0].First)
		if err != nil {
			return false, err
		}
		rk, err := j.keyAt(j.right.Columns(), j.rrows[j.ri], j.pairs[0].Second)
		if err != nil {
			return false, err
		}
		cmp, err := lk.Compare(rk)
		if err != nil {
			return false, err
		}
		switch {
		case cmp < 0:
			j.li++
		case cmp > 0:
			j.ri++
		default:
			lEnd, rEnd := j.li, j.ri
			for lEnd < len(j.lrows) {
				k, err := j.keyAt(j.left.Columns(), j.lrows[lEnd], j.pairs[0].First)
				if err != nil {
					return false, err
				}
				if !k.Equals(lk) {
					break
				}
				lEnd++
			}
			for rEnd < len(j.rrows) {
				k, err := j.keyAt(j.right.Columns(), j.rrows[rEnd], j.pairs[0].Second)
				if err != nil {
					return false, err
				}
				if !k.Equals(rk) {
					break
				}
				rEnd++
			}
			j.groupL = j.lrows[j.li:lEnd]
			j.groupR = j.rrows[j.ri:rEnd]
			j.gl, j.gr = 0, 0
			j.li, j.ri = lEnd, rEnd
			return true, nil
		}
	}
	return false, nil
}

func (j *mergeJoin) Next() (record.Row, bool, error) {
	for {
		if j.groupL == nil {
			ok, err := j.advanceGroups()
			if err != nil || !ok {
				return nil, false, err
			}
		}
		for j.gl < len(j.groupL) {
			for j.gr < len(j.groupR) {
				combined := concatRow(j.groupL[j.gl], j.groupR[j.gr])
				j.gr++
				ok, err := joinMatch(j.cols, combined, j.pairs[1:], j.residual)
				if err != nil {
					return nil, false, err
				}
				if ok {
					return combined, true, nil
				}
			}
			j.gr = 0
			j.gl++
		}
		j.groupL, j.groupR = nil, nil
	}
}

func (j *mergeJoin) Close() error { return nil }

func (j *mergeJoin) Columns() []query.ColumnRef { return j.cols }

var (
	_ Operator = (*blockNLJoin)(nil)
	_ Operator = (*indexNLJoin)(nil)
	_ Operator = (*hashJoin)(nil)
	_ Operator = (*mergeJoin)(nil)
)
