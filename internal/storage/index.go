package storage

import (
	"math"

	"github.com/google/btree"

	"github.com/finchdb/finchdb/internal/query"
	"github.com/finchdb/finchdb/internal/record"
)

// btreeDegree is the branching degree of in-memory index trees; Fanout
// derives from it for height estimation.
const btreeDegree = 32

type indexEntry struct {
	key record.Value
	row RowID
}

// Index is an ordered secondary or primary index over a single column,
// supporting point lookups, range scans and full sorted iteration.
type Index struct {
	name    string
	column  string
	primary bool
	tree    *btree.BTreeG[indexEntry]
}

func newIndex(name, column string, primary bool) *Index {
	less := func(a, b indexEntry) bool {
		cmp, err := a.key.Compare(b.key)
		if err != nil {
			// mixed kinds cannot occur within one typed column
			return a.row < b.row
		}
		if cmp != 0 {
			return cmp < 0
		}
		return a.row < b.row
	}
	return &Index{
		name:    name,
		column:  column,
		primary: primary,
		tree:    btree.NewG(btreeDegree, less),
	}
}

func (ix *Index) Name() string   { return ix.name }
func (ix *Index) Column() string { return ix.column }
func (ix *Index) Primary() bool  { return ix.primary }

// Len returns the number of entries in the index.
func (ix *Index) Len() int64 { return int64(ix.tree.Len()) }

func (ix *Index) insert(key record.Value, row RowID) {
	ix.tree.ReplaceOrInsert(indexEntry{key: key, row: row})
}

// Scan visits matching entries in key order. A nil range visits the whole
// index (sorted iteration). The visitor returns false to stop early.
func (ix *Index) Scan(rng *query.Range, visit func(key record.Value, row RowID) (bool, error)) error {
	var visitErr error
	iter := func(e indexEntry) bool {
		if rng != nil {
			ok, err := rng.Contains(e.key)
			if err != nil {
				visitErr = err
				return false
			}
			if !ok {
				// entries are ordered; past the upper bound means done,
				// below the lower bound means keep walking
				if rng.Hi != nil {
					if cmp, err := e.key.Compare(*rng.Hi); err == nil && cmp > 0 {
						return false
					}
				}
				return true
			}
		}
		cont, err := visit(e.key, e.row)
		if err != nil {
			visitErr = err
			return false
		}
		return cont
	}
	if rng != nil && rng.Lo != nil {
		ix.tree.AscendGreaterOrEqual(indexEntry{key: *rng.Lo, row: math.MinInt64}, iter)
	} else {
		ix.tree.Ascend(iter)
	}
	return visitErr
}

// containsKey reports whether any entry carries the key.
func (ix *Index) containsKey(key record.Value) bool {
	found := false
	_ = ix.Scan(query.PointRange(key), func(record.Value, RowID) (bool, error) {
		found = true
		return false, nil
	})
	return found
}

// Height estimates the number of levels in an equivalent disk B+tree,
// used by the cost model as the per-probe I/O floor.
func (ix *Index) Height() int64 {
	return EstimateHeight(ix.Len(), ix.Fanout())
}

// Fanout returns the estimated keys-per-node branching factor.
func (ix *Index) Fanout() int64 { return 2 * btreeDegree }

// EstimateHeight computes ceil(log_fanout(entries)), floored at 1.
func EstimateHeight(entries, fanout int64) int64 {
	if entries < 2 || fanout < 2 {
		return 1
	}
	h := int64(math.Ceil(math.Log(float64(entries)) / math.Log(float64(fanout))))
	if h < 1 {
		return 1
	}
	return h
}
