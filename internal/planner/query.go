package planner

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/finchdb/finchdb/internal/query"
)

// TableRef is one table reference of a query: a base table plus the alias it
// is known by in predicates (the table name itself when unaliased).
type TableRef struct {
	Table string
	Alias string
}

// Query is the optimizer's logical input: table references in declaration
// order and the WHERE conjunction. It is immutable for the duration of one
// Select call.
type Query struct {
	Tables []TableRef
	Pred   *query.Predicate
}

func (q *Query) aliasSet() mapset.Set[string] {
	s := mapset.NewThreadUnsafeSet[string]()
	for _, t := range q.Tables {
		s.Add(t.Alias)
	}
	return s
}

// joinColumns returns the columns of the given alias that appear in a column
// equality with some other table: the alias's candidate join keys.
func (q *Query) joinColumns(alias string) mapset.Set[string] {
	cols := mapset.NewThreadUnsafeSet[string]()
	if q.Pred.IsEmpty() {
		return cols
	}
	for _, t := range q.Pred.Terms() {
		lc, rc, ok := t.EquatesColumns()
		if !ok {
			continue
		}
		if lc.Table == alias && rc.Table != alias {
			cols.Add(lc.Column)
		}
		if rc.Table == alias && lc.Table != alias {
			cols.Add(rc.Column)
		}
	}
	return cols
}
