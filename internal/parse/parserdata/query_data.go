package parserdata

import (
	"github.com/finchdb/finchdb/internal/query"
)

// TableRef is one FROM-list entry: a table plus the alias it is referred to
// by (the table name itself when no alias is given).
type TableRef struct {
	Table string
	Alias string
}

type QueryData struct {
	star      bool
	fields    []*query.Expression
	tables    []TableRef
	predicate *query.Predicate
}

func NewQueryData(star bool, fields []*query.Expression, tables []TableRef, predicate *query.Predicate) *QueryData {
	return &QueryData{
		star:      star,
		fields:    fields,
		tables:    tables,
		predicate: predicate,
	}
}

// Star reports whether the select list was "*".
func (q *QueryData) Star() bool {
	return q.star
}

func (q *QueryData) Fields() []*query.Expression {
	return q.fields
}

func (q *QueryData) Tables() []TableRef {
	return q.tables
}

func (q *QueryData) Predicate() *query.Predicate {
	return q.predicate
}
