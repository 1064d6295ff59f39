// Package exec runs physical plan trees against the storage engine. The
// operators are pull-based iterators over fully materialized in-memory
// tables; the planner's algorithm choice is honored exactly, never second-
// guessed here.
package exec

import (
	"errors"
	"fmt"

	"github.com/finchdb/finchdb/internal/query"
	"github.com/finchdb/finchdb/internal/record"
)

var ErrUnknownColumn = errors.New("column not produced by operator")

// Operator is a pull-based row iterator. Next returns false when the stream
// is exhausted. Columns describes the output row layout in order.
type Operator interface {
	Open() error
	Next() (record.Row, bool, error)
	Close() error
	Columns() []query.ColumnRef
}

// resolver binds a row to its column layout for predicate evaluation.
func resolver(cols []query.ColumnRef, row record.Row) func(query.ColumnRef) (record.Value, error) {
	return func(c query.ColumnRef) (record.Value, error) {
		for i, col := range cols {
			if col.Table == c.Table && col.Column == c.Column {
				return row[i], nil
			}
		}
		return record.Value{}, fmt.Errorf("%w: %s", ErrUnknownColumn, c)
	}
}

func columnValue(cols []query.ColumnRef, row record.Row, c query.ColumnRef) (record.Value, error) {
	return resolver(cols, row)(c)
}

// Run drains an operator and returns the produced rows.
func Run(op Operator) ([]record.Row, error) {
	if err := op.Open(); err != nil {
		return nil, err
	}
	defer op.Close()

	var out []record.Row
	for {
		row, ok, err := op.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, row)
	}
}
