package exec

import (
	"github.com/finchdb/finchdb/internal/query"
	"github.com/finchdb/finchdb/internal/record"
	"github.com/finchdb/finchdb/internal/storage"
)

func tableColumns(tbl *storage.Table, alias string) []query.ColumnRef {
	fields := tbl.Schema().Fields()
	cols := make([]query.ColumnRef, len(fields))
	for i, f := range fields {
		cols[i] = query.ColumnRef{Table: alias, Column: f}
	}
	return cols
}

// heapScan reads a table front to back.
type heapScan struct {
	tbl  *storage.Table
	cols []query.ColumnRef
	next storage.RowID
}

func newHeapScan(tbl *storage.Table, alias string) *heapScan {
	return &heapScan{tbl: tbl, cols: tableColumns(tbl, alias)}
}

func (s *heapScan) Open() error {
	s.next = 0
	return nil
}

func (s *heapScan) Next() (record.Row, bool, error) {
	if s.next >= storage.RowID(s.tbl.NumRows()) {
		return nil, false, nil
	}
	row, err := s.tbl.Heap().Get(s.next)
	if err != nil {
		return nil, false, err
	}
	s.next++
	return row, true, nil
}

func (s *heapScan) Close() error { return nil }

func (s *heapScan) Columns() []query.ColumnRef { return s.cols }

// indexScan reads the rows matching a key range in key order. The matching
// row ids are collected up front; the heap rows are fetched lazily.
type indexScan struct {
	tbl  *storage.Table
	ix   *storage.Index
	cols []query.ColumnRef
	rng  *query.Range
	ids  []storage.RowID
	pos  int
}

func newIndexScan(tbl *storage.Table, ix *storage.Index, alias string, rng *query.Range) *indexScan {
	return &indexScan{tbl: tbl, ix: ix, cols: tableColumns(tbl, alias), rng: rng}
}

func (s *indexScan) Open() error {
	s.ids = s.ids[:0]
	s.pos = 0
	return s.ix.Scan(s.rng, func(_ record.Value, id storage.RowID) (bool, error) {
		s.ids = append(s.ids, id)
		return true, nil
	})
}

func (s *indexScan) Next() (record.Row, bool, error) {
	if s.pos >= len(s.ids) {
		return nil, false, nil
	}
	row, err := s.tbl.Heap().Get(s.ids[s.pos])
	if err != nil {
		return nil, false, err
	}
	s.pos++
	return row, true, nil
}

func (s *indexScan) Close() error { return nil }

func (s *indexScan) Columns() []query.ColumnRef { return s.cols }

var (
	_ Operator = (*heapScan)(nil)
	_ Operator = (*indexScan)(nil)
)
