package stats

import (
	"errors"
	"fmt"

	"github.com/finchdb/finchdb/internal/record"
)

// ErrNotFound is returned when a table has no statistics: it is unknown or
// has not been analyzed yet. Callers are expected to fall back to
// conservative defaults instead of aborting.
var ErrNotFound = errors.New("no statistics for table")

// ColumnStats holds per-column statistics gathered by ANALYZE.
type ColumnStats struct {
	Distinct int64
	Min      record.Value
	Max      record.Value
	HasRange bool
}

// IndexStats describes one index as seen at ANALYZE time.
type IndexStats struct {
	Column  string
	Primary bool
	Height  int64
	Fanout  int64
}

// TableStats is the statistics snapshot entry for one table. It is immutable
// once published: ANALYZE replaces the whole entry, never mutates it.
type TableStats struct {
	Table      string
	RowCount   int64
	BlockCount int64
	Columns    map[string]ColumnStats
	Indexes    []IndexStats
}

// Column returns the statistics for one column, if gathered.
func (ts *TableStats) Column(name string) (ColumnStats, bool) {
	cs, ok := ts.Columns[name]
	return cs, ok
}

// Index returns the statistics for the index on the given column.
func (ts *TableStats) Index(column string) (IndexStats, bool) {
	for _, ix := range ts.Indexes {
		if ix.Column == column {
			return ix, true
		}
	}
	return IndexStats{}, false
}

// Snapshot is an immutable point-in-time view of all table statistics.
// Concurrent optimizations share a snapshot without coordination.
type Snapshot struct {
	Version uint64
	tables  map[string]*TableStats
}

// Get returns the statistics for a table, or ErrNotFound.
func (s *Snapshot) Get(table string) (*TableStats, error) {
	if ts, ok := s.tables[table]; ok {
		return ts, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, table)
}

// Tables returns the number of analyzed tables in the snapshot.
func (s *Snapshot) Tables() int {
	return len(s.tables)
}
