package stats

import (
	"fmt"
	"log"
	"sync/atomic"

	"github.com/finchdb/finchdb/internal/record"
	"github.com/finchdb/finchdb/internal/storage"
)

// Catalog owns the current statistics snapshot. Analyze builds a fresh
// snapshot aside and installs it with a single atomic pointer store, so
// optimizations in flight keep the snapshot they captured and never observe
// a partial update. Statistics staleness is tolerated, never an error.
type Catalog struct {
	engine *storage.Engine
	snap   atomic.Pointer[Snapshot]
}

func NewCatalog(engine *storage.Engine) *Catalog {
	c := &Catalog{engine: engine}
	c.snap.Store(&Snapshot{tables: make(map[string]*TableStats)})
	return c
}

// Snapshot returns the current statistics snapshot.
func (c *Catalog) Snapshot() *Snapshot {
	return c.snap.Load()
}

// Analyze recomputes statistics for one table and publishes a new snapshot.
// Returns ErrNotFound if the table is not registered.
func (c *Catalog) Analyze(table string) error {
	tbl, ok := c.engine.Table(table)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, table)
	}
	ts, err := c.scanTable(tbl)
	if err != nil {
		return err
	}
	c.publish([]*TableStats{ts})
	return nil
}

// AnalyzeAll recomputes statistics for every registered table.
func (c *Catalog) AnalyzeAll() error {
	var fresh []*TableStats
	for _, name := range c.engine.Tables() {
		tbl, ok := c.engine.Table(name)
		if !ok {
			continue
		}
		ts, err := c.scanTable(tbl)
		if err != nil {
			return err
		}
		fresh = append(fresh, ts)
	}
	c.publish(fresh)
	return nil
}

// publish installs a new snapshot carrying the fresh entries plus the
// untouched entries of the previous snapshot (copy-on-write).
func (c *Catalog) publish(fresh []*TableStats) {
	old := c.snap.Load()
	next := &Snapshot{
		Version: old.Version + 1,
		tables:  make(map[string]*TableStats, len(old.tables)+len(fresh)),
	}
	for name, ts := range old.tables {
		next.tables[name] = ts
	}
	for _, ts := range fresh {
		next.tables[ts.Table] = ts
	}
	c.snap.Store(next)
}

func (c *Catalog) scanTable(tbl *storage.Table) (*TableStats, error) {
	schema := tbl.Schema()
	fields := schema.Fields()

	distinct := make([]map[string]struct{}, len(fields))
	mins := make([]record.Value, len(fields))
	maxs := make([]record.Value, len(fields))
	seen := make([]bool, len(fields))
	for i := range distinct {
		distinct[i] = make(map[string]struct{})
	}

	rows := int64(0)
	err := tbl.Heap().Scan(func(_ storage.RowID, row record.Row) (bool, error) {
		rows++
		for i, v := range row {
			distinct[i][v.String()] = struct{}{}
			if !seen[i] {
				mins[i], maxs[i] = v, v
				seen[i] = true
				continue
			}
			if cmp, err := v.Compare(mins[i]); err == nil && cmp < 0 {
				mins[i] = v
			}
			if cmp, err := v.Compare(maxs[i]); err == nil && cmp > 0 {
				maxs[i] = v
			}
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	ts := &TableStats{
		Table:      tbl.Name(),
		RowCount:   rows,
		BlockCount: tbl.NumBlocks(),
		Columns:    make(map[string]ColumnStats, len(fields)),
	}
	for i, f := range fields {
		ts.Columns[f] = ColumnStats{
			Distinct: int64(len(distinct[i])),
			Min:      mins[i],
			Max:      maxs[i],
			HasRange: seen[i],
		}
	}
	for _, ix := range tbl.Indexes() {
		ts.Indexes = append(ts.Indexes, IndexStats{
			Column:  ix.Column(),
			Primary: ix.Primary(),
			Height:  ix.Height(),
			Fanout:  ix.Fanout(),
		})
	}
	log.Printf("[STATS] Analyze: table %s rows=%d blocks=%d indexes=%d",
		tbl.Name(), ts.RowCount, ts.BlockCount, len(ts.Indexes))
	return ts, nil
}
