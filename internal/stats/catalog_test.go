package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchdb/finchdb/internal/record"
	"github.com/finchdb/finchdb/internal/storage"
)

func setupEngine(t *testing.T) *storage.Engine {
	t.Helper()
	eng := storage.NewEngine()

	schema := record.NewSchema()
	schema.AddIntField("a")
	schema.AddIntField("b")
	require.NoError(t, eng.CreateTable("t1", schema, "a"))
	require.NoError(t, eng.CreateIndex("t1_b", "t1", "b"))

	for i := 0; i < 100; i++ {
		require.NoError(t, eng.Insert("t1", record.Row{
			record.NewIntValue(int64(i)),
			record.NewIntValue(int64(i % 10)),
		}))
	}
	return eng
}

func TestAnalyzeComputesColumnStats(t *testing.T) {
	eng := setupEngine(t)
	cat := NewCatalog(eng)

	require.NoError(t, cat.Analyze("t1"))
	snap := cat.Snapshot()

	ts, err := snap.Get("t1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), ts.RowCount)
	assert.Greater(t, ts.BlockCount, int64(0))

	a, ok := ts.Column("a")
	require.True(t, ok)
	assert.Equal(t, int64(100), a.Distinct)
	assert.Equal(t, int64(0), a.Min.AsInt())
	assert.Equal(t, int64(99), a.Max.AsInt())

	b, ok := ts.Column("b")
	require.True(t, ok)
	assert.Equal(t, int64(10), b.Distinct)
	assert.Equal(t, int64(9), b.Max.AsInt())

	require.Len(t, ts.Indexes, 2)
	pk, ok := ts.Index("a")
	require.True(t, ok)
	assert.True(t, pk.Primary)
	assert.GreaterOrEqual(t, pk.Height, int64(1))
	sec, ok := ts.Index("b")
	require.True(t, ok)
	assert.False(t, sec.Primary)
}

func TestGetUnanalyzedTable(t *testing.T) {
	cat := NewCatalog(setupEngine(t))

	_, err := cat.Snapshot().Get("t1")
	assert.ErrorIs(t, err, ErrNotFound)

	err = cat.Analyze("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotIsolation(t *testing.T) {
	eng := setupEngine(t)
	cat := NewCatalog(eng)
	require.NoError(t, cat.Analyze("t1"))

	before := cat.Snapshot()
	tsBefore, err := before.Get("t1")
	require.NoError(t, err)

	// mutate the table, re-analyze; the captured snapshot must be untouched
	for i := 100; i < 200; i++ {
		require.NoError(t, eng.Insert("t1", record.Row{
			record.NewIntValue(int64(i)),
			record.NewIntValue(0),
		}))
	}
	require.NoError(t, cat.Analyze("t1"))

	assert.Equal(t, int64(100), tsBefore.RowCount, "old snapshot mutated")
	tsAfter, err := cat.Snapshot().Get("t1")
	require.NoError(t, err)
	assert.Equal(t, int64(200), tsAfter.RowCount)
	assert.Greater(t, cat.Snapshot().Version, before.Version)
}

func TestStaleStatsAreNotAnError(t *testing.T) {
	eng := setupEngine(t)
	cat := NewCatalog(eng)
	require.NoError(t, cat.Analyze("t1"))

	// insert rows without re-analyzing: stats are stale but readable
	require.NoError(t, eng.Insert("t1", record.Row{
		record.NewIntValue(1000), record.NewIntValue(1),
	}))
	ts, err := cat.Snapshot().Get("t1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), ts.RowCount)
}

func TestAnalyzeAll(t *testing.T) {
	eng := setupEngine(t)
	schema := record.NewSchema()
	schema.AddStringField("s", 8)
	require.NoError(t, eng.CreateTable("t2", schema, ""))
	require.NoError(t, eng.Insert("t2", record.Row{record.NewStringValue("x")}))

	cat := NewCatalog(eng)
	require.NoError(t, cat.AnalyzeAll())

	assert.Equal(t, 2, cat.Snapshot().Tables())
	ts, err := cat.Snapshot().Get("t2")
	require.NoError(t, err)
	assert.Equal(t, int64(1), ts.RowCount)
	cs, ok := ts.Column("s")
	require.True(t, ok)
	assert.Equal(t, int64(1), cs.Distinct)
}
