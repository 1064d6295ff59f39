package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchdb/finchdb/internal/plan"
	"github.com/finchdb/finchdb/internal/query"
	"github.com/finchdb/finchdb/internal/record"
	"github.com/finchdb/finchdb/internal/stats"
	"github.com/finchdb/finchdb/internal/storage"
)

// big: 2000 rows, id 0..1999 (pk).
// small: 500 rows, id 0..499 (pk), b = id%50 (secondary index).
func setupTwoTables(t *testing.T) (*storage.Engine, *stats.Snapshot) {
	t.Helper()
	eng := storage.NewEngine()

	big := record.NewSchema()
	big.AddIntField("id")
	require.NoError(t, eng.CreateTable("big", big, "id"))
	for i := 0; i < 2000; i++ {
		require.NoError(t, eng.Insert("big", record.Row{record.NewIntValue(int64(i))}))
	}

	small := record.NewSchema()
	small.AddIntField("id")
	small.AddIntField("b")
	require.NoError(t, eng.CreateTable("small", small, "id"))
	require.NoError(t, eng.CreateIndex("small_b", "small", "b"))
	for i := 0; i < 500; i++ {
		require.NoError(t, eng.Insert("small", record.Row{
			record.NewIntValue(int64(i)), record.NewIntValue(int64(i % 50)),
		}))
	}

	cat := stats.NewCatalog(eng)
	require.NoError(t, cat.AnalyzeAll())
	return eng, cat.Snapshot()
}

func eqTerm(lt, lc, rt, rc string) query.Term {
	return *query.NewTerm(
		*query.NewColumnExpression(lt, lc), query.EQ,
		*query.NewColumnExpression(rt, rc))
}

func twoTableQuery() *Query {
	return &Query{
		Tables: []TableRef{{Table: "big", Alias: "big"}, {Table: "small", Alias: "small"}},
		Pred:   query.NewPredicate(eqTerm("big", "id", "small", "b")),
	}
}

func selectWith(t *testing.T, q *Query, sess *Session, eng *storage.Engine, snap *stats.Snapshot) *plan.Node {
	t.Helper()
	root, err := Select(q, sess, eng, snap)
	require.NoError(t, err)
	return root
}

func sessionIn(mode Mode) *Session {
	s := NewSession()
	s.Mode = mode
	return s
}

func TestNaiveIsLeftDeepInDeclarationOrder(t *testing.T) {
	eng, snap := setupTwoTables(t)

	root := selectWith(t, twoTableQuery(), sessionIn(Naive), eng, snap)
	assert.True(t, root.LeftDeep())
	assert.Equal(t, []string{"big", "small"}, root.Aliases())

	// small.b is indexed, so the upgrade to an index nested loop applies
	assert.Equal(t, plan.IndexNLJoin, root.Kind)
	assert.Equal(t, plan.FullScan, root.Left.Kind)
	assert.True(t, root.Right.Probe)
	assert.Equal(t, int64(28013), root.Cost)
}

func TestBaselinePrefersMergeJoin(t *testing.T) {
	eng, snap := setupTwoTables(t)

	root := selectWith(t, twoTableQuery(), sessionIn(Baseline), eng, snap)
	assert.Equal(t, plan.MergeJoin, root.Kind)
	// both sides arrive sorted through their indexes, no sort cost
	assert.False(t, root.SortLeft)
	assert.False(t, root.SortRight)
	assert.Equal(t, plan.PrimaryIndexScan, root.Left.Kind)
	assert.Equal(t, plan.SecondaryIndexScan, root.Right.Kind)
	assert.Equal(t, int64(3044), root.Cost)
}

func TestCostBasedReordersAndWins(t *testing.T) {
	eng, snap := setupTwoTables(t)
	q := twoTableQuery()

	naive := selectWith(t, q, sessionIn(Naive), eng, snap)
	baseline := selectWith(t, q, sessionIn(Baseline), eng, snap)
	costed := selectWith(t, q, sessionIn(CostBased), eng, snap)

	assert.Less(t, costed.Cost, baseline.Cost)
	assert.Less(t, baseline.Cost, naive.Cost)

	// the cheap plan drives from the filtered small side, against declaration order
	assert.Equal(t, plan.IndexNLJoin, costed.Kind)
	assert.Equal(t, []string{"small", "big"}, costed.Aliases())
	assert.Equal(t, int64(2003), costed.Cost)
}

// A five-table chain: each table's foreign-key column carries a secondary
// index and joins the previous table's primary key. Row counts fall from
// giant to tiny, so declaration order is the worst driving order.
func setupChainTables(t *testing.T) (*storage.Engine, *stats.Snapshot) {
	t.Helper()
	eng := storage.NewEngine()

	makeTable := func(name, fk string, rows, span int) {
		schema := record.NewSchema()
		schema.AddIntField("id")
		if fk != "" {
			schema.AddIntField(fk)
		}
		require.NoError(t, eng.CreateTable(name, schema, "id"))
		if fk != "" {
			require.NoError(t, eng.CreateIndex(name+"_"+fk, name, fk))
		}
		for i := 0; i < rows; i++ {
			row := record.Row{record.NewIntValue(int64(i))}
			if fk != "" {
				row = append(row, record.NewIntValue(int64(i%span)))
			}
			require.NoError(t, eng.Insert(name, row))
		}
	}

	makeTable("giant", "", 2000, 0)
	makeTable("big", "g", 500, 50)
	makeTable("mid", "b", 300, 30)
	makeTable("small", "m", 200, 20)
	makeTable("tiny", "s", 100, 10)

	cat := stats.NewCatalog(eng)
	require.NoError(t, cat.AnalyzeAll())
	return eng, cat.Snapshot()
}

func chainQuery() *Query {
	return &Query{
		Tables: []TableRef{
			{Table: "giant", Alias: "giant"},
			{Table: "big", Alias: "big"},
			{Table: "mid", Alias: "mid"},
			{Table: "small", Alias: "small"},
			{Table: "tiny", Alias: "tiny"},
		},
		Pred: query.NewPredicate(
			eqTerm("giant", "id", "big", "g"),
			eqTerm("big", "id", "mid", "b"),
			eqTerm("mid", "id", "small", "m"),
			eqTerm("small", "id", "tiny", "s"),
		),
	}
}

func TestChainModeOrdering(t *testing.T) {
	eng, snap := setupChainTables(t)
	q := chainQuery()

	naive := selectWith(t, q, sessionIn(Naive), eng, snap)
	baseline := selectWith(t, q, sessionIn(Baseline), eng, snap)
	costed := selectWith(t, q, sessionIn(CostBased), eng, snap)

	assert.Less(t, costed.Cost, baseline.Cost)
	assert.Less(t, baseline.Cost, naive.Cost)

	assert.True(t, naive.LeftDeep())
	assert.Equal(t, []string{"giant", "big", "mid", "small", "tiny"}, naive.Aliases())
	assert.Equal(t, int64(41052), naive.Cost)

	assert.Equal(t, plan.MergeJoin, baseline.Kind)
	assert.Equal(t, int64(7261), baseline.Cost)

	// the DP drives from the smallest table and probes primary keys upward,
	// reversing the declared order entirely
	assert.Equal(t, []string{"tiny", "small", "mid", "big", "giant"}, costed.Aliases())
	assert.True(t, costed.LeftDeep())
	assert.Equal(t, plan.IndexNLJoin, costed.Kind)
	assert.Equal(t, int64(1312), costed.Cost)

	// identical leaf sets produce identical cardinality estimates
	assert.Equal(t, naive.Rows, baseline.Rows)
	assert.Equal(t, naive.Rows, costed.Rows)
}

func TestChainPlanningIsDeterministic(t *testing.T) {
	eng, snap := setupChainTables(t)
	a := selectWith(t, chainQuery(), sessionIn(CostBased), eng, snap)
	b := selectWith(t, chainQuery(), sessionIn(CostBased), eng, snap)
	assert.Equal(t, a.Explain(), b.Explain())
}

func TestEveryTableAppearsExactlyOnce(t *testing.T) {
	eng, snap := setupTwoTables(t)
	for _, mode := range []Mode{Naive, Baseline, CostBased} {
		root := selectWith(t, twoTableQuery(), sessionIn(mode), eng, snap)
		assert.ElementsMatch(t, []string{"big", "small"}, root.Aliases(), "mode %s", mode)
	}
}

func TestDisabledAlgorithmsNeverAppear(t *testing.T) {
	eng, snap := setupTwoTables(t)

	for _, mode := range []Mode{Naive, Baseline, CostBased} {
		sess := sessionIn(mode)
		sess.IndexJoin = false
		root := selectWith(t, twoTableQuery(), sess, eng, snap)
		assert.False(t, root.Contains(plan.IndexNLJoin), "mode %s", mode)

		sess = sessionIn(mode)
		sess.SortMergeJoin = false
		root = selectWith(t, twoTableQuery(), sess, eng, snap)
		assert.False(t, root.Contains(plan.MergeJoin), "mode %s", mode)

		sess = sessionIn(mode)
		sess.HashJoin = false
		root = selectWith(t, twoTableQuery(), sess, eng, snap)
		assert.False(t, root.Contains(plan.HashJoin), "mode %s", mode)
	}
}

func TestOnlyBlockNLWhenEverythingDisabled(t *testing.T) {
	eng, snap := setupTwoTables(t)

	sess := sessionIn(CostBased)
	sess.SortMergeJoin, sess.IndexJoin, sess.HashJoin = false, false, false
	root := selectWith(t, twoTableQuery(), sess, eng, snap)
	assert.Equal(t, plan.BlockNLJoin, root.Kind)
}

func TestSelectIsDeterministic(t *testing.T) {
	eng, snap := setupTwoTables(t)
	for _, mode := range []Mode{Naive, Baseline, CostBased} {
		a := selectWith(t, twoTableQuery(), sessionIn(mode), eng, snap)
		b := selectWith(t, twoTableQuery(), sessionIn(mode), eng, snap)
		assert.Equal(t, a.Explain(), b.Explain(), "mode %s", mode)
		assert.Equal(t, a.Cost, b.Cost)
	}
}

func TestStaleStatisticsStillPlan(t *testing.T) {
	eng, snap := setupTwoTables(t)

	// mutate after ANALYZE; the captured snapshot keeps planning
	require.NoError(t, eng.Insert("big", record.Row{record.NewIntValue(5000)}))
	root := selectWith(t, twoTableQuery(), sessionIn(CostBased), eng, snap)
	assert.GreaterOrEqual(t, root.Cost, int64(1))
	assert.GreaterOrEqual(t, root.Rows, int64(1))
}

func TestCrossProductWhenDisconnected(t *testing.T) {
	eng, snap := setupTwoTables(t)

	q := &Query{Tables: []TableRef{{Table: "big", Alias: "big"}, {Table: "small", Alias: "small"}}}
	for _, mode := range []Mode{Naive, Baseline, CostBased} {
		root := selectWith(t, q, sessionIn(mode), eng, snap)
		assert.Equal(t, plan.BlockNLJoin, root.Kind, "mode %s", mode)
		assert.Equal(t, []string{"big", "small"}, root.Aliases())
	}
}

func TestDegenerateQueries(t *testing.T) {
	eng, snap := setupTwoTables(t)

	_, err := Select(&Query{}, NewSession(), eng, snap)
	assert.ErrorIs(t, err, ErrNoPlanFound)

	q := &Query{Tables: []TableRef{{Table: "nope", Alias: "nope"}}}
	_, err = Select(q, NewSession(), eng, snap)
	assert.ErrorIs(t, err, ErrNoPlanFound)
}

func TestTypeErrorsSurfaceBeforePlanning(t *testing.T) {
	eng := storage.NewEngine()
	schema := record.NewSchema()
	schema.AddIntField("id")
	schema.AddStringField("name", 16)
	require.NoError(t, eng.CreateTable("t", schema, "id"))
	cat := stats.NewCatalog(eng)
	require.NoError(t, cat.AnalyzeAll())

	q := &Query{
		Tables: []TableRef{{Table: "t", Alias: "t"}},
		Pred: query.NewPredicate(*query.NewTerm(
			*query.NewColumnExpression("t", "name"), query.GT,
			*query.NewValueExpression(record.NewIntValue(3)))),
	}
	_, err := Select(q, NewSession(), eng, cat.Snapshot())
	assert.ErrorIs(t, err, record.ErrTypeMismatch)
}

func TestSingleTableSargPicksIndexScan(t *testing.T) {
	eng, snap := setupTwoTables(t)

	q := &Query{
		Tables: []TableRef{{Table: "big", Alias: "big"}},
		Pred: query.NewPredicate(*query.NewTerm(
			*query.NewColumnExpression("big", "id"), query.EQ,
			*query.NewValueExpression(record.NewIntValue(7)))),
	}
	root := selectWith(t, q, sessionIn(CostBased), eng, snap)
	assert.Equal(t, plan.PrimaryIndexScan, root.Kind)
	require.NotNil(t, root.Sarg)
	assert.True(t, root.Sarg.IsPoint())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("baseline")
	require.NoError(t, err)
	assert.Equal(t, Baseline, m)
	_, err = ParseMode("bogus")
	assert.ErrorIs(t, err, ErrBadDirective)
}
