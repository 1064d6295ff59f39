package query

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finchdb/finchdb/internal/record"
)

func col(table, name string) Expression {
	return *NewColumnExpression(table, name)
}

func lit(v record.Value) Expression {
	return *NewValueExpression(v)
}

func aliases(names ...string) mapset.Set[string] {
	return mapset.NewThreadUnsafeSet(names...)
}

func TestPredicateIsSatisfied(t *testing.T) {
	// t1.a > 3 AND t1.b = 'x'
	pred := NewPredicate(
		*NewTerm(col("t1", "a"), GT, lit(record.NewIntValue(3))),
		*NewTerm(col("t1", "b"), EQ, lit(record.NewStringValue("x"))),
	)

	resolve := func(vals map[string]record.Value) func(ColumnRef) (record.Value, error) {
		return func(c ColumnRef) (record.Value, error) {
			return vals[c.String()], nil
		}
	}

	ok, err := pred.IsSatisfied(resolve(map[string]record.Value{
		"t1.a": record.NewIntValue(5),
		"t1.b": record.NewStringValue("x"),
	}))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = pred.IsSatisfied(resolve(map[string]record.Value{
		"t1.a": record.NewIntValue(2),
		"t1.b": record.NewStringValue("x"),
	}))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSelectSubPredAndJoinSubPred(t *testing.T) {
	// t1.a = 1 AND t2.b > 2 AND t1.a = t2.b AND t1.a + t2.b < 10
	pred := NewPredicate(
		*NewTerm(col("t1", "a"), EQ, lit(record.NewIntValue(1))),
		*NewTerm(col("t2", "b"), GT, lit(record.NewIntValue(2))),
		*NewTerm(col("t1", "a"), EQ, col("t2", "b")),
		*NewTerm(*NewArithExpression(Add, NewColumnExpression("t1", "a"), NewColumnExpression("t2", "b")), LT, lit(record.NewIntValue(10))),
	)

	local1 := pred.SelectSubPred(aliases("t1"))
	require.NotNil(t, local1)
	assert.Equal(t, "t1.a = 1", local1.String())

	local2 := pred.SelectSubPred(aliases("t2"))
	require.NotNil(t, local2)
	assert.Equal(t, "t2.b > 2", local2.String())

	joined := pred.JoinSubPred(aliases("t1"), aliases("t2"))
	require.NotNil(t, joined)
	assert.Len(t, joined.Terms(), 2)

	assert.Nil(t, pred.SelectSubPred(aliases("t3")))
}

func TestEquiJoinPairs(t *testing.T) {
	pred := NewPredicate(
		*NewTerm(col("t1", "a"), EQ, col("t2", "b")),
		*NewTerm(col("t2", "c"), EQ, col("t1", "d")),
		*NewTerm(col("t1", "a"), LT, col("t2", "c")),
	)

	pairs, remainder := EquiJoinPairs(pred, aliases("t1"), aliases("t2"))
	require.Len(t, pairs, 2)
	// left side of each pair is always from the left alias set
	assert.Equal(t, "t1.a", pairs[0].First.String())
	assert.Equal(t, "t2.b", pairs[0].Second.String())
	assert.Equal(t, "t1.d", pairs[1].First.String())
	assert.Equal(t, "t2.c", pairs[1].Second.String())

	require.NotNil(t, remainder)
	assert.Equal(t, "t1.a < t2.c", remainder.String())
}

func TestEquiJoinPairsNoneSpanning(t *testing.T) {
	pred := NewPredicate(
		*NewTerm(col("t1", "a"), EQ, lit(record.NewIntValue(1))),
	)
	pairs, remainder := EquiJoinPairs(pred, aliases("t1"), aliases("t2"))
	assert.Empty(t, pairs)
	assert.True(t, remainder.IsEmpty())
	assert.False(t, Connected(pred, aliases("t1"), aliases("t2")))
}

func TestExtractRangeConjunction(t *testing.T) {
	// 3 < a AND a <= 8  =>  (3, 8]
	pred := NewPredicate(
		*NewTerm(lit(record.NewIntValue(3)), LT, col("t", "a")),
		*NewTerm(col("t", "a"), LE, lit(record.NewIntValue(8))),
		*NewTerm(col("t", "b"), EQ, lit(record.NewIntValue(9))),
	)

	rng, remainder, ok := ExtractRange(pred, "t", "a")
	require.True(t, ok)
	assert.Equal(t, "(3, 8]", rng.String())
	require.NotNil(t, remainder)
	assert.Equal(t, "t.b = 9", remainder.String())
}

func TestExtractRangeEqualityWins(t *testing.T) {
	pred := NewPredicate(
		*NewTerm(col("t", "a"), GT, lit(record.NewIntValue(0))),
		*NewTerm(col("t", "a"), EQ, lit(record.NewIntValue(5))),
	)
	rng, remainder, ok := ExtractRange(pred, "t", "a")
	require.True(t, ok)
	assert.True(t, rng.IsPoint())
	// the non-equality bound remains as a residual filter
	require.NotNil(t, remainder)
	assert.Equal(t, "t.a > 0", remainder.String())
}

func TestExtractRangeBooleanEquality(t *testing.T) {
	pred := NewPredicate(
		*NewTerm(col("t", "flag"), EQ, lit(record.NewBoolValue(true))),
	)
	rng, remainder, ok := ExtractRange(pred, "t", "flag")
	require.True(t, ok)
	assert.True(t, rng.IsPoint())
	assert.Nil(t, remainder)
}

func TestExtractRangeNothingSargable(t *testing.T) {
	pred := NewPredicate(
		*NewTerm(col("t", "a"), NE, lit(record.NewIntValue(1))),
		*NewTerm(col("t", "a"), EQ, col("t", "b")),
	)
	_, remainder, ok := ExtractRange(pred, "t", "a")
	assert.False(t, ok)
	assert.Equal(t, pred.String(), remainder.String())
}

func TestRangeContains(t *testing.T) {
	lo, hi := record.NewIntValue(3), record.NewIntValue(8)
	rng := &Range{Lo: &lo, Hi: &hi, LoExcl: true}

	for v, want := range map[int64]bool{2: false, 3: false, 4: true, 8: true, 9: false} {
		got, err := rng.Contains(record.NewIntValue(v))
		require.NoError(t, err)
		assert.Equal(t, want, got, "value %d", v)
	}
}

func TestArithmeticEvaluate(t *testing.T) {
	// (a + 1) * 2
	e := NewArithExpression(Mul,
		NewArithExpression(Add, NewColumnExpression("t", "a"), NewValueExpression(record.NewIntValue(1))),
		NewValueExpression(record.NewIntValue(2)))

	v, err := e.Evaluate(func(ColumnRef) (record.Value, error) {
		return record.NewIntValue(4), nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), v.AsInt())

	_, err = NewArithExpression(Div, NewValueExpression(record.NewIntValue(1)), NewValueExpression(record.NewIntValue(0))).
		Evaluate(nil)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestQualifyAndCheckTypes(t *testing.T) {
	s1 := record.NewSchema()
	s1.AddIntField("a")
	s2 := record.NewSchema()
	s2.AddFloatField("b")
	s2.AddStringField("name", 10)
	schemas := map[string]*record.Schema{"t1": s1, "t2": s2}
	order := []string{"t1", "t2"}

	pred := NewPredicate(
		*NewTerm(col("", "a"), EQ, col("", "b")),
	)
	require.NoError(t, Qualify(pred, schemas, order))
	assert.Equal(t, "t1.a = t2.b", pred.String())
	require.NoError(t, CheckTypes(pred, schemas))

	// string vs numeric comparison fails with a type mismatch
	bad := NewPredicate(*NewTerm(col("t2", "name"), GT, lit(record.NewIntValue(1))))
	err := CheckTypes(bad, schemas)
	assert.ErrorIs(t, err, record.ErrTypeMismatch)

	// unknown column surfaces during qualification
	unknown := NewPredicate(*NewTerm(col("", "zz"), EQ, lit(record.NewIntValue(1))))
	err = Qualify(unknown, schemas, order)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestCheckTypesBooleanNumericCoercion(t *testing.T) {
	s := record.NewSchema()
	s.AddBoolField("flag")
	s.AddIntField("n")
	schemas := map[string]*record.Schema{"t": s}

	pred := NewPredicate(
		*NewTerm(col("t", "flag"), EQ, lit(record.NewBoolValue(true))),
		*NewTerm(col("t", "flag"), EQ, col("t", "n")),
	)
	assert.NoError(t, CheckTypes(pred, schemas))
}
