package query

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/finchdb/finchdb/internal/record"
)

// CompareOp is a comparison operator between two expressions.
type CompareOp int

const (
	EQ CompareOp = iota
	NE
	LT
	LE
	GT
	GE
)

func (op CompareOp) String() string {
	switch op {
	case EQ:
		return "="
	case NE:
		return "<>"
	case LT:
		return "<"
	case LE:
		return "<="
	case GT:
		return ">"
	default:
		return ">="
	}
}

// Flip returns the operator that holds when the two sides are swapped,
// e.g. a < b iff b > a.
func (op CompareOp) Flip() CompareOp {
	switch op {
	case LT:
		return GT
	case LE:
		return GE
	case GT:
		return LT
	case GE:
		return LE
	default:
		return op
	}
}

func (op CompareOp) holds(cmp int) bool {
	switch op {
	case EQ:
		return cmp == 0
	case NE:
		return cmp != 0
	case LT:
		return cmp < 0
	case LE:
		return cmp <= 0
	case GT:
		return cmp > 0
	default:
		return cmp >= 0
	}
}

// Term represents a boolean comparison between two expressions
// (e.g. field = constant, t1.a <= t2.b, a + 1 > 3).
type Term struct {
	left  Expression
	op    CompareOp
	right Expression
}

// NewTerm creates a new Term comparing two expressions.
func NewTerm(left Expression, op CompareOp, right Expression) *Term {
	return &Term{left: left, op: op, right: right}
}

func (t *Term) Left() *Expression  { return &t.left }
func (t *Term) Right() *Expression { return &t.right }
func (t *Term) Op() CompareOp      { return t.op }

// String returns a string representation of the term.
func (t *Term) String() string {
	return fmt.Sprintf("%s %s %s", t.left.String(), t.op, t.right.String())
}

// IsSatisfied checks whether the term holds for the row exposed by resolve.
func (t *Term) IsSatisfied(resolve func(ColumnRef) (record.Value, error)) (bool, error) {
	lv, err := t.left.Evaluate(resolve)
	if err != nil {
		return false, err
	}
	rv, err := t.right.Evaluate(resolve)
	if err != nil {
		return false, err
	}
	cmp, err := lv.Compare(rv)
	if err != nil {
		return false, err
	}
	return t.op.holds(cmp), nil
}

// AppliesTo checks if every column in the term belongs to the given aliases.
func (t *Term) AppliesTo(aliases mapset.Set[string]) bool {
	return t.left.AppliesTo(aliases) && t.right.AppliesTo(aliases)
}

// Columns returns every column referenced by either side of the term.
func (t *Term) Columns() []ColumnRef {
	return append(t.left.Columns(), t.right.Columns()...)
}

// EquatesColumns checks if this term is a pure column equality
// (t1.a = t2.b). If so it returns the two column references.
func (t *Term) EquatesColumns() (ColumnRef, ColumnRef, bool) {
	if t.op == EQ && t.left.IsColumn() && t.right.IsColumn() {
		return t.left.AsColumn(), t.right.AsColumn(), true
	}
	return ColumnRef{}, ColumnRef{}, false
}

// ColumnBound checks if the term compares a single bare column against a
// constant expression. If so it returns the column, the comparison
// normalized so that the column is on the left, and the constant value.
func (t *Term) ColumnBound() (ColumnRef, CompareOp, record.Value, bool) {
	if t.left.IsColumn() {
		if v, ok := t.right.EvalConst(); ok {
			return t.left.AsColumn(), t.op, v, true
		}
	}
	if t.right.IsColumn() {
		if v, ok := t.left.EvalConst(); ok {
			return t.right.AsColumn(), t.op.Flip(), v, true
		}
	}
	return ColumnRef{}, EQ, record.Value{}, false
}
