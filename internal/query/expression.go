package query

import (
	"errors"
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/golang-collections/collections/stack"

	"github.com/finchdb/finchdb/internal/record"
)

var ErrDivisionByZero = errors.New("division by zero")

// ColumnRef names a column, optionally qualified by a table alias.
type ColumnRef struct {
	Table  string
	Column string
}

// String returns "alias.column", or just "column" when unqualified.
func (c ColumnRef) String() string {
	if c.Table == "" {
		return c.Column
	}
	return c.Table + "." + c.Column
}

// ArithOp is a binary arithmetic operator inside an expression.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
)

func (op ArithOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	default:
		return "/"
	}
}

// Expression is a column reference, a literal value, or a binary arithmetic
// expression over two sub-expressions.
type Expression struct {
	col   *ColumnRef
	val   *record.Value
	left  *Expression
	right *Expression
	op    ArithOp
}

// NewColumnExpression creates an expression referencing table.column
// (table may be empty for an unqualified reference).
func NewColumnExpression(table, column string) *Expression {
	return &Expression{col: &ColumnRef{Table: table, Column: column}}
}

// NewValueExpression creates a literal expression.
func NewValueExpression(v record.Value) *Expression {
	return &Expression{val: &v}
}

// NewArithExpression creates a binary arithmetic expression.
func NewArithExpression(op ArithOp, left, right *Expression) *Expression {
	return &Expression{op: op, left: left, right: right}
}

// IsColumn checks if the expression is a bare column reference.
func (e *Expression) IsColumn() bool { return e.col != nil }

// AsColumn returns the column reference of the expression.
func (e *Expression) AsColumn() ColumnRef { return *e.col }

// IsValue checks if the expression is a bare literal.
func (e *Expression) IsValue() bool { return e.val != nil }

// AsValue returns the literal value of the expression.
func (e *Expression) AsValue() record.Value { return *e.val }

// IsArith checks if the expression is a binary arithmetic expression.
func (e *Expression) IsArith() bool { return e.left != nil }

// Columns returns every column referenced anywhere in the expression tree.
func (e *Expression) Columns() []ColumnRef {
	var cols []ColumnRef
	pending := stack.New()
	pending.Push(e)
	for pending.Len() > 0 {
		cur := pending.Pop().(*Expression)
		switch {
		case cur.IsColumn():
			cols = append(cols, *cur.col)
		case cur.IsArith():
			pending.Push(cur.right)
			pending.Push(cur.left)
		}
	}
	return cols
}

// qualify rewrites the table qualifier of every unqualified column reference
// using the supplied resolver.
func (e *Expression) qualify(resolve func(column string) (string, error)) error {
	pending := stack.New()
	pending.Push(e)
	for pending.Len() > 0 {
		cur := pending.Pop().(*Expression)
		switch {
		case cur.IsColumn():
			if cur.col.Table == "" {
				alias, err := resolve(cur.col.Column)
				if err != nil {
					return err
				}
				cur.col.Table = alias
			}
		case cur.IsArith():
			pending.Push(cur.right)
			pending.Push(cur.left)
		}
	}
	return nil
}

// Evaluate computes the value of the expression, resolving column references
// through the given callback.
func (e *Expression) Evaluate(resolve func(ColumnRef) (record.Value, error)) (record.Value, error) {
	switch {
	case e.IsValue():
		return *e.val, nil
	case e.IsColumn():
		return resolve(*e.col)
	}
	lv, err := e.left.Evaluate(resolve)
	if err != nil {
		return record.Value{}, err
	}
	rv, err := e.right.Evaluate(resolve)
	if err != nil {
		return record.Value{}, err
	}
	ln, lok := lv.AsNumeric()
	rn, rok := rv.AsNumeric()
	if !lok || !rok {
		return record.Value{}, fmt.Errorf("arithmetic on non-numeric operand: %w", record.ErrTypeMismatch)
	}
	bothInt := lv.Kind() == record.IntType && rv.Kind() == record.IntType
	switch e.op {
	case Add:
		if bothInt {
			return record.NewIntValue(lv.AsInt() + rv.AsInt()), nil
		}
		return record.NewFloatValue(ln + rn), nil
	case Sub:
		if bothInt {
			return record.NewIntValue(lv.AsInt() - rv.AsInt()), nil
		}
		return record.NewFloatValue(ln - rn), nil
	case Mul:
		if bothInt {
			return record.NewIntValue(lv.AsInt() * rv.AsInt()), nil
		}
		return record.NewFloatValue(ln * rn), nil
	default:
		if rn == 0 {
			return record.Value{}, ErrDivisionByZero
		}
		return record.NewFloatValue(ln / rn), nil
	}
}

// EvalConst evaluates an expression that references no columns.
// The second result is false if the expression is not constant.
func (e *Expression) EvalConst() (record.Value, bool) {
	if len(e.Columns()) > 0 {
		return record.Value{}, false
	}
	v, err := e.Evaluate(func(ColumnRef) (record.Value, error) {
		return record.Value{}, errors.New("unexpected column")
	})
	if err != nil {
		return record.Value{}, false
	}
	return v, true
}

// AppliesTo reports whether every column referenced by the expression belongs
// to one of the given table aliases.
func (e *Expression) AppliesTo(aliases mapset.Set[string]) bool {
	for _, c := range e.Columns() {
		if !aliases.Contains(c.Table) {
			return false
		}
	}
	return true
}

// String returns a string representation of the expression.
func (e *Expression) String() string {
	switch {
	case e.IsColumn():
		return e.col.String()
	case e.IsValue():
		return e.val.String()
	default:
		return fmt.Sprintf("(%s %s %s)", e.left.String(), e.op, e.right.String())
	}
}
