package exec

import (
	"github.com/finchdb/finchdb/internal/query"
	"github.com/finchdb/finchdb/internal/record"
)

// filterOp passes through the child rows satisfying the predicate.
type filterOp struct {
	child Operator
	pred  *query.Predicate
}

func newFilter(child Operator, pred *query.Predicate) Operator {
	if pred.IsEmpty() {
		return child
	}
	return &filterOp{child: child, pred: pred}
}

func (f *filterOp) Open() error  { return f.child.Open() }
func (f *filterOp) Close() error { return f.child.Close() }

func (f *filterOp) Columns() []query.ColumnRef { return f.child.Columns() }

func (f *filterOp) Next() (record.Row, bool, error) {
	for {
		row, ok, err := f.child.Next()
		if err != nil || !ok {
			return nil, false, err
		}
		keep, err := f.pred.IsSatisfied(resolver(f.child.Columns(), row))
		if err != nil {
			return nil, false, err
		}
		if keep {
			return row, true, nil
		}
	}
}

// projectOp evaluates a list of expressions per input row.
type projectOp struct {
	child Operator
	exprs []*query.Expression
	cols  []query.ColumnRef
}

// NewProject wraps an operator with an expression projection.
func NewProject(child Operator, exprs []*query.Expression) Operator {
	cols := make([]query.ColumnRef, len(exprs))
	for i, e := range exprs {
		if e.IsColumn() {
			cols[i] = e.AsColumn()
		} else {
			cols[i] = query.ColumnRef{Column: e.String()}
		}
	}
	return &projectOp{child: child, exprs: exprs, cols: cols}
}

func (p *projectOp) Open() error  { return p.child.Open() }
func (p *projectOp) Close() error { return p.child.Close() }

func (p *projectOp) Columns() []query.ColumnRef { return p.cols }

func (p *projectOp) Next() (record.Row, bool, error) {
	row, ok, err := p.child.Next()
	if err != nil || !ok {
		return nil, false, err
	}
	resolve := resolver(p.child.Columns(), row)
	out := make(record.Row, len(p.exprs))
	for i, e := range p.exprs {
		v, err := e.Evaluate(resolve)
		if err != nil {
			return nil, false, err
		}
		out[i] = v
	}
	return out, true, nil
}

var (
	_ Operator = (*filterOp)(nil)
	_ Operator = (*projectOp)(nil)
)
