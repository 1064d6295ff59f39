package query

import (
	"errors"
	"fmt"

	"github.com/finchdb/finchdb/internal/record"
)

var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrAmbiguousColumn = errors.New("ambiguous column")
)

// Qualify rewrites every unqualified column reference in the predicate to
// the unique alias whose schema declares it. Fails if a column is declared
// by no alias or by more than one.
func Qualify(p *Predicate, schemas map[string]*record.Schema, order []string) error {
	if p.IsEmpty() {
		return nil
	}
	resolve := columnOwner(schemas, order)
	for i := range p.terms {
		if err := p.terms[i].left.qualify(resolve); err != nil {
			return err
		}
		if err := p.terms[i].right.qualify(resolve); err != nil {
			return err
		}
	}
	return nil
}

// QualifyExprs applies the same rewriting to a projection list.
func QualifyExprs(exprs []*Expression, schemas map[string]*record.Schema, order []string) error {
	resolve := columnOwner(schemas, order)
	for _, e := range exprs {
		if err := e.qualify(resolve); err != nil {
			return err
		}
	}
	return nil
}

// columnOwner returns a resolver mapping an unqualified column name to the
// single alias whose schema declares it.
func columnOwner(schemas map[string]*record.Schema, order []string) func(string) (string, error) {
	return func(column string) (string, error) {
		owner := ""
		for _, alias := range order {
			if schemas[alias].HasField(column) {
				if owner != "" {
					return "", fmt.Errorf("column %s: %w", column, ErrAmbiguousColumn)
				}
				owner = alias
			}
		}
		if owner == "" {
			return "", fmt.Errorf("column %s: %w", column, ErrUnknownColumn)
		}
		return owner, nil
	}
}

// CheckTypes validates every term of the predicate against the referenced
// schemas: columns must exist, arithmetic operands must be numeric, and the
// two sides of a comparison must be mutually comparable (numeric/boolean
// cross-casts are permitted, strings only compare with strings). Returns
// record.ErrTypeMismatch or ErrUnknownColumn wrapped with context.
// The predicate must already be qualified.
func CheckTypes(p *Predicate, schemas map[string]*record.Schema) error {
	if p.IsEmpty() {
		return nil
	}
	for i := range p.terms {
		t := &p.terms[i]
		lt, err := exprType(&t.left, schemas)
		if err != nil {
			return fmt.Errorf("in %q: %w", t.String(), err)
		}
		rt, err := exprType(&t.right, schemas)
		if err != nil {
			return fmt.Errorf("in %q: %w", t.String(), err)
		}
		if lt.Numeric() != rt.Numeric() {
			return fmt.Errorf("cannot compare %s with %s in %q: %w", lt, rt, t.String(), record.ErrTypeMismatch)
		}
	}
	return nil
}

func exprType(e *Expression, schemas map[string]*record.Schema) (record.FieldType, error) {
	switch {
	case e.IsValue():
		return e.AsValue().Kind(), nil
	case e.IsColumn():
		c := e.AsColumn()
		sch, ok := schemas[c.Table]
		if !ok {
			return 0, fmt.Errorf("%s: %w", c, ErrUnknownColumn)
		}
		ft, ok := sch.Type(c.Column)
		if !ok {
			return 0, fmt.Errorf("%s: %w", c, ErrUnknownColumn)
		}
		return ft, nil
	}
	lt, err := exprType(e.left, schemas)
	if err != nil {
		return 0, err
	}
	rt, err := exprType(e.right, schemas)
	if err != nil {
		return 0, err
	}
	if !lt.Numeric() || !rt.Numeric() {
		return 0, fmt.Errorf("arithmetic on non-numeric operand: %w", record.ErrTypeMismatch)
	}
	if lt == record.IntType && rt == record.IntType && e.op != Div {
		return record.IntType, nil
	}
	return record.FloatType, nil
}
