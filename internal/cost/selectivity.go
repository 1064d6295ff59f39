package cost

import (
	"github.com/finchdb/finchdb/internal/query"
)

// RangeSelectivity estimates the fraction of a table's rows whose column
// value falls within rng. A point range is an equality (1/distinct); an
// interval covers its fraction of the column's [min, max] domain; without
// usable statistics the default applies.
func (m *Model) RangeSelectivity(alias, column string, rng *query.Range) float64 {
	if rng == nil {
		return 1
	}
	if rng.IsPoint() {
		return 1 / float64(m.Distinct(alias, column))
	}

	ts := m.tableStats(alias)
	if ts == nil {
		return DefaultSelectivity
	}
	cs, ok := ts.Column(column)
	if !ok || !cs.HasRange {
		return DefaultSelectivity
	}
	min, okMin := cs.Min.AsNumeric()
	max, okMax := cs.Max.AsNumeric()
	if !okMin || !okMax || max <= min {
		return DefaultSelectivity
	}

	lo, hi := min, max
	if rng.Lo != nil {
		if v, ok := rng.Lo.AsNumeric(); ok && v > lo {
			lo = v
		}
	}
	if rng.Hi != nil {
		if v, ok := rng.Hi.AsNumeric(); ok && v < hi {
			hi = v
		}
	}
	if hi < lo {
		return 1 / float64(clamp(ts.RowCount))
	}
	frac := (hi - lo) / (max - min)
	if frac > 1 {
		frac = 1
	}
	if frac <= 0 {
		frac = 1 / float64(clamp(ts.RowCount))
	}
	return frac
}

// FilterSelectivity estimates the combined selectivity of a table-local
// predicate as the product of its terms' selectivities. Terms that bound a
// column with a constant use column statistics; column-to-column equalities
// use 1/max(distinct); anything else uses the default.
func (m *Model) FilterSelectivity(alias string, p *query.Predicate) float64 {
	if p.IsEmpty() {
		return 1
	}
	sel := 1.0
	for _, t := range p.Terms() {
		sel *= m.termSelectivity(alias, t)
	}
	return sel
}

func (m *Model) termSelectivity(alias string, t query.Term) float64 {
	if col, op, val, ok := t.ColumnBound(); ok {
		switch op {
		case query.EQ:
			return 1 / float64(m.Distinct(col.Table, col.Column))
		case query.NE:
			d := float64(m.Distinct(col.Table, col.Column))
			return (d - 1) / d
		case query.LT, query.LE:
			v := val
			return m.RangeSelectivity(col.Table, col.Column,
				&query.Range{Hi: &v, HiExcl: op == query.LT})
		case query.GT, query.GE:
			v := val
			return m.RangeSelectivity(col.Table, col.Column,
				&query.Range{Lo: &v, LoExcl: op == query.GT})
		}
	}
	if lc, rc, ok := t.EquatesColumns(); ok {
		d := m.Distinct(lc.Table, lc.Column)
		if rd := m.Distinct(rc.Table, rc.Column); rd > d {
			d = rd
		}
		return 1 / float64(d)
	}
	return DefaultSelectivity
}
