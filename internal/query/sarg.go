package query

import (
	"fmt"

	"github.com/finchdb/finchdb/internal/record"
)

// Range is a single search argument over one column: a contiguous key range
// with optional open bounds. A point lookup is a closed range with Lo == Hi.
type Range struct {
	Lo     *record.Value
	Hi     *record.Value
	LoExcl bool
	HiExcl bool
}

// PointRange builds a point-lookup range for a single key value.
func PointRange(v record.Value) *Range {
	lo, hi := v, v
	return &Range{Lo: &lo, Hi: &hi}
}

// IsPoint reports whether the range matches exactly one key value.
func (r *Range) IsPoint() bool {
	return r.Lo != nil && r.Hi != nil && !r.LoExcl && !r.HiExcl && r.Lo.Equals(*r.Hi)
}

// Contains checks whether a key value falls within the range.
func (r *Range) Contains(v record.Value) (bool, error) {
	if r.Lo != nil {
		cmp, err := v.Compare(*r.Lo)
		if err != nil {
			return false, err
		}
		if cmp < 0 || (cmp == 0 && r.LoExcl) {
			return false, nil
		}
	}
	if r.Hi != nil {
		cmp, err := v.Compare(*r.Hi)
		if err != nil {
			return false, err
		}
		if cmp > 0 || (cmp == 0 && r.HiExcl) {
			return false, nil
		}
	}
	return true, nil
}

// String renders the range in interval notation.
func (r *Range) String() string {
	lb, rb := "[", "]"
	if r.LoExcl {
		lb = "("
	}
	if r.HiExcl {
		rb = ")"
	}
	lo, hi := "-inf", "+inf"
	if r.Lo != nil {
		lo = r.Lo.String()
	}
	if r.Hi != nil {
		hi = r.Hi.String()
	}
	return fmt.Sprintf("%s%s, %s%s", lb, lo, hi, rb)
}

// ExtractRange folds every conjunct of p that bounds alias.column with a
// constant into a single range: "3 < a AND a <= 8" becomes (3, 8]. An
// equality bound wins over any accumulated range bounds; for duplicate
// lower (or upper) bounds the first one seen is kept. Returns the range,
// the predicate remainder (nil if fully covered), and whether any conjunct
// was covered at all.
func ExtractRange(p *Predicate, alias, column string) (*Range, *Predicate, bool) {
	if p.IsEmpty() {
		return nil, p, false
	}
	var rng Range
	var covered []Term
	sawEquality := false
	for _, t := range p.Terms() {
		col, op, val, ok := t.ColumnBound()
		if !ok || col.Table != alias || col.Column != column {
			continue
		}
		switch op {
		case EQ:
			// equality is always better; discard whatever range we had
			v := val
			rng = Range{Lo: &v, Hi: &v}
			covered = []Term{t}
			sawEquality = true
		case GT, GE:
			if sawEquality || rng.Lo != nil {
				continue
			}
			v := val
			rng.Lo = &v
			rng.LoExcl = op == GT
			covered = append(covered, t)
		case LT, LE:
			if sawEquality || rng.Hi != nil {
				continue
			}
			v := val
			rng.Hi = &v
			rng.HiExcl = op == LT
			covered = append(covered, t)
		default:
			// <> cannot map to a single range
		}
	}
	if len(covered) == 0 {
		return nil, p, false
	}
	return &rng, p.Minus(covered), true
}
