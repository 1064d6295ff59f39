package query

import (
	"strings"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/finchdb/finchdb/internal/record"
)

// Predicate represents a conjunction of terms (ANDed together).
type Predicate struct {
	terms []Term
}

// NewPredicate creates a new Predicate from the given terms.
func NewPredicate(terms ...Term) *Predicate {
	return &Predicate{terms: append([]Term(nil), terms...)}
}

// ConjunctWith adds all terms from another predicate to this one (AND operation).
func (p *Predicate) ConjunctWith(other Predicate) {
	p.terms = append(p.terms, other.terms...)
}

// IsSatisfied checks if all terms in the predicate hold for the row exposed
// by resolve.
func (p *Predicate) IsSatisfied(resolve func(ColumnRef) (record.Value, error)) (bool, error) {
	if p.IsEmpty() {
		return true, nil
	}
	for i := range p.terms {
		ok, err := p.terms[i].IsSatisfied(resolve)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// SelectSubPred returns a new predicate containing only the terms fully
// scoped to the given table aliases. Returns nil if no terms apply.
func (p *Predicate) SelectSubPred(aliases mapset.Set[string]) *Predicate {
	if p.IsEmpty() {
		return nil
	}
	result := &Predicate{}
	for i := range p.terms {
		if p.terms[i].AppliesTo(aliases) {
			result.terms = append(result.terms, p.terms[i])
		}
	}
	if len(result.terms) == 0 {
		return nil
	}
	return result
}

// JoinSubPred returns a new predicate containing only the terms that span the
// two alias sets: they reference columns on both sides and nothing else.
// Returns nil if no such terms exist.
func (p *Predicate) JoinSubPred(left, right mapset.Set[string]) *Predicate {
	if p.IsEmpty() {
		return nil
	}
	both := left.Union(right)
	result := &Predicate{}
	for i := range p.terms {
		t := &p.terms[i]
		if !t.AppliesTo(left) && !t.AppliesTo(right) && t.AppliesTo(both) {
			result.terms = append(result.terms, *t)
		}
	}
	if len(result.terms) == 0 {
		return nil
	}
	return result
}

// Minus returns a new predicate without the given terms (matched by their
// string rendering). Returns nil if nothing remains.
func (p *Predicate) Minus(drop []Term) *Predicate {
	if p.IsEmpty() {
		return nil
	}
	dropped := mapset.NewThreadUnsafeSet[string]()
	for i := range drop {
		dropped.Add(drop[i].String())
	}
	result := &Predicate{}
	for i := range p.terms {
		if !dropped.Contains(p.terms[i].String()) {
			result.terms = append(result.terms, p.terms[i])
		}
	}
	if len(result.terms) == 0 {
		return nil
	}
	return result
}

// Aliases returns the set of table aliases referenced by the predicate.
func (p *Predicate) Aliases() mapset.Set[string] {
	aliases := mapset.NewThreadUnsafeSet[string]()
	if p.IsEmpty() {
		return aliases
	}
	for i := range p.terms {
		for _, c := range p.terms[i].Columns() {
			aliases.Add(c.Table)
		}
	}
	return aliases
}

// Terms returns a copy of the terms slice.
func (p *Predicate) Terms() []Term {
	if p.IsEmpty() {
		return nil
	}
	result := make([]Term, len(p.terms))
	copy(result, p.terms)
	return result
}

// IsEmpty returns true if the predicate has no terms.
func (p *Predicate) IsEmpty() bool {
	return p == nil || len(p.terms) == 0
}

// String returns a string representation of the predicate.
func (p *Predicate) String() string {
	if p == nil || len(p.terms) == 0 {
		return ""
	}
	parts := make([]string, 0, len(p.terms))
	for i := range p.terms {
		parts = append(parts, p.terms[i].String())
	}
	return strings.Join(parts, " AND ")
}
