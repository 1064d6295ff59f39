// Package planner turns a logical query into a physical plan tree. Three
// enumeration strategies share one cost model: a naive declaration-order
// planner, a greedy baseline, and a bottom-up dynamic-programming search
// over join orders. Optimization is pure: it reads a statistics snapshot
// and the session settings, owns its own scratch, and takes no locks.
package planner

import (
	"errors"
	"fmt"
	"log"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/finchdb/finchdb/internal/cost"
	"github.com/finchdb/finchdb/internal/plan"
	"github.com/finchdb/finchdb/internal/query"
	"github.com/finchdb/finchdb/internal/record"
	"github.com/finchdb/finchdb/internal/stats"
	"github.com/finchdb/finchdb/internal/storage"
)

// ErrNoPlanFound is returned for degenerate queries only: no tables, or a
// table for which no access path can be produced.
var ErrNoPlanFound = errors.New("no plan found")

// Select picks a physical plan for the query under the session's mode and
// toggles. Same query, snapshot and session always yield the identical plan.
func Select(q *Query, sess *Session, eng *storage.Engine, snap *stats.Snapshot) (*plan.Node, error) {
	if len(q.Tables) == 0 {
		return nil, fmt.Errorf("%w: query references no tables", ErrNoPlanFound)
	}

	schemas := make(map[string]*record.Schema, len(q.Tables))
	order := make([]string, 0, len(q.Tables))
	for _, ref := range q.Tables {
		tbl, ok := eng.Table(ref.Table)
		if !ok {
			return nil, fmt.Errorf("%w: unknown table %s", ErrNoPlanFound, ref.Table)
		}
		if _, dup := schemas[ref.Alias]; dup {
			return nil, fmt.Errorf("%w: duplicate alias %s", ErrNoPlanFound, ref.Alias)
		}
		schemas[ref.Alias] = tbl.Schema()
		order = append(order, ref.Alias)
	}
	if !q.Pred.IsEmpty() {
		if err := query.Qualify(q.Pred, schemas, order); err != nil {
			return nil, err
		}
		if err := query.CheckTypes(q.Pred, schemas); err != nil {
			return nil, err
		}
	}

	aliases := make(map[string]string, len(q.Tables))
	for _, ref := range q.Tables {
		aliases[ref.Alias] = ref.Table
	}
	pc := &planContext{
		q:     q,
		sess:  sess,
		eng:   eng,
		model: cost.NewModel(snap, aliases),
	}

	var root *plan.Node
	switch sess.Mode {
	case Naive:
		root = pc.naive()
	case Baseline:
		root = pc.baseline()
	default:
		root = pc.costBased()
	}
	if sess.Debug {
		log.Printf("[PLANNER] mode=%s cost=%d rows=%d\n%s",
			sess.Mode, root.Cost, root.Rows, root.Explain())
	}
	return root, nil
}

// planContext is the per-call scratch shared by the three enumerators.
type planContext struct {
	q     *Query
	sess  *Session
	eng   *storage.Engine
	model *cost.Model
}

func (pc *planContext) localPred(alias string) *query.Predicate {
	return pc.q.Pred.SelectSubPred(mapset.NewThreadUnsafeSet(alias))
}

func aliasSetOf(n *plan.Node) mapset.Set[string] {
	return mapset.NewThreadUnsafeSet(n.Aliases()...)
}

// buildJoin assembles and costs one join node over two costed inputs. The
// node carries the equi-join pairs connecting the sides and the residual
// spanning predicate as a filter.
func (pc *planContext) buildJoin(kind plan.Kind, left, right *plan.Node) *plan.Node {
	pairs, residual := query.EquiJoinPairs(pc.q.Pred, aliasSetOf(left), aliasSetOf(right))
	n := &plan.Node{
		Kind:      kind,
		Left:      left,
		Right:     right,
		JoinPairs: pairs,
		Filter:    residual,
	}
	if kind == plan.MergeJoin && len(pairs) > 0 {
		n.SortLeft = !left.SortedOn(pairs[0].First)
		n.SortRight = !right.SortedOn(pairs[0].Second)
	}
	pc.model.CostJoin(n)
	return n
}
