package exec

import (
	"errors"
	"fmt"

	"github.com/finchdb/finchdb/internal/plan"
	"github.com/finchdb/finchdb/internal/storage"
)

var ErrBadPlan = errors.New("plan cannot be executed")

// Build compiles a physical plan tree into an operator tree over the engine.
// The tree must come from the planner: every table and index it names must
// exist.
func Build(n *plan.Node, eng *storage.Engine) (Operator, error) {
	switch n.Kind {
	case plan.FullScan:
		tbl, ok := eng.Table(n.Table)
		if !ok {
			return nil, fmt.Errorf("%w: no table %s", ErrBadPlan, n.Table)
		}
		return newFilter(newHeapScan(tbl, n.Alias), n.Filter), nil

	case plan.PrimaryIndexScan, plan.SecondaryIndexScan:
		if n.Probe {
			return nil, fmt.Errorf("%w: probe scan outside an index join", ErrBadPlan)
		}
		tbl, ix, err := tableIndex(eng, n)
		if err != nil {
			return nil, err
		}
		return newFilter(newIndexScan(tbl, ix, n.Alias, n.Sarg), n.Filter), nil

	case plan.IndexNLJoin:
		left, err := Build(n.Left, eng)
		if err != nil {
			return nil, err
		}
		if n.Right.Kind.IsJoin() || !n.Right.Probe {
			return nil, fmt.Errorf("%w: index join needs a probe leaf", ErrBadPlan)
		}
		if len(n.JoinPairs) == 0 {
			return nil, fmt.Errorf("%w: index join without a join key", ErrBadPlan)
		}
		tbl, ix, err := tableIndex(eng, n.Right)
		if err != nil {
			return nil, err
		}
		return newIndexNLJoin(left, tbl, ix, n.Right.Alias, n), nil

	case plan.MergeJoin, plan.HashJoin:
		if len(n.JoinPairs) == 0 {
			return nil, fmt.Errorf("%w: %s without an equality", ErrBadPlan, n.Kind)
		}
		left, right, err := buildChildren(n, eng)
		if err != nil {
			return nil, err
		}
		if n.Kind == plan.MergeJoin {
			return newMergeJoin(left, right, n), nil
		}
		return newHashJoin(left, right, n), nil

	case plan.BlockNLJoin:
		left, right, err := buildChildren(n, eng)
		if err != nil {
			return nil, err
		}
		return newBlockNLJoin(left, right, n), nil
	}
	return nil, fmt.Errorf("%w: unknown node kind %d", ErrBadPlan, n.Kind)
}

func buildChildren(n *plan.Node, eng *storage.Engine) (Operator, Operator, error) {
	left, err := Build(n.Left, eng)
	if err != nil {
		return nil, nil, err
	}
	right, err := Build(n.Right, eng)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func tableIndex(eng *storage.Engine, n *plan.Node) (*storage.Table, *storage.Index, error) {
	tbl, ok := eng.Table(n.Table)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no table %s", ErrBadPlan, n.Table)
	}
	ix, ok := tbl.Index(n.IndexColumn)
	if !ok {
		return nil, nil, fmt.Errorf("%w: no index on %s.%s", ErrBadPlan, n.Table, n.IndexColumn)
	}
	return tbl, ix, nil
}
