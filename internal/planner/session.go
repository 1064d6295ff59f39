package planner

import (
	"errors"
	"fmt"
	"strings"
)

var ErrBadDirective = errors.New("unknown planner directive value")

// Mode selects the join enumeration strategy.
type Mode int

const (
	// Naive builds a left-deep tree in table declaration order without
	// costing alternatives.
	Naive Mode = iota
	// Baseline is the greedy heuristic planner used as a quality floor.
	Baseline
	// CostBased runs the full dynamic-programming search.
	CostBased
)

func (m Mode) String() string {
	switch m {
	case Naive:
		return "NAIVE"
	case Baseline:
		return "BASELINE"
	default:
		return "COST"
	}
}

// ParseMode parses a SET PLANNER directive value.
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(s) {
	case "NAIVE":
		return Naive, nil
	case "BASELINE":
		return Baseline, nil
	case "COST", "COSTBASED", "COST_BASED", "EXAMPLE":
		return CostBased, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadDirective, s)
}

// Session carries the per-session planner settings. It is an explicit value
// threaded through every optimizer entry point; two sessions never share one.
type Session struct {
	Mode          Mode
	SortMergeJoin bool
	IndexJoin     bool
	HashJoin      bool
	Debug         bool
}

// NewSession returns the default settings: cost-based planning with every
// join algorithm enabled.
func NewSession() *Session {
	return &Session{
		Mode:          CostBased,
		SortMergeJoin: true,
		IndexJoin:     true,
		HashJoin:      true,
	}
}
