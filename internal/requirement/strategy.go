package requirement

import "fmt"

// Strategy selects how a node computes its level.
type Strategy int

const (
	// StrategyStatic reports a constant level.
	StrategyStatic Strategy = iota
	// StrategyThreshold maps a boolean condition to a fixed level or None.
	StrategyThreshold
	// StrategyGraded computes a level directly from its inputs.
	StrategyGraded
	// StrategyAllOf folds children with access.Min.
	StrategyAllOf
	// StrategyAnyOf folds children with access.Max.
	StrategyAnyOf
	// StrategySwitch reports the level of the child picked by a selector.
	StrategySwitch
)

func (s Strategy) String() string {
	switch s {
	case StrategyStatic:
		return "static"
	case StrategyThreshold:
		return "threshold"
	case StrategyGraded:
		return "graded"
	case StrategyAllOf:
		return "all_of"
	case StrategyAnyOf:
		return "any_of"
	case StrategySwitch:
		return "switch"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Composite reports whether nodes of this strategy fold over child nodes.
func (s Strategy) Composite() bool {
	return s == StrategyAllOf || s == StrategyAnyOf
}
