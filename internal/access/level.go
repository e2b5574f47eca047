// Package access defines the accessibility lattice: a small, totally ordered
// set of levels describing how reachable a game condition currently is.
package access

import (
	"fmt"
	"strings"
)

// Level is a single point in the accessibility lattice. The zero value is
// None, the lattice minimum.
type Level int

const (
	// None means the condition cannot be satisfied.
	None Level = iota
	// Inspect means the condition can be looked at but not acted on.
	Inspect
	// SequenceBreak means the condition is satisfiable only by a known glitch or trick.
	SequenceBreak
	// Partial means the condition is satisfiable in some but not all configurations.
	Partial
	// Normal means the condition is fully satisfiable. It is the lattice maximum.
	Normal
)

// Levels lists every level in ascending order.
var Levels = []Level{None, Inspect, SequenceBreak, Partial, Normal}

func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case Inspect:
		return "inspect"
	case SequenceBreak:
		return "sequence_break"
	case Partial:
		return "partial"
	case Normal:
		return "normal"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// Valid reports whether l is one of the five defined levels.
func (l Level) Valid() bool {
	return l >= None && l <= Normal
}

// Met reports whether l is above None.
func (l Level) Met() bool {
	return l > None
}

// ParseLevel converts a level name (as produced by String) back to a Level.
// Matching is case-insensitive and accepts "-" in place of "_".
func ParseLevel(s string) (Level, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, l := range Levels {
		if l.String() == name {
			return l, nil
		}
	}
	return None, fmt.Errorf("unknown accessibility level %q", s)
}

// Compare returns -1, 0 or +1 depending on whether a is below, equal to or
// above b.
func Compare(a, b Level) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Min is the conjunction operator of the lattice.
func Min(a, b Level) Level {
	if a < b {
		return a
	}
	return b
}

// Max is the disjunction operator of the lattice.
func Max(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}
