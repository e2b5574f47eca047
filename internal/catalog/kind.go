package catalog

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/reqgraph/internal/access"
)

// Kind is the closed set of requirement definitions a catalog can hold.
type Kind int

const (
	KindUnknown Kind = iota
	KindItem
	KindSetting
	KindSequenceBreak
	KindLocation
	KindBoss
	KindStatic
	KindAllOf
	KindAnyOf
	KindCondition
	KindGraded
)

// Kinds lists every valid kind in declaration order.
var Kinds = []Kind{
	KindItem, KindSetting, KindSequenceBreak, KindLocation, KindBoss,
	KindStatic, KindAllOf, KindAnyOf, KindCondition, KindGraded,
}

var kindNames = map[Kind]string{
	KindItem:          "item",
	KindSetting:       "setting",
	KindSequenceBreak: "sequence_break",
	KindLocation:      "location",
	KindBoss:          "boss",
	KindStatic:        "static",
	KindAllOf:         "all_of",
	KindAnyOf:         "any_of",
	KindCondition:     "condition",
	KindGraded:        "graded",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind returns the kind with the given name.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown requirement kind %q", s)
}

// Composite reports whether the kind folds over other requirements.
func (k Kind) Composite() bool {
	return k == KindAllOf || k == KindAnyOf
}

// DefaultLevel is the level a definition of this kind reports when it is
// satisfied and no explicit level was given.
func DefaultLevel(k Kind) access.Level {
	if k == KindSequenceBreak {
		return access.SequenceBreak
	}
	return access.Normal
}
