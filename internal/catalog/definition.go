package catalog

import (
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/condition"
	"github.com/zclconf/go-cty/cty"
)

// Definition describes one requirement. Which fields apply depends on Kind.
type Definition struct {
	Key         string
	Kind        Kind
	Description string
	// Origin is where the definition was loaded from, e.g. "logic.hcl:12,1-20".
	Origin string

	// MetAt overrides the Met threshold. None keeps the node default.
	MetAt access.Level
	// Level is what a satisfied item, setting, sequence_break or condition
	// definition reports, and the constant of a static one.
	Level access.Level

	// Signal names the source signal of item, setting, sequence_break and
	// location definitions, and the boss slot of a boss definition.
	Signal string
	// Min is the item count threshold.
	Min int
	// Equals is the value a setting must hold. Null means true.
	Equals cty.Value

	// Requires lists the children of all_of and any_of definitions in
	// evaluation order.
	Requires []string
	// Defeat maps a boss name to the requirement that defeats it.
	Defeat map[string]string

	When  *condition.Expression
	Tiers []Tier
}

// Tier is one branch of a graded definition.
type Tier struct {
	Level access.Level
	When  *condition.Expression
}

// SettingValue returns the value a setting definition compares against.
func (d *Definition) SettingValue() cty.Value {
	if d.Equals.IsNull() {
		return cty.True
	}
	return d.Equals
}

// Dependencies returns the keys this definition refers to. Composites keep
// their evaluation order; boss definitions are sorted by boss name.
func (d *Definition) Dependencies() []string {
	switch d.Kind {
	case KindAllOf, KindAnyOf:
		out := make([]string, len(d.Requires))
		copy(out, d.Requires)
		return out
	case KindBoss:
		bosses := d.Bosses()
		out := make([]string, 0, len(bosses))
		for _, b := range bosses {
			out = append(out, d.Defeat[b])
		}
		return out
	default:
		return nil
	}
}

// Bosses returns the mapped boss names in sorted order.
func (d *Definition) Bosses() []string {
	names := make([]string, 0, len(d.Defeat))
	for b := range d.Defeat {
		names = append(names, b)
	}
	sort.Strings(names)
	return names
}

// Validate checks the fields that apply to the definition's kind. It does
// not resolve references; see Catalog.Validate.
func (d *Definition) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if d.Key == "" {
		fail("key is required")
	}
	if d.MetAt != access.None && !d.MetAt.Valid() {
		fail("invalid met_at level %s", d.MetAt)
	}

	needSignal := func(field string) {
		if d.Signal == "" {
			fail("'%s' is required", field)
		}
	}
	needLevelAboveNone := func() {
		if !d.Level.Valid() || d.Level == access.None {
			fail("level must be above none, got %s", d.Level)
		}
	}

	switch d.Kind {
	case KindItem:
		needSignal("item")
		needLevelAboveNone()
		if d.Min < 1 {
			fail("min must be at least 1, got %d", d.Min)
		}
	case KindSetting:
		needSignal("setting")
		needLevelAboveNone()
	case KindSequenceBreak:
		needSignal("toggle")
		needLevelAboveNone()
	case KindLocation:
		needSignal("location")
	case KindBoss:
		needSignal("slot")
		if len(d.Defeat) == 0 {
			fail("'defeat' must map at least one boss")
		}
		for boss, key := range d.Defeat {
			if boss == "" {
				fail("'defeat' has an empty boss name")
			}
			if key == "" {
				fail("'defeat' entry for boss '%s' has no requirement", boss)
			}
		}
	case KindStatic:
		if !d.Level.Valid() {
			fail("invalid level %s", d.Level)
		}
	case KindAllOf, KindAnyOf:
		if len(d.Requires) == 0 {
			fail("'requires' must list at least one requirement")
		}
		for i, r := range d.Requires {
			if r == "" {
				fail("'requires' entry %d is empty", i)
			}
		}
	case KindCondition:
		needLevelAboveNone()
		if d.When == nil {
			fail("'when' is required")
		}
	case KindGraded:
		if len(d.Tiers) == 0 {
			fail("at least one tier is required")
		}
		for i, t := range d.Tiers {
			if !t.Level.Valid() || t.Level == access.None {
				fail("tier %d: level must be above none, got %s", i, t.Level)
			}
			if t.When == nil {
				fail("tier %d: 'when' is required", i)
			}
		}
	default:
		fail("invalid kind %s", d.Kind)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("requirement '%s' (%s): %w", d.Key, d.Kind, errors.Join(errs...))
}
