package snapshot

import (
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/condition"
	"github.com/specialistvlad/reqgraph/internal/ctyconv"
	"github.com/specialistvlad/reqgraph/internal/inmemorysignal"
	"github.com/zclconf/go-cty/cty"
)

// Assignment is one parsed root.name=value change.
type Assignment struct {
	Target condition.Reference
	Value  cty.Value
}

func (a Assignment) String() string {
	return a.Target.String() + "=" + ctyconv.Format(a.Value)
}

// ParseAssignment parses "root.name=value". The value is evaluated as an
// HCL literal expression; anything that is not one, such as a bare word,
// is taken as a string.
func ParseAssignment(s string) (Assignment, error) {
	lhs, rhs, ok := strings.Cut(s, "=")
	if !ok {
		return Assignment{}, fmt.Errorf("assignment %q: expected root.name=value", s)
	}
	root, name, ok := strings.Cut(strings.TrimSpace(lhs), ".")
	if !ok || name == "" {
		return Assignment{}, fmt.Errorf("assignment %q: target must look like root.name", s)
	}
	switch root {
	case condition.RootItem, condition.RootSetting, condition.RootSequenceBreak, condition.RootLocation, condition.RootBoss:
	default:
		return Assignment{}, fmt.Errorf("assignment %q: unknown signal root '%s'", s, root)
	}

	return Assignment{
		Target: condition.Reference{Root: root, Name: name},
		Value:  literal(strings.TrimSpace(rhs)),
	}, nil
}

func literal(src string) cty.Value {
	expr, diags := hclsyntax.ParseExpression([]byte(src), "assignment", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.StringVal(src)
	}
	v, diags := expr.Value(nil)
	if diags.HasErrors() || !v.IsWhollyKnown() {
		return cty.StringVal(src)
	}
	return v
}

// Apply writes the assignment to store. The target must already be
// declared.
func (a Assignment) Apply(store *inmemorysignal.Store) error {
	name := a.Target.Name
	switch a.Target.Root {
	case condition.RootItem:
		var count int
		if err := ctyconv.Decode(a.Value, &count); err != nil {
			return fmt.Errorf("%s: %w", a.Target, err)
		}
		return store.SetCount(name, count)
	case condition.RootSetting:
		return store.SetSetting(name, a.Value)
	case condition.RootSequenceBreak:
		var on bool
		if err := ctyconv.Decode(a.Value, &on); err != nil {
			return fmt.Errorf("%s: %w", a.Target, err)
		}
		return store.SetSequenceBreak(name, on)
	case condition.RootLocation:
		var raw string
		if err := ctyconv.Decode(a.Value, &raw); err != nil {
			return fmt.Errorf("%s: %w", a.Target, err)
		}
		l, err := access.ParseLevel(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", a.Target, err)
		}
		return store.SetLocation(name, l)
	case condition.RootBoss:
		var boss string
		if err := ctyconv.Decode(a.Value, &boss); err != nil {
			return fmt.Errorf("%s: %w", a.Target, err)
		}
		return store.SetBoss(name, boss)
	default:
		return fmt.Errorf("%s: unknown signal root", a.Target)
	}
}
