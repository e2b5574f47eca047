package condition

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/requirement"
	"github.com/specialistvlad/reqgraph/internal/signal"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// Bound is an expression resolved against concrete signals.
type Bound struct {
	expr *Expression

	items          map[string]signal.Item
	settings       map[string]signal.Setting
	sequenceBreaks map[string]signal.SequenceBreak
	locations      map[string]signal.Location
	bosses         map[string]signal.BossSlot

	notifiers []signal.Notifier
}

// Bind looks up every referenced signal in src and evaluates the expression
// once to surface type errors before any node depends on it. A reference
// that src cannot satisfy fails with requirement.ErrMissingCollaborator.
func (e *Expression) Bind(src signal.Sources) (*Bound, error) {
	b := &Bound{
		expr:           e,
		items:          make(map[string]signal.Item),
		settings:       make(map[string]signal.Setting),
		sequenceBreaks: make(map[string]signal.SequenceBreak),
		locations:      make(map[string]signal.Location),
		bosses:         make(map[string]signal.BossSlot),
	}

	for _, ref := range e.references {
		n, err := b.lookup(src, ref)
		if err != nil {
			return nil, err
		}
		b.notifiers = append(b.notifiers, n)
	}

	if _, err := b.Bool(); err != nil {
		return nil, fmt.Errorf("condition '%s': %w", e.source, err)
	}
	return b, nil
}

func (b *Bound) lookup(src signal.Sources, ref Reference) (signal.Notifier, error) {
	missing := fmt.Errorf("signal %s: %w", ref, requirement.ErrMissingCollaborator)
	switch ref.Root {
	case RootItem:
		if src.Items == nil {
			return nil, missing
		}
		if v := src.Items.Item(ref.Name); v != nil {
			b.items[ref.Name] = v
			return v, nil
		}
	case RootSetting:
		if src.Settings == nil {
			return nil, missing
		}
		if v := src.Settings.Setting(ref.Name); v != nil {
			b.settings[ref.Name] = v
			return v, nil
		}
	case RootSequenceBreak:
		if src.SequenceBreaks == nil {
			return nil, missing
		}
		if v := src.SequenceBreaks.SequenceBreak(ref.Name); v != nil {
			b.sequenceBreaks[ref.Name] = v
			return v, nil
		}
	case RootLocation:
		if src.Locations == nil {
			return nil, missing
		}
		if v := src.Locations.Location(ref.Name); v != nil {
			b.locations[ref.Name] = v
			return v, nil
		}
	case RootBoss:
		if src.Bosses == nil {
			return nil, missing
		}
		if v := src.Bosses.BossSlot(ref.Name); v != nil {
			b.bosses[ref.Name] = v
			return v, nil
		}
	}
	return nil, missing
}

// Notifiers returns the signals the expression reads, in reference order.
func (b *Bound) Notifiers() []signal.Notifier {
	out := make([]signal.Notifier, len(b.notifiers))
	copy(out, b.notifiers)
	return out
}

// Bool evaluates the expression against the current signal values.
func (b *Bound) Bool() (bool, error) {
	v, diags := b.expr.expr.Value(b.evalContext())
	if diags.HasErrors() {
		return false, fmt.Errorf("failed to evaluate condition: %w", diags)
	}
	v, err := convert.Convert(v, cty.Bool)
	if err != nil {
		return false, fmt.Errorf("condition must evaluate to a bool: %w", err)
	}
	if v.IsNull() || !v.IsKnown() {
		return false, fmt.Errorf("condition evaluated to null or unknown")
	}
	return v.True(), nil
}

// MustBool is Bool for callers that have already validated the expression
// with Bind. It panics on evaluation errors.
func (b *Bound) MustBool() bool {
	ok, err := b.Bool()
	if err != nil {
		panic(err)
	}
	return ok
}

func (b *Bound) evalContext() *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(roots))

	if len(b.items) > 0 {
		m := make(map[string]cty.Value, len(b.items))
		for name, it := range b.items {
			m[name] = cty.NumberIntVal(int64(it.Count()))
		}
		vars[RootItem] = cty.ObjectVal(m)
	}
	if len(b.settings) > 0 {
		m := make(map[string]cty.Value, len(b.settings))
		for name, st := range b.settings {
			m[name] = st.Value()
		}
		vars[RootSetting] = cty.ObjectVal(m)
	}
	if len(b.sequenceBreaks) > 0 {
		m := make(map[string]cty.Value, len(b.sequenceBreaks))
		for name, sb := range b.sequenceBreaks {
			m[name] = cty.BoolVal(sb.Enabled())
		}
		vars[RootSequenceBreak] = cty.ObjectVal(m)
	}
	if len(b.locations) > 0 {
		m := make(map[string]cty.Value, len(b.locations))
		for name, loc := range b.locations {
			m[name] = cty.StringVal(loc.Accessibility().String())
		}
		vars[RootLocation] = cty.ObjectVal(m)
	}
	if len(b.bosses) > 0 {
		m := make(map[string]cty.Value, len(b.bosses))
		for name, slot := range b.bosses {
			m[name] = cty.StringVal(slot.Boss())
		}
		vars[RootBoss] = cty.ObjectVal(m)
	}

	return &hcl.EvalContext{
		Variables: vars,
		Functions: functions,
	}
}

var functions = map[string]function.Function{
	"max":      stdlib.MaxFunc,
	"min":      stdlib.MinFunc,
	"length":   stdlib.LengthFunc,
	"contains": stdlib.ContainsFunc,
	"lower":    stdlib.LowerFunc,
	"at_least": atLeastFunc,
}

// atLeastFunc compares two level names on the accessibility order.
var atLeastFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "level", Type: cty.String},
		{Name: "minimum", Type: cty.String},
	},
	Type: function.StaticReturnType(cty.Bool),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		l, err := access.ParseLevel(args[0].AsString())
		if err != nil {
			return cty.NilVal, function.NewArgError(0, err)
		}
		m, err := access.ParseLevel(args[1].AsString())
		if err != nil {
			return cty.NilVal, function.NewArgError(1, err)
		}
		return cty.BoolVal(l >= m), nil
	},
})
