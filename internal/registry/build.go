package registry

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/catalog"
	"github.com/specialistvlad/reqgraph/internal/condition"
	"github.com/specialistvlad/reqgraph/internal/requirement"
	"github.com/specialistvlad/reqgraph/internal/signal"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// build constructs the node for one definition. Dependencies are resolved
// through Resolve so they are shared and memoized.
func (r *Registry) build(def *catalog.Definition) (n *requirement.Node, err error) {
	// A switch whose slot already holds an unmapped boss panics during its
	// initial evaluation; report that as a construction error.
	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok && errors.Is(e, ErrNotHandled) {
				n, err = nil, e
				return
			}
			panic(rec)
		}
	}()

	opts := r.nodeOptions(def)
	switch def.Kind {
	case catalog.KindItem:
		return r.buildItem(def, opts)
	case catalog.KindSetting:
		return r.buildSetting(def, opts)
	case catalog.KindSequenceBreak:
		return r.buildSequenceBreak(def, opts)
	case catalog.KindLocation:
		return r.buildLocation(def, opts)
	case catalog.KindBoss:
		return r.buildBoss(def, opts)
	case catalog.KindStatic:
		return requirement.NewStatic(def.Key, def.Level, opts...)
	case catalog.KindAllOf:
		children, err := r.resolveAll(def.Requires)
		if err != nil {
			return nil, err
		}
		return requirement.NewAllOf(def.Key, children, opts...)
	case catalog.KindAnyOf:
		children, err := r.resolveAll(def.Requires)
		if err != nil {
			return nil, err
		}
		return requirement.NewAnyOf(def.Key, children, opts...)
	case catalog.KindCondition:
		return r.buildCondition(def, opts)
	case catalog.KindGraded:
		return r.buildGraded(def, opts)
	default:
		return nil, fmt.Errorf("kind %s %w", def.Kind, ErrNotHandled)
	}
}

func (r *Registry) nodeOptions(def *catalog.Definition) []requirement.Option {
	opts := []requirement.Option{
		requirement.WithDescription(def.Description),
		requirement.WithHooks(r.hooks),
	}
	if def.MetAt != access.None {
		opts = append(opts, requirement.WithMetThreshold(def.MetAt))
	}
	return opts
}

func (r *Registry) resolveAll(keys []string) ([]*requirement.Node, error) {
	out := make([]*requirement.Node, 0, len(keys))
	for _, k := range keys {
		n, err := r.Resolve(k)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func missing(kind, name string) error {
	return fmt.Errorf("%s '%s': %w", kind, name, ErrMissingSource)
}

func (r *Registry) buildItem(def *catalog.Definition, opts []requirement.Option) (*requirement.Node, error) {
	if r.sources.Items == nil {
		return nil, missing("item", def.Signal)
	}
	item := r.sources.Items.Item(def.Signal)
	if item == nil {
		return nil, missing("item", def.Signal)
	}
	threshold := def.Min
	return requirement.NewThreshold(def.Key, def.Level, func() bool {
		return item.Count() >= threshold
	}, []signal.Notifier{item}, opts...)
}

func (r *Registry) buildSetting(def *catalog.Definition, opts []requirement.Option) (*requirement.Node, error) {
	if r.sources.Settings == nil {
		return nil, missing("setting", def.Signal)
	}
	setting := r.sources.Settings.Setting(def.Signal)
	if setting == nil {
		return nil, missing("setting", def.Signal)
	}
	want := def.SettingValue()
	return requirement.NewThreshold(def.Key, def.Level, func() bool {
		return valueEquals(setting.Value(), want)
	}, []signal.Notifier{setting}, opts...)
}

// valueEquals compares a setting's current value with the wanted one,
// converting the current value to the wanted type first so that "3" and 3
// compare equal.
func valueEquals(got, want cty.Value) bool {
	if got.IsNull() || !got.IsWhollyKnown() {
		return false
	}
	if !got.Type().Equals(want.Type()) {
		converted, err := convert.Convert(got, want.Type())
		if err != nil {
			return false
		}
		got = converted
	}
	eq := got.Equals(want)
	return eq.IsKnown() && eq.True()
}

func (r *Registry) buildSequenceBreak(def *catalog.Definition, opts []requirement.Option) (*requirement.Node, error) {
	if r.sources.SequenceBreaks == nil {
		return nil, missing("sequence break", def.Signal)
	}
	sb := r.sources.SequenceBreaks.SequenceBreak(def.Signal)
	if sb == nil {
		return nil, missing("sequence break", def.Signal)
	}
	return requirement.NewThreshold(def.Key, def.Level, sb.Enabled, []signal.Notifier{sb}, opts...)
}

func (r *Registry) buildLocation(def *catalog.Definition, opts []requirement.Option) (*requirement.Node, error) {
	if r.sources.Locations == nil {
		return nil, missing("location", def.Signal)
	}
	loc := r.sources.Locations.Location(def.Signal)
	if loc == nil {
		return nil, missing("location", def.Signal)
	}
	return requirement.NewGraded(def.Key, loc.Accessibility, []signal.Notifier{loc}, opts...)
}

func (r *Registry) buildBoss(def *catalog.Definition, opts []requirement.Option) (*requirement.Node, error) {
	if r.sources.Bosses == nil {
		return nil, missing("boss slot", def.Signal)
	}
	slot := r.sources.Bosses.BossSlot(def.Signal)
	if slot == nil {
		return nil, missing("boss slot", def.Signal)
	}
	cases := make([]requirement.Case, 0, len(def.Defeat))
	for _, boss := range def.Bosses() {
		child, err := r.Resolve(def.Defeat[boss])
		if err != nil {
			return nil, err
		}
		cases = append(cases, requirement.Case{Name: boss, Node: child})
	}
	return requirement.NewSwitch(def.Key, slot.Boss, slot, cases, opts...)
}

func (r *Registry) buildCondition(def *catalog.Definition, opts []requirement.Option) (*requirement.Node, error) {
	if def.When == nil {
		return nil, fmt.Errorf("condition: %w", ErrMissingSource)
	}
	bound, err := def.When.Bind(r.sources)
	if err != nil {
		return nil, err
	}
	return requirement.NewThreshold(def.Key, def.Level, bound.MustBool, bound.Notifiers(), opts...)
}

func (r *Registry) buildGraded(def *catalog.Definition, opts []requirement.Option) (*requirement.Node, error) {
	type tier struct {
		level access.Level
		when  *condition.Bound
	}
	tiers := make([]tier, 0, len(def.Tiers))
	var notifiers []signal.Notifier
	seen := make(map[signal.Notifier]bool)

	for i, t := range def.Tiers {
		if t.When == nil {
			return nil, fmt.Errorf("tier %d: condition: %w", i, ErrMissingSource)
		}
		bound, err := t.When.Bind(r.sources)
		if err != nil {
			return nil, fmt.Errorf("tier %d: %w", i, err)
		}
		tiers = append(tiers, tier{level: t.Level, when: bound})
		// A signal shared by several tiers is subscribed once.
		for _, n := range bound.Notifiers() {
			if !seen[n] {
				seen[n] = true
				notifiers = append(notifiers, n)
			}
		}
	}

	return requirement.NewGraded(def.Key, func() access.Level {
		for _, t := range tiers {
			if t.when.MustBool() {
				return t.level
			}
		}
		return access.None
	}, notifiers, opts...)
}
