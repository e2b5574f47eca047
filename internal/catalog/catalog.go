package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/specialistvlad/reqgraph/internal/condition"
	"github.com/specialistvlad/reqgraph/internal/dag"
	"github.com/zclconf/go-cty/cty"
)

var (
	// ErrDuplicateKey is returned when a key is defined twice.
	ErrDuplicateKey = errors.New("duplicate requirement key")
	// ErrUnknownReference is returned when a definition refers to a key the
	// catalog does not define.
	ErrUnknownReference = errors.New("unknown requirement reference")
)

// Loader is the interface for a format-specific catalog loader.
type Loader interface {
	// Load reads every definition found under paths into a new catalog.
	Load(ctx context.Context, paths ...string) (*Catalog, error)
}

// Catalog is a set of requirement definitions keyed by requirement key.
// It is not safe for concurrent mutation.
type Catalog struct {
	defs map[string]*Definition
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{defs: make(map[string]*Definition)}
}

// Add stores a definition. A key can only be added once.
func (c *Catalog) Add(d Definition) error {
	if d.Key == "" {
		return fmt.Errorf("requirement key is required")
	}
	if prev, ok := c.defs[d.Key]; ok {
		return fmt.Errorf("%w: '%s' defined at %s and %s", ErrDuplicateKey, d.Key, originOrUnknown(prev.Origin), originOrUnknown(d.Origin))
	}
	c.defs[d.Key] = &d
	return nil
}

// MustAdd is Add for statically known definitions. It panics on error.
func (c *Catalog) MustAdd(d Definition) {
	if err := c.Add(d); err != nil {
		panic(err)
	}
}

// Merge adds every definition of other to c.
func (c *Catalog) Merge(other *Catalog) error {
	for _, k := range other.Keys() {
		if err := c.Add(*other.defs[k]); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the definition for key.
func (c *Catalog) Get(key string) (*Definition, bool) {
	d, ok := c.defs[key]
	return d, ok
}

// Keys returns every key in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.defs))
	for k := range c.defs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of definitions.
func (c *Catalog) Len() int {
	return len(c.defs)
}

// Validate checks every definition, every reference and the absence of
// dependency cycles. All definition problems are reported together; a cycle
// is only looked for once the references are sound.
func (c *Catalog) Validate() error {
	var errs []error
	for _, k := range c.Keys() {
		d := c.defs[k]
		if err := d.Validate(); err != nil {
			errs = append(errs, err)
		}
		for _, dep := range d.Dependencies() {
			if _, ok := c.defs[dep]; !ok && dep != "" {
				errs = append(errs, fmt.Errorf("requirement '%s': %w '%s'", k, ErrUnknownReference, dep))
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if _, err := c.BuildOrder(); err != nil {
		return err
	}
	return nil
}

// Graph returns the dependency graph: an edge a -> b means b depends on a.
// References to undefined keys and self references are skipped.
func (c *Catalog) Graph() *dag.Graph {
	g := dag.New()
	for k := range c.defs {
		g.AddNode(k)
	}
	for _, k := range c.Keys() {
		for _, dep := range c.defs[k].Dependencies() {
			if dep == k || !g.Has(dep) {
				continue
			}
			// Both nodes exist and differ, so AddEdge cannot fail.
			_ = g.AddEdge(dep, k)
		}
	}
	return g
}

// BuildOrder returns every key ordered so that each requirement comes after
// everything it depends on.
func (c *Catalog) BuildOrder() ([]string, error) {
	for _, k := range c.Keys() {
		for _, dep := range c.defs[k].Dependencies() {
			if dep == k {
				return nil, fmt.Errorf("requirement '%s' depends on itself: %w", k, &dag.CycleError{Path: []string{k, k}})
			}
		}
	}
	order, err := c.Graph().TopologicalSort()
	if err != nil {
		return nil, fmt.Errorf("error validating requirement graph: %w", err)
	}
	return order, nil
}

func originOrUnknown(o string) string {
	if o == "" {
		return "<unknown>"
	}
	return o
}

// Signals returns every external signal the catalog reads, sorted and
// unique. Boss definitions contribute their slot under the boss root.
func (c *Catalog) Signals() []condition.Reference {
	seen := make(map[condition.Reference]struct{})
	add := func(root, name string) {
		if name != "" {
			seen[condition.Reference{Root: root, Name: name}] = struct{}{}
		}
	}
	addExpr := func(e *condition.Expression) {
		if e == nil {
			return
		}
		for _, r := range e.References() {
			seen[r] = struct{}{}
		}
	}

	for _, d := range c.defs {
		switch d.Kind {
		case KindItem:
			add(condition.RootItem, d.Signal)
		case KindSetting:
			add(condition.RootSetting, d.Signal)
		case KindSequenceBreak:
			add(condition.RootSequenceBreak, d.Signal)
		case KindLocation:
			add(condition.RootLocation, d.Signal)
		case KindBoss:
			add(condition.RootBoss, d.Signal)
		case KindCondition:
			addExpr(d.When)
		case KindGraded:
			for _, t := range d.Tiers {
				addExpr(t.When)
			}
		}
	}

	out := make([]condition.Reference, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Root != out[j].Root {
			return out[i].Root < out[j].Root
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// SettingTypes maps settings to the type their value should have. A setting
// definition contributes the type of its equals value; otherwise the first
// condition, in key order, whose evaluation pins the setting to a type
// decides. Settings with no such evidence are absent.
func (c *Catalog) SettingTypes() map[string]cty.Type {
	out := make(map[string]cty.Type)
	keys := c.Keys()
	for _, k := range keys {
		if d := c.defs[k]; d.Kind == KindSetting && d.Signal != "" {
			if _, ok := out[d.Signal]; !ok {
				out[d.Signal] = d.SettingValue().Type()
			}
		}
	}

	for _, k := range keys {
		d := c.defs[k]
		var exprs []*condition.Expression
		switch d.Kind {
		case KindCondition:
			exprs = append(exprs, d.When)
		case KindGraded:
			for _, t := range d.Tiers {
				exprs = append(exprs, t.When)
			}
		}
		for _, e := range exprs {
			if e == nil {
				continue
			}
			for _, r := range e.References() {
				if r.Root != condition.RootSetting {
					continue
				}
				if _, ok := out[r.Name]; ok {
					continue
				}
				if ty := e.SettingType(r.Name); ty != cty.NilType {
					out[r.Name] = ty
				}
			}
		}
	}
	return out
}
