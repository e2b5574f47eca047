package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/catalog"
	"github.com/specialistvlad/reqgraph/internal/condition"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// refRoot is the traversal root used to reference another requirement.
const refRoot = "req"

// translator carries per-file context while converting HCL blocks into
// catalog definitions.
type translator struct {
	file string
	src  []byte
	defs []catalog.Definition
	errs hcl.Diagnostics
}

func translateFile(root *fileRoot, file string, src []byte) ([]catalog.Definition, error) {
	t := &translator{file: file, src: src}

	for _, b := range root.Items {
		d := t.base(b.Key, catalog.KindItem, b.Description, b.MetAt)
		d.Signal = b.Item
		d.Min = 1
		if b.Min != nil {
			d.Min = *b.Min
		}
		d.Level = t.level(b.Key, "level", b.Level, catalog.DefaultLevel(catalog.KindItem))
		t.add(d)
	}
	for _, b := range root.Settings {
		d := t.base(b.Key, catalog.KindSetting, b.Description, b.MetAt)
		d.Signal = b.Setting
		if b.Equals != nil {
			d.Equals = *b.Equals
		}
		d.Level = t.level(b.Key, "level", b.Level, catalog.DefaultLevel(catalog.KindSetting))
		t.add(d)
	}
	for _, b := range root.SequenceBreaks {
		d := t.base(b.Key, catalog.KindSequenceBreak, b.Description, b.MetAt)
		d.Signal = b.Toggle
		d.Level = t.level(b.Key, "level", b.Level, catalog.DefaultLevel(catalog.KindSequenceBreak))
		t.add(d)
	}
	for _, b := range root.Locations {
		d := t.base(b.Key, catalog.KindLocation, b.Description, b.MetAt)
		d.Signal = b.Location
		t.add(d)
	}
	for _, b := range root.Bosses {
		d := t.base(b.Key, catalog.KindBoss, b.Description, b.MetAt)
		d.Signal = b.Slot
		d.Defeat = t.defeatMap(b.Defeat)
		t.add(d)
	}
	for _, b := range root.Statics {
		d := t.base(b.Key, catalog.KindStatic, b.Description, b.MetAt)
		d.Level = t.level(b.Key, "level", b.Level, catalog.DefaultLevel(catalog.KindStatic))
		t.add(d)
	}
	for _, b := range root.AllOf {
		d := t.base(b.Key, catalog.KindAllOf, b.Description, b.MetAt)
		d.Requires = t.refList(b.Requires)
		t.add(d)
	}
	for _, b := range root.AnyOf {
		d := t.base(b.Key, catalog.KindAnyOf, b.Description, b.MetAt)
		d.Requires = t.refList(b.Requires)
		t.add(d)
	}
	for _, b := range root.Conditions {
		d := t.base(b.Key, catalog.KindCondition, b.Description, b.MetAt)
		d.When = t.condition(b.Key, b.When)
		d.Level = t.level(b.Key, "level", b.Level, catalog.DefaultLevel(catalog.KindCondition))
		t.add(d)
	}
	for _, b := range root.Graded {
		d := t.base(b.Key, catalog.KindGraded, b.Description, b.MetAt)
		for _, tier := range b.Tiers {
			label := tier.Level
			d.Tiers = append(d.Tiers, catalog.Tier{
				Level: t.level(b.Key, "tier", &label, access.None),
				When:  t.condition(b.Key, tier.When),
			})
		}
		t.add(d)
	}

	if t.errs.HasErrors() {
		return nil, fmt.Errorf("failed to translate HCL file %s: %w", file, t.errs)
	}
	return t.defs, nil
}

func (t *translator) base(key string, kind catalog.Kind, description string, metAt *string) catalog.Definition {
	d := catalog.Definition{
		Key:         key,
		Kind:        kind,
		Description: description,
		Origin:      fmt.Sprintf("%s (%s %q)", t.file, kind, key),
	}
	if metAt != nil {
		d.MetAt = t.level(key, "met_at", metAt, access.None)
	}
	return d
}

func (t *translator) add(d catalog.Definition) {
	t.defs = append(t.defs, d)
}

func (t *translator) fail(summary, detail string, subject *hcl.Range) {
	t.errs = append(t.errs, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  subject,
	})
}

// level parses an optional level name, falling back to def when absent.
func (t *translator) level(key, attr string, raw *string, def access.Level) access.Level {
	if raw == nil {
		return def
	}
	l, err := access.ParseLevel(*raw)
	if err != nil {
		t.fail("Invalid accessibility level", fmt.Sprintf("Requirement %q, attribute %q: %s.", key, attr, err), nil)
		return def
	}
	return l
}

// ref converts a `req.<key>` traversal into the referenced key.
func (t *translator) ref(expr hcl.Expression) (string, bool) {
	traversal, diags := hcl.AbsTraversalForExpr(expr)
	if diags.HasErrors() || len(traversal) != 2 || traversal.RootName() != refRoot {
		t.fail("Invalid requirement reference", "A requirement reference must look like req.<key>.", expr.Range().Ptr())
		return "", false
	}
	attr, ok := traversal[1].(hcl.TraverseAttr)
	if !ok {
		t.fail("Invalid requirement reference", "A requirement reference must look like req.<key>.", expr.Range().Ptr())
		return "", false
	}
	return attr.Name, true
}

func (t *translator) refList(expr hcl.Expression) []string {
	items, diags := hcl.ExprList(expr)
	if diags.HasErrors() {
		t.errs = append(t.errs, diags...)
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if key, ok := t.ref(item); ok {
			out = append(out, key)
		}
	}
	return out
}

func (t *translator) defeatMap(expr hcl.Expression) map[string]string {
	pairs, diags := hcl.ExprMap(expr)
	if diags.HasErrors() {
		t.errs = append(t.errs, diags...)
		return nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		kv, diags := pair.Key.Value(nil)
		if diags.HasErrors() {
			t.errs = append(t.errs, diags...)
			continue
		}
		kv, err := convert.Convert(kv, cty.String)
		if err != nil || kv.IsNull() {
			t.fail("Invalid boss name", "Boss names must be strings.", pair.Key.Range().Ptr())
			continue
		}
		boss := kv.AsString()
		if _, dup := out[boss]; dup {
			t.fail("Duplicate boss", fmt.Sprintf("Boss %q is mapped more than once.", boss), pair.Key.Range().Ptr())
			continue
		}
		if key, ok := t.ref(pair.Value); ok {
			out[boss] = key
		}
	}
	return out
}

func (t *translator) condition(key string, expr hcl.Expression) *condition.Expression {
	if !isExprDefined(expr) {
		return nil
	}
	c, err := condition.FromHCL(expr, t.src)
	if err != nil {
		t.fail("Invalid condition", fmt.Sprintf("Requirement %q: %s.", key, err), expr.Range().Ptr())
		return nil
	}
	return c
}
