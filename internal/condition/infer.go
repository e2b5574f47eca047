package condition

import (
	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// settingCandidates are tried in order by SettingType. String comes first
// because it converts to the fewest operand types.
var settingCandidates = []cty.Value{cty.StringVal(""), cty.Zero, cty.False}

// SettingType reports the primitive type the named setting must hold for the
// expression to evaluate. Every other signal is left unknown. It returns
// cty.NilType when the expression does not read the setting or when no
// candidate type fits.
func (e *Expression) SettingType(name string) cty.Type {
	target := Reference{Root: RootSetting, Name: name}
	reads := false
	for _, r := range e.references {
		if r == target {
			reads = true
			break
		}
	}
	if !reads {
		return cty.NilType
	}

	for _, zero := range settingCandidates {
		if e.accepts(target, zero) {
			return zero.Type()
		}
	}
	return cty.NilType
}

// accepts evaluates the expression with target fixed to v and reports
// whether the result could be a bool.
func (e *Expression) accepts(target Reference, v cty.Value) bool {
	byRoot := make(map[string]map[string]cty.Value)
	for _, r := range e.references {
		val := unknownFor(r.Root)
		if r == target {
			val = v
		}
		if byRoot[r.Root] == nil {
			byRoot[r.Root] = make(map[string]cty.Value)
		}
		byRoot[r.Root][r.Name] = val
	}

	vars := make(map[string]cty.Value, len(byRoot))
	for root, m := range byRoot {
		vars[root] = cty.ObjectVal(m)
	}

	out, diags := e.expr.Value(&hcl.EvalContext{Variables: vars, Functions: functions})
	if diags.HasErrors() {
		return false
	}
	_, err := convert.Convert(out, cty.Bool)
	return err == nil
}

func unknownFor(root string) cty.Value {
	switch root {
	case RootItem:
		return cty.UnknownVal(cty.Number)
	case RootSequenceBreak:
		return cty.UnknownVal(cty.Bool)
	case RootLocation, RootBoss:
		return cty.UnknownVal(cty.String)
	default:
		return cty.DynamicVal
	}
}
