// Package ctyconv converts between native Go values and cty values.
package ctyconv

import (
	"encoding/json"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// ToCtyValue converts a native Go value into its corresponding cty.Value.
// Values whose type cannot be implied from Go reflection, such as the
// []any and map[string]any produced by YAML decoders, go through JSON.
func ToCtyValue(v any) (cty.Value, error) {
	if v == nil {
		return cty.NilVal, nil
	}
	if cv, ok := v.(cty.Value); ok {
		return cv, nil
	}
	if ty, err := gocty.ImpliedType(v); err == nil {
		return gocty.ToCtyValue(v, ty)
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("unable to infer cty.Type: %w", err)
	}
	return ctyjson.Unmarshal(raw, ty)
}

// Decode converts val to the type implied by target and stores it there.
func Decode(val cty.Value, target any) error {
	ty, err := gocty.ImpliedType(target)
	if err != nil {
		return gocty.FromCtyValue(val, target)
	}
	converted, err := convert.Convert(val, ty)
	if err != nil {
		return fmt.Errorf("cannot convert %s to required type %s: %w", val.Type().FriendlyName(), ty.FriendlyName(), err)
	}
	return gocty.FromCtyValue(converted, target)
}

// Format renders val compactly for logs and reports.
func Format(val cty.Value) string {
	if val.IsNull() {
		return "null"
	}
	if !val.IsWhollyKnown() {
		return "(unknown)"
	}
	raw, err := ctyjson.Marshal(val, val.Type())
	if err != nil {
		return val.GoString()
	}
	return string(raw)
}
