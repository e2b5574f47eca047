package condition

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
)

// Signal roots an expression may refer to.
const (
	RootItem          = "item"
	RootSetting       = "setting"
	RootSequenceBreak = "sequence_break"
	RootLocation      = "location"
	RootBoss          = "boss"
)

var roots = map[string]bool{
	RootItem:          true,
	RootSetting:       true,
	RootSequenceBreak: true,
	RootLocation:      true,
	RootBoss:          true,
}

// Reference names one signal read by an expression.
type Reference struct {
	Root string
	Name string
}

func (r Reference) String() string {
	return r.Root + "." + r.Name
}

// Expression is a parsed, reference-checked condition. It is not yet tied to
// any signal source; see Bind.
type Expression struct {
	expr       hcl.Expression
	source     string
	references []Reference
}

// Parse parses src as an HCL expression. filename only labels diagnostics.
func Parse(src, filename string) (*Expression, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(src), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse condition: %w", diags)
	}
	return newExpression(expr, src)
}

// FromHCL wraps an expression that was already parsed, e.g. an attribute of
// a catalog block. file holds the bytes the expression was parsed from and
// is only used to recover its source text; it may be nil.
func FromHCL(expr hcl.Expression, file []byte) (*Expression, error) {
	if expr == nil {
		return nil, fmt.Errorf("condition expression is required")
	}
	r := expr.Range()
	src := r.String()
	if r.Start.Byte >= 0 && r.End.Byte <= len(file) && r.Start.Byte < r.End.Byte {
		src = string(file[r.Start.Byte:r.End.Byte])
	}
	return newExpression(expr, src)
}

func newExpression(expr hcl.Expression, src string) (*Expression, error) {
	refs, err := extractReferences(expr)
	if err != nil {
		return nil, err
	}
	return &Expression{expr: expr, source: src, references: refs}, nil
}

// Source returns the text the expression was parsed from, or its source
// range when it came from a parsed file.
func (e *Expression) Source() string { return e.source }

// References returns every signal the expression reads, sorted and unique.
func (e *Expression) References() []Reference {
	out := make([]Reference, len(e.references))
	copy(out, e.references)
	return out
}

// traversalKey generates a stable, canonical string for a traversal,
// suitable for diagnostics.
func traversalKey(t hcl.Traversal) string {
	return string(hclwrite.TokensForTraversal(t).Bytes())
}

// extractReferences walks the expression's variables and checks each one is
// a `<root>.<name>` traversal over a known root.
func extractReferences(expr hcl.Expression) ([]Reference, error) {
	seen := make(map[Reference]struct{})
	for _, t := range expr.Variables() {
		root := t.RootName()
		if !roots[root] {
			return nil, fmt.Errorf("unknown signal root '%s' in %s", root, traversalKey(t))
		}
		if len(t) < 2 {
			return nil, fmt.Errorf("reference '%s' must name a signal, e.g. %s.<name>", traversalKey(t), root)
		}
		attr, ok := t[1].(hcl.TraverseAttr)
		if !ok {
			return nil, fmt.Errorf("reference '%s' must use attribute syntax, e.g. %s.<name>", traversalKey(t), root)
		}
		seen[Reference{Root: root, Name: attr.Name}] = struct{}{}
	}

	refs := make([]Reference, 0, len(seen))
	for r := range seen {
		refs = append(refs, r)
	}
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Root != refs[j].Root {
			return refs[i].Root < refs[j].Root
		}
		return refs[i].Name < refs[j].Name
	})
	return refs, nil
}
