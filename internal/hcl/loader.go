package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/specialistvlad/reqgraph/internal/catalog"
	"github.com/specialistvlad/reqgraph/internal/ctxlog"
	"github.com/specialistvlad/reqgraph/internal/fsutil"
)

// Extension is the file extension the loader picks up from directories.
const Extension = ".hcl"

// Loader is the HCL-specific implementation of the catalog.Loader interface.
type Loader struct{}

// NewLoader creates a new HCL catalog loader.
func NewLoader() *Loader {
	return &Loader{}
}

var _ catalog.Loader = (*Loader)(nil)

// Load parses every .hcl file under paths and translates all blocks into a
// single catalog. It does not validate references; callers run
// Catalog.Validate once every source has been merged.
func (l *Loader) Load(ctx context.Context, paths ...string) (*catalog.Catalog, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL catalog loader started.", "path_count", len(paths))

	files, err := fsutil.CollectFiles(paths, Extension)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(files))

	parser := hclparse.NewParser()
	cat := catalog.New()

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		defs, err := translateFile(&root, file, hclFile.Bytes)
		if err != nil {
			return nil, err
		}
		for _, d := range defs {
			if err := cat.Add(d); err != nil {
				return nil, err
			}
		}
		logger.Debug("Loaded HCL catalog file.", "file", file, "requirements", len(defs))
	}

	logger.Debug("HCL loading complete.", "requirements", cat.Len())
	return cat, nil
}

// LoadBytes translates a single in-memory HCL document. filename only labels
// diagnostics.
func (l *Loader) LoadBytes(src []byte, filename string) (*catalog.Catalog, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}
	var root fileRoot
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}
	defs, err := translateFile(&root, filename, hclFile.Bytes)
	if err != nil {
		return nil, err
	}
	cat := catalog.New()
	for _, d := range defs {
		if err := cat.Add(d); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

// isExprDefined reports whether an optional expression attribute was present
// in the source. Omitted attributes decode to zero-width placeholders.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}
