package testutil

import (
	"path/filepath"
	"testing"

	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/catalog"
	"github.com/specialistvlad/reqgraph/internal/hcl"
	"github.com/specialistvlad/reqgraph/internal/inmemorysignal"
	"github.com/specialistvlad/reqgraph/internal/registry"
	"github.com/specialistvlad/reqgraph/internal/requirement"
	"github.com/specialistvlad/reqgraph/internal/snapshot"
	"github.com/specialistvlad/reqgraph/internal/yamlcatalog"
	"github.com/stretchr/testify/require"
)

// StateFile is the name LoadGraph treats as the state snapshot rather than
// a catalog file.
const StateFile = "state.yaml"

// GraphResult holds everything a scenario test needs after loading a catalog.
type GraphResult struct {
	Catalog  *catalog.Catalog
	Store    *inmemorysignal.Store
	Registry *registry.Registry
	Logs     *SafeBuffer
}

// LoadGraph writes files to a temp dir and loads every .hcl and .yaml
// catalog file among them. StateFile, when present, seeds the store; every
// other signal the catalog reads is declared at its zero value. The
// returned registry has built nothing yet.
func LoadGraph(t *testing.T, files map[string]string, opts ...registry.Option) *GraphResult {
	t.Helper()

	laid := make(map[string]string, len(files))
	for name, content := range files {
		if name == StateFile {
			laid[name] = content
			continue
		}
		laid["catalog/"+name] = content
	}
	dir := WriteFiles(t, laid)
	ctx, logs := Context(t)

	cat := catalog.New()
	for _, l := range []catalog.Loader{hcl.NewLoader(), yamlcatalog.NewLoader()} {
		part, err := l.Load(ctx, filepath.Join(dir, "catalog"))
		require.NoError(t, err)
		require.NoError(t, cat.Merge(part))
	}

	store := inmemorysignal.New()
	if _, ok := files[StateFile]; ok {
		st, err := snapshot.Load(filepath.Join(dir, StateFile))
		require.NoError(t, err)
		require.NoError(t, st.Declare(store))
	}
	snapshot.DeclareDefaults(store, cat.Signals(), cat.SettingTypes())

	return &GraphResult{
		Catalog:  cat,
		Store:    store,
		Registry: registry.New(ctx, cat, store.Sources(), opts...),
		Logs:     logs,
	}
}

// Counter tallies hook calls per requirement key.
type Counter struct {
	Builds     map[string]int
	Recomputes map[string]int
	Changes    map[string]int
}

// NewCounter creates an empty counter.
func NewCounter() *Counter {
	return &Counter{
		Builds:     make(map[string]int),
		Recomputes: make(map[string]int),
		Changes:    make(map[string]int),
	}
}

// Hooks returns node hooks that record into c.
func (c *Counter) Hooks() *requirement.Hooks {
	return &requirement.Hooks{
		OnBuild:     func(n *requirement.Node) { c.Builds[n.Key()]++ },
		OnRecompute: func(n *requirement.Node) { c.Recomputes[n.Key()]++ },
		OnChange:    func(n *requirement.Node, _, _ access.Level) { c.Changes[n.Key()]++ },
	}
}

// Reset clears every tally.
func (c *Counter) Reset() {
	clear(c.Builds)
	clear(c.Recomputes)
	clear(c.Changes)
}
