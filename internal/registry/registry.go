package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/specialistvlad/reqgraph/internal/catalog"
	"github.com/specialistvlad/reqgraph/internal/ctxlog"
	"github.com/specialistvlad/reqgraph/internal/requirement"
	"github.com/specialistvlad/reqgraph/internal/signal"
)

var (
	// ErrUnknownKey is returned when a key has no catalog definition.
	ErrUnknownKey = errors.New("unknown requirement key")
	// ErrCycle is returned when resolving a key re-enters a key that is
	// still under construction.
	ErrCycle = errors.New("requirement cycle")
	// ErrMissingSource is returned when a leaf's signal cannot be found.
	ErrMissingSource = requirement.ErrMissingCollaborator
	// ErrNotHandled is returned when a boss slot holds a boss the definition
	// does not map. After construction the same condition panics.
	ErrNotHandled = requirement.ErrNotHandled
)

// Option customizes a Registry.
type Option func(*Registry)

// WithHooks attaches lifecycle hooks to every node the registry builds.
func WithHooks(h *requirement.Hooks) Option {
	return func(r *Registry) {
		r.hooks = h
	}
}

// Registry is the memoized key -> node construction cache. It is not safe
// for concurrent use.
type Registry struct {
	logger  *slog.Logger
	catalog *catalog.Catalog
	sources signal.Sources
	hooks   *requirement.Hooks

	nodes     map[string]*requirement.Node
	resolving map[string]bool
	// stack holds the keys under construction, outermost first.
	stack []string
}

// New creates a registry over cat. Nothing is built until a key is resolved.
// The logger is taken from ctx.
func New(ctx context.Context, cat *catalog.Catalog, sources signal.Sources, opts ...Option) *Registry {
	if cat == nil {
		panic("registry: catalog is required")
	}
	r := &Registry{
		logger:    ctxlog.FromContext(ctx),
		catalog:   cat,
		sources:   sources,
		nodes:     make(map[string]*requirement.Node),
		resolving: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Catalog returns the catalog the registry builds from.
func (r *Registry) Catalog() *catalog.Catalog { return r.catalog }

// Len returns the number of nodes built so far.
func (r *Registry) Len() int { return len(r.nodes) }

// Lookup returns an already built node without building anything.
func (r *Registry) Lookup(key string) (*requirement.Node, bool) {
	n, ok := r.nodes[key]
	return n, ok
}

// Nodes returns every built node ordered by key.
func (r *Registry) Nodes() []*requirement.Node {
	keys := make([]string, 0, len(r.nodes))
	for k := range r.nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*requirement.Node, len(keys))
	for i, k := range keys {
		out[i] = r.nodes[k]
	}
	return out
}

// Get is Resolve for callers that treat every resolution failure as a
// programming error. It panics with the error.
func (r *Registry) Get(key string) *requirement.Node {
	n, err := r.Resolve(key)
	if err != nil {
		panic(err)
	}
	return n
}

// Resolve returns the node for key, building it and every dependency it
// needs on first use. Later calls return the same instance.
func (r *Registry) Resolve(key string) (*requirement.Node, error) {
	if n, ok := r.nodes[key]; ok {
		return n, nil
	}
	if r.resolving[key] {
		return nil, r.cycleError(key)
	}
	def, ok := r.catalog.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownKey, key)
	}

	r.resolving[key] = true
	r.stack = append(r.stack, key)
	defer func() {
		delete(r.resolving, key)
		r.stack = r.stack[:len(r.stack)-1]
	}()

	r.logger.Debug("Building requirement node.", "key", key, "kind", def.Kind.String(), "depth", len(r.stack))
	n, err := r.build(def)
	if err != nil {
		return nil, fmt.Errorf("requirement '%s': %w", key, err)
	}
	r.nodes[key] = n
	r.logger.Debug("Built requirement node.", "key", key, "strategy", n.Strategy().String(), "level", n.Accessibility().String())
	return n, nil
}

// BuildAll validates the catalog and builds every key in dependency order.
// It stops at the first error.
func (r *Registry) BuildAll() error {
	if err := r.catalog.Validate(); err != nil {
		return err
	}
	order, err := r.catalog.BuildOrder()
	if err != nil {
		return err
	}
	for _, key := range order {
		if _, err := r.Resolve(key); err != nil {
			return err
		}
	}
	r.logger.Debug("Built every requirement node.", "count", len(r.nodes))
	return nil
}

func (r *Registry) cycleError(key string) error {
	start := 0
	for i, k := range r.stack {
		if k == key {
			start = i
			break
		}
	}
	path := append(append([]string(nil), r.stack[start:]...), key)
	return fmt.Errorf("%w: %s", ErrCycle, strings.Join(path, " -> "))
}
