// Package registry turns a validated catalog into live requirement nodes.
//
// The Registry resolves keys lazily and memoizes the result, so every key
// maps to exactly one node shared by every parent that references it.
// Construction is recursive: resolving a composite first resolves each of
// its children. Keys under construction are tracked explicitly, which turns
// a dependency cycle into an ErrCycle error instead of unbounded recursion.
//
// BuildAll offers the eager alternative: it validates the whole catalog and
// constructs every key in dependency order.
package registry
