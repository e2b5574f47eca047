// Package requirement implements the evaluator nodes of the requirement graph.
//
// # Node
//
// Every vertex is a *Node. A node carries one evaluation Strategy chosen at
// construction time and never changed afterwards:
//
//   - Static: a constant level, no subscriptions.
//   - Threshold: a boolean condition over external signals; reports a fixed
//     node-specific level when true and None when false.
//   - Graded: computes a level directly from external signals.
//   - AllOf: the minimum over its children, short-circuiting at None.
//   - AnyOf: the maximum over its children, short-circuiting at Normal.
//   - Switch: the level of the child selected by an external identity (a boss
//     placement); an unmapped identity is a fatal "not handled" error.
//
// # Propagation
//
// A node subscribes to its inputs exactly once, when it is constructed. Each
// notification triggers a full synchronous recomputation; subscribers of the
// node are told only when the recomputed level differs from the cached one.
// Propagation is depth-first along subscription order and completes before the
// external mutation that started it returns. A node reachable along several
// paths from the same input may be recomputed more than once per mutation; each
// recomputation is idempotent, so the final state is the same.
//
// # Testing override
//
// SetTesting(true) forces Met() to report true without touching the cached
// level. Parents fold the cached level, never the override.
//
// Nodes are not safe for concurrent use.
package requirement
