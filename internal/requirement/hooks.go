package requirement

import "github.com/specialistvlad/reqgraph/internal/access"

// Hooks are optional callbacks fired during a node's lifetime. All fields may
// be nil. Hooks run synchronously inside propagation and must not mutate the
// graph's inputs.
type Hooks struct {
	// OnBuild fires once, after the node has computed its initial level and
	// subscribed to its inputs.
	OnBuild func(n *Node)
	// OnRecompute fires on every recomputation triggered by an input.
	OnRecompute func(n *Node)
	// OnChange fires when a recomputation changes the cached level, before
	// the node's own subscribers are notified.
	OnChange func(n *Node, from, to access.Level)
}

func (h *Hooks) build(n *Node) {
	if h != nil && h.OnBuild != nil {
		h.OnBuild(n)
	}
}

func (h *Hooks) recompute(n *Node) {
	if h != nil && h.OnRecompute != nil {
		h.OnRecompute(n)
	}
}

func (h *Hooks) change(n *Node, from, to access.Level) {
	if h != nil && h.OnChange != nil {
		h.OnChange(n, from, to)
	}
}
