package requirement

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/signal"
)

// ErrMissingCollaborator is returned when a node is constructed without an
// input it cannot work without.
var ErrMissingCollaborator = errors.New("missing required collaborator")

// ErrNotHandled is the panic value, wrapped with the offending name, raised
// when a Switch node observes a selector value it has no case for.
var ErrNotHandled = errors.New("not handled")

// Case maps one selector value of a Switch node to a child node.
type Case struct {
	Name string
	Node *Node
}

// Option customizes a node at construction time.
type Option func(*Node)

// WithMetThreshold sets the lowest level at which Met reports true. The
// default is access.Inspect, i.e. any level above None.
func WithMetThreshold(l access.Level) Option {
	return func(n *Node) {
		n.metAt = l
	}
}

// WithHooks attaches lifecycle hooks.
func WithHooks(h *Hooks) Option {
	return func(n *Node) {
		n.hooks = h
	}
}

// WithDescription attaches a human-readable description.
func WithDescription(d string) Option {
	return func(n *Node) {
		n.description = d
	}
}

// Node is a single vertex of the requirement graph.
type Node struct {
	key         string
	description string
	strategy    Strategy

	level   access.Level
	metAt   access.Level
	testing bool

	// fixed is the constant of a static node and the "true" level of a
	// threshold node.
	fixed     access.Level
	condition func() bool
	grade     func() access.Level
	children  []*Node
	selector  func() string
	cases     map[string]*Node

	hooks       *Hooks
	subscribers signal.Broadcaster
}

// NewStatic creates a node that reports level forever.
func NewStatic(key string, level access.Level, opts ...Option) (*Node, error) {
	n := newNode(key, StrategyStatic, opts)
	n.fixed = level
	if !level.Valid() {
		return nil, fmt.Errorf("requirement %s: invalid level %s", key, level)
	}
	return n.finish(nil)
}

// NewThreshold creates a node that reports level while condition holds and
// None otherwise. It recomputes whenever any of sources notifies.
func NewThreshold(key string, level access.Level, condition func() bool, sources []signal.Notifier, opts ...Option) (*Node, error) {
	if condition == nil {
		return nil, fmt.Errorf("requirement %s: condition: %w", key, ErrMissingCollaborator)
	}
	if !level.Valid() || level == access.None {
		return nil, fmt.Errorf("requirement %s: threshold level must be above none, got %s", key, level)
	}
	n := newNode(key, StrategyThreshold, opts)
	n.fixed = level
	n.condition = condition
	return n.finish(sources)
}

// NewGraded creates a node whose level is computed directly by grade.
func NewGraded(key string, grade func() access.Level, sources []signal.Notifier, opts ...Option) (*Node, error) {
	if grade == nil {
		return nil, fmt.Errorf("requirement %s: grade function: %w", key, ErrMissingCollaborator)
	}
	n := newNode(key, StrategyGraded, opts)
	n.grade = grade
	return n.finish(sources)
}

// NewAllOf creates a conjunction over children, evaluated in the given order.
func NewAllOf(key string, children []*Node, opts ...Option) (*Node, error) {
	return newComposite(key, StrategyAllOf, children, opts)
}

// NewAnyOf creates a disjunction over children, evaluated in the given order.
func NewAnyOf(key string, children []*Node, opts ...Option) (*Node, error) {
	return newComposite(key, StrategyAnyOf, children, opts)
}

func newComposite(key string, strategy Strategy, children []*Node, opts []Option) (*Node, error) {
	n := newNode(key, strategy, opts)
	n.children = make([]*Node, len(children))
	sources := make([]signal.Notifier, len(children))
	for i, c := range children {
		if c == nil {
			return nil, fmt.Errorf("requirement %s: child %d: %w", key, i, ErrMissingCollaborator)
		}
		n.children[i] = c
		sources[i] = c
	}
	return n.finish(sources)
}

// NewSwitch creates a node that reports the level of the case named by
// selector. An empty selector value yields None. A selector value without a
// case panics with an error wrapping ErrNotHandled when it is observed.
func NewSwitch(key string, selector func() string, source signal.Notifier, cases []Case, opts ...Option) (*Node, error) {
	if selector == nil || source == nil {
		return nil, fmt.Errorf("requirement %s: selector: %w", key, ErrMissingCollaborator)
	}
	n := newNode(key, StrategySwitch, opts)
	n.selector = selector
	n.cases = make(map[string]*Node, len(cases))
	sources := []signal.Notifier{source}
	for _, c := range cases {
		if c.Node == nil {
			return nil, fmt.Errorf("requirement %s: case %q: %w", key, c.Name, ErrMissingCollaborator)
		}
		if _, dup := n.cases[c.Name]; dup {
			return nil, fmt.Errorf("requirement %s: duplicate case %q", key, c.Name)
		}
		n.cases[c.Name] = c.Node
		n.children = append(n.children, c.Node)
		sources = append(sources, c.Node)
	}
	return n.finish(sources)
}

func newNode(key string, strategy Strategy, opts []Option) *Node {
	n := &Node{
		key:      key,
		strategy: strategy,
		metAt:    access.Inspect,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// finish validates common fields, computes the initial level and subscribes
// to every input.
func (n *Node) finish(sources []signal.Notifier) (*Node, error) {
	if n.key == "" {
		return nil, fmt.Errorf("requirement: key is required")
	}
	if !n.metAt.Valid() || n.metAt == access.None {
		return nil, fmt.Errorf("requirement %s: met threshold must be above none, got %s", n.key, n.metAt)
	}
	for i, s := range sources {
		if s == nil {
			return nil, fmt.Errorf("requirement %s: source %d: %w", n.key, i, ErrMissingCollaborator)
		}
	}

	n.level = n.evaluate()
	for _, s := range sources {
		s.Subscribe(n.recompute)
	}
	n.hooks.build(n)
	return n, nil
}

// Key returns the node's identity.
func (n *Node) Key() string { return n.key }

// Description returns the optional human-readable description.
func (n *Node) Description() string { return n.description }

// Strategy returns how the node computes its level.
func (n *Node) Strategy() Strategy { return n.strategy }

// Accessibility returns the cached level. Reading never recomputes.
func (n *Node) Accessibility() access.Level { return n.level }

// MetThreshold returns the lowest level at which Met reports true.
func (n *Node) MetThreshold() access.Level { return n.metAt }

// Met reports whether the condition is satisfied, honouring the testing
// override.
func (n *Node) Met() bool {
	if n.testing {
		return true
	}
	return n.level >= n.metAt
}

// Testing reports whether the testing override is set.
func (n *Node) Testing() bool { return n.testing }

// SetTesting sets or clears the testing override. It does not change the
// cached level and therefore never notifies subscribers.
func (n *Node) SetTesting(on bool) { n.testing = on }

// Children returns the child nodes in evaluation order. Leaves return nil.
func (n *Node) Children() []*Node {
	if len(n.children) == 0 {
		return nil
	}
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Subscribe implements signal.Notifier. h runs whenever the cached level
// changes.
func (n *Node) Subscribe(h signal.Handler) string {
	return n.subscribers.Subscribe(h)
}

// Unsubscribe implements signal.Notifier.
func (n *Node) Unsubscribe(id string) bool {
	return n.subscribers.Unsubscribe(id)
}

// Subscribers returns the number of active subscriptions, parents included.
func (n *Node) Subscribers() int {
	return n.subscribers.Len()
}

func (n *Node) String() string {
	return fmt.Sprintf("%s(%s)=%s", n.key, n.strategy, n.level)
}

// recompute is the handler every input calls on change.
func (n *Node) recompute() {
	next := n.evaluate()
	n.hooks.recompute(n)
	if next == n.level {
		return
	}
	prev := n.level
	n.level = next
	n.hooks.change(n, prev, next)
	n.subscribers.Notify()
}

func (n *Node) evaluate() access.Level {
	switch n.strategy {
	case StrategyStatic:
		return n.fixed
	case StrategyThreshold:
		if n.condition() {
			return n.fixed
		}
		return access.None
	case StrategyGraded:
		l := n.grade()
		if !l.Valid() {
			panic(fmt.Sprintf("requirement %s: graded evaluation produced invalid level %s", n.key, l))
		}
		return l
	case StrategyAllOf:
		acc := access.Normal
		for _, c := range n.children {
			acc = access.Min(acc, c.level)
			if acc == access.None {
				break
			}
		}
		return acc
	case StrategyAnyOf:
		acc := access.None
		for _, c := range n.children {
			acc = access.Max(acc, c.level)
			if acc == access.Normal {
				break
			}
		}
		return acc
	case StrategySwitch:
		name := n.selector()
		if name == "" {
			return access.None
		}
		c, ok := n.cases[name]
		if !ok {
			panic(fmt.Errorf("requirement %s: %q %w", n.key, name, ErrNotHandled))
		}
		return c.level
	default:
		panic(fmt.Sprintf("requirement %s: strategy %s not handled", n.key, n.strategy))
	}
}
