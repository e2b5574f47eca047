// Package metrics exposes requirement graph activity as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/requirement"
)

const namespace = "reqgraph"

// Collector counts node lifecycle events. Register it through New and bind it
// to a registry with Hooks.
type Collector struct {
	nodesBuilt     *prometheus.CounterVec
	recomputations *prometheus.CounterVec
	levelChanges   *prometheus.CounterVec
	level          *prometheus.GaugeVec
}

// New creates a collector whose metrics are registered with reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		nodesBuilt: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nodes_built_total",
			Help:      "Requirement nodes constructed, by strategy.",
		}, []string{"strategy"}),
		recomputations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recomputations_total",
			Help:      "Recomputations triggered by an input change, by strategy.",
		}, []string{"strategy"}),
		levelChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "level_changes_total",
			Help:      "Recomputations that changed a node's level, by new level.",
		}, []string{"level"}),
		level: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "requirement_level",
			Help:      "Current accessibility level of each requirement (0 none .. 4 normal).",
		}, []string{"key"}),
	}
}

// Hooks returns node hooks that record into c and then call next, which may
// be nil.
func (c *Collector) Hooks(next *requirement.Hooks) *requirement.Hooks {
	return &requirement.Hooks{
		OnBuild: func(n *requirement.Node) {
			c.nodesBuilt.WithLabelValues(n.Strategy().String()).Inc()
			c.level.WithLabelValues(n.Key()).Set(float64(n.Accessibility()))
			if next != nil && next.OnBuild != nil {
				next.OnBuild(n)
			}
		},
		OnRecompute: func(n *requirement.Node) {
			c.recomputations.WithLabelValues(n.Strategy().String()).Inc()
			if next != nil && next.OnRecompute != nil {
				next.OnRecompute(n)
			}
		},
		OnChange: func(n *requirement.Node, from, to access.Level) {
			c.levelChanges.WithLabelValues(to.String()).Inc()
			c.level.WithLabelValues(n.Key()).Set(float64(to))
			if next != nil && next.OnChange != nil {
				next.OnChange(n, from, to)
			}
		},
	}
}
