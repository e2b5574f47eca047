package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/reqgraph/internal/ctxlog"
	"github.com/specialistvlad/reqgraph/internal/requirement"
	"github.com/specialistvlad/reqgraph/internal/snapshot"
)

// Run builds the requested requirements, applies testing overrides and
// assignments, and writes the report. With a listen port configured it then
// serves the inspection endpoints until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	nodes, err := a.build()
	if err != nil {
		return fmt.Errorf("failed to build requirement graph: %w", err)
	}
	a.logger.Info("Requirement graph built.", "node_count", a.registry.Len(), "requested", len(nodes))

	for _, key := range a.config.Testing {
		n, err := a.registry.Resolve(key)
		if err != nil {
			return fmt.Errorf("testing override: %w", err)
		}
		n.SetTesting(true)
		a.logger.Debug("Testing override set.", "key", key)
	}

	if err := a.applyAssignments(); err != nil {
		return err
	}

	if err := a.report(nodes); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if a.config.ListenPort > 0 {
		if err := a.serve(ctx, a.config.ListenPort); err != nil {
			return err
		}
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// build resolves the configured keys, or every catalog key when none are
// given, and returns the nodes to report in request order.
func (a *App) build() ([]*requirement.Node, error) {
	if len(a.config.Keys) == 0 {
		if err := a.registry.BuildAll(); err != nil {
			return nil, err
		}
		return a.registry.Nodes(), nil
	}

	nodes := make([]*requirement.Node, 0, len(a.config.Keys))
	for _, key := range a.config.Keys {
		n, err := a.registry.Resolve(key)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// applyAssignments parses and applies every assignment in order. Each one
// propagates synchronously before the next is applied.
func (a *App) applyAssignments() error {
	for _, raw := range a.config.Assignments {
		as, err := snapshot.ParseAssignment(raw)
		if err != nil {
			return err
		}
		a.logger.Info("Applying assignment.", "assignment", as.String())
		if err := as.Apply(a.store); err != nil {
			return fmt.Errorf("failed to apply assignment: %w", err)
		}
	}
	return nil
}
