package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/specialistvlad/reqgraph/internal/access"
	"github.com/specialistvlad/reqgraph/internal/catalog"
	"github.com/specialistvlad/reqgraph/internal/ctxlog"
	"github.com/specialistvlad/reqgraph/internal/hcl"
	"github.com/specialistvlad/reqgraph/internal/inmemorysignal"
	"github.com/specialistvlad/reqgraph/internal/metrics"
	"github.com/specialistvlad/reqgraph/internal/registry"
	"github.com/specialistvlad/reqgraph/internal/requirement"
	"github.com/specialistvlad/reqgraph/internal/snapshot"
	"github.com/specialistvlad/reqgraph/internal/yamlcatalog"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config

	catalog  *catalog.Catalog
	store    *inmemorysignal.Store
	registry *registry.Registry

	gatherer   *prometheus.Registry
	httpServer *http.Server
}

// DefaultLoaders returns the catalog loaders used when NewApp is given none.
func DefaultLoaders() []catalog.Loader {
	return []catalog.Loader{hcl.NewLoader(), yamlcatalog.NewLoader()}
}

// NewApp is the constructor for the main application. Reports are written to
// outW and logs to logW. It returns a fully initialized App with its own
// isolated logger, metrics registry and requirement registry; nothing is
// built until Run.
//
// Failing to load the catalog or the state is a fatal startup error and
// panics.
func NewApp(outW, logW io.Writer, cfg *Config, loaders ...catalog.Loader) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	if len(loaders) == 0 {
		loaders = DefaultLoaders()
	}
	cat, err := loadCatalog(ctx, cfg.CatalogPaths, loaders)
	if err != nil {
		panic(fmt.Errorf("failed to load catalog: %w", err))
	}
	if err := cat.Validate(); err != nil {
		panic(fmt.Errorf("invalid catalog: %w", err))
	}
	logger.Debug("Catalog loaded and validated.", "requirements", cat.Len())

	store, err := loadState(cfg, cat)
	if err != nil {
		panic(fmt.Errorf("failed to load state: %w", err))
	}
	logger.Debug("Signal state loaded.", "state_path", cfg.StatePath, "strict", cfg.Strict)

	gatherer := prometheus.NewRegistry()
	collector := metrics.New(gatherer)
	hooks := collector.Hooks(&requirement.Hooks{
		OnChange: func(n *requirement.Node, from, to access.Level) {
			logger.Info("Requirement level changed.", "key", n.Key(), "from", from.String(), "to", to.String())
		},
	})

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		catalog:  cat,
		store:    store,
		registry: registry.New(ctx, cat, store.Sources(), registry.WithHooks(hooks)),
		gatherer: gatherer,
	}
}

// Registry returns the application's requirement registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Store returns the signal store the graph observes. This is primarily for testing.
func (a *App) Store() *inmemorysignal.Store {
	return a.store
}

func loadCatalog(ctx context.Context, paths []string, loaders []catalog.Loader) (*catalog.Catalog, error) {
	cat := catalog.New()
	for _, l := range loaders {
		part, err := l.Load(ctx, paths...)
		if err != nil {
			return nil, err
		}
		if err := cat.Merge(part); err != nil {
			return nil, err
		}
	}
	if cat.Len() == 0 {
		return nil, errors.New("no requirement definitions found")
	}
	return cat, nil
}

// loadState declares the snapshot's signals, then every other signal the
// catalog reads at its zero value unless cfg.Strict is set.
func loadState(cfg *Config, cat *catalog.Catalog) (*inmemorysignal.Store, error) {
	store := inmemorysignal.New()
	if cfg.StatePath != "" {
		st, err := snapshot.Load(cfg.StatePath)
		if err != nil {
			return nil, err
		}
		if err := st.Declare(store); err != nil {
			return nil, err
		}
	}
	if !cfg.Strict {
		snapshot.DeclareDefaults(store, cat.Signals(), cat.SettingTypes())
	}
	return store, nil
}
