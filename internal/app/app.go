package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/flockgo/internal/catalog"
	"github.com/vk/flockgo/internal/config"
	"github.com/vk/flockgo/internal/coordinator"
	"github.com/vk/flockgo/internal/ctxlog"
	"github.com/vk/flockgo/internal/manager"
	"github.com/vk/flockgo/internal/runnerspec"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW    io.Writer
	logger  *slog.Logger
	catalog *catalog.Catalog
	model   *config.Model
	manager *manager.Manager
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and catalog.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...catalog.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load the flock declaration into the format-agnostic model first.
	model, err := loader.Load(ctx, appConfig.FlockPath)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load flock declaration: %w", err))
	}
	logger.Debug("Flock declaration loaded.", "workers", len(model.Flock))

	// Create and populate the catalog with runner modules.
	cat := catalog.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(cat)
	}
	logger.Debug("All runner modules registered.", "count", len(modules), "runners", cat.Names())

	// Validate the declaration against the catalog up front, so a typoed
	// runner name fails the boot rather than one worker at replay time.
	if err := validateFlock(model, cat); err != nil {
		panic(err)
	}
	logger.Debug("Flock declaration validation passed.")

	mgr, err := manager.New(manager.Options{
		Name:          "flockgo",
		Catalog:       cat,
		ChildrenSpecs: childrenSpecs(model),
	})
	if err != nil {
		panic(fmt.Errorf("failed to construct manager: %w", err))
	}

	return &App{
		outW:    outW,
		logger:  logger,
		catalog: cat,
		model:   model,
		manager: mgr,
	}
}

// Catalog returns the application's runner catalog. This is primarily for testing.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

// Manager returns the application's manager. This is primarily for testing.
func (a *App) Manager() *manager.Manager {
	return a.manager
}

// childrenSpecs adapts the declarative model into the manager's initial
// flock callback, preserving declaration order.
func childrenSpecs(model *config.Model) func(ctx context.Context) []coordinator.InitialSpec {
	return func(ctx context.Context) []coordinator.InitialSpec {
		specs := make([]coordinator.InitialSpec, 0, len(model.Flock))
		for _, def := range model.Flock {
			var spec runnerspec.Spec
			if def.Runner == "" {
				spec = runnerspec.Default{}
			} else {
				spec = runnerspec.Module{Name: def.Runner, Args: def.Args}
			}
			specs = append(specs, coordinator.InitialSpec{ID: def.ID, Spec: spec})
		}
		return specs
	}
}

// validateFlock checks that every declared runner name resolves in the
// catalog. This is a parity check between declaration and compiled code,
// so it fails loudly.
func validateFlock(model *config.Model, cat *catalog.Catalog) error {
	for _, def := range model.Flock {
		if def.Runner == "" {
			continue
		}
		if _, ok := cat.Runner(def.Runner); !ok {
			return fmt.Errorf("flock validation failed: worker %q names unregistered runner %q (registered: %v)",
				def.ID, def.Runner, cat.Names())
		}
	}
	return nil
}
