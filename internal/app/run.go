package app

import (
	"context"

	"github.com/vk/flockgo/internal/ctxlog"
)

// Run executes the main application logic based on the provided configuration.
// It blocks until ctx is cancelled or the supervision tree gives up.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if appConfig.HealthcheckPort > 0 {
		a.startHealthcheckServer(appConfig.HealthcheckPort)
	}

	a.logger.Info("🚀 Starting flock manager.", "workers", len(a.model.Flock))
	err := a.manager.Run(ctx)
	a.logger.Info("🏁 Flock manager stopped.")
	return err
}
