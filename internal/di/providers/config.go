// Package providers contains dependency injection providers for the Domino Pro server.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/dominopro/dominopro-server/internal/config"
	"github.com/dominopro/dominopro-server/internal/logger"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig()
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Domino Pro server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
	)

	return log, nil
}

// component returns the shared logger tagged for one component.
func component(i do.Injector, name string) *slog.Logger {
	return do.MustInvoke[*logger.Logger](i).Component(name)
}
