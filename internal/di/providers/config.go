// Package providers contains dependency injection providers for the gamedash server.
package providers

import (
	"log/slog"
	"os"

	"github.com/samber/do/v2"

	"github.com/gamedash/gamedash-server/internal/config"
	"github.com/gamedash/gamedash-server/internal/logger"
)

// ProvideConfig provides the application configuration from the process flags and environment.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	return config.LoadConfig(os.Args[1:])
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting gamedash server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Storage.DataPath,
		"cache_backend", cfg.Cache.Backend,
		"rawg_base_url", cfg.Source.BaseURL,
	)

	return log, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
