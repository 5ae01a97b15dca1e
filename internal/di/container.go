// Package di provides dependency injection configuration for the gamedash server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/gamedash/gamedash-server/internal/appstate"
	"github.com/gamedash/gamedash-server/internal/config"
	"github.com/gamedash/gamedash-server/internal/di/providers"
	"github.com/gamedash/gamedash-server/internal/logger"
	"github.com/gamedash/gamedash-server/internal/service"
	"github.com/gamedash/gamedash-server/internal/terms"
	"github.com/gamedash/gamedash-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideSSEManager)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideCache)
	do.Provide(injector, providers.ProvideHistory)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Catalog source
	do.Provide(injector, providers.ProvideRAWGClient)
	do.Provide(injector, providers.ProvideTranslator)
	do.Provide(injector, providers.ProvidePlaceholders)

	// Business services
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideDetailService)
	do.Provide(injector, providers.ProvideDashboardService)
	do.Provide(injector, providers.ProvideTermsService)
	do.Provide(injector, providers.ProvideStateService)

	// Workers
	do.Provide(injector, providers.ProvideStoreGCJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}

	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.CacheHandle](injector)
	_ = do.MustInvoke[*providers.HistoryHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*providers.RAWGClientHandle](injector)
	_ = do.MustInvoke[*terms.Translator](injector)
	_ = do.MustInvoke[*providers.PlaceholdersHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.CatalogService](injector)
	_ = do.MustInvoke[*service.DetailService](injector)
	_ = do.MustInvoke[*service.DashboardService](injector)
	_ = do.MustInvoke[*service.TermsService](injector)
	_ = do.MustInvoke[*appstate.Service](injector)

	// Workers
	_ = do.MustInvoke[*providers.StoreGCJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
