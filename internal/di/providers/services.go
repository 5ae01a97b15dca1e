package providers

import (
	"github.com/samber/do/v2"

	"github.com/gamedash/gamedash-server/internal/appstate"
	"github.com/gamedash/gamedash-server/internal/config"
	"github.com/gamedash/gamedash-server/internal/dashboard"
	"github.com/gamedash/gamedash-server/internal/logger"
	"github.com/gamedash/gamedash-server/internal/service"
	"github.com/gamedash/gamedash-server/internal/terms"
	"github.com/gamedash/gamedash-server/internal/validation"
)

// ProvideCatalogService provides the cached catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	client := do.MustInvoke[*RAWGClientHandle](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	index := do.MustInvoke[*SearchIndexHandle](i)

	return service.NewCatalogService(client.Client, service.CatalogOptions{
		Cache:        cacheHandle.Cache,
		CacheBackend: cacheHandle.Backend,
		CacheTTL:     cfg.Cache.TTL,
		FetchTimeout: cfg.Source.FetchTimeout,
		Index:        index.GameIndex,
	}, log.Component("catalog")), nil
}

// ProvideDetailService provides the game detail service.
func ProvideDetailService(i do.Injector) (*service.DetailService, error) {
	log := do.MustInvoke[*logger.Logger](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	translator := do.MustInvoke[*terms.Translator](i)
	placeholders := do.MustInvoke[*PlaceholdersHandle](i)

	// A nil *media.Placeholders must stay a nil interface.
	var ph service.PlaceholderSource
	if placeholders.Placeholders != nil {
		ph = placeholders.Placeholders
	}

	return service.NewDetailService(catalog, translator, ph, log.Component("detail")), nil
}

// ProvideDashboardService provides the dashboard service.
func ProvideDashboardService(i do.Injector) (*service.DashboardService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	history := do.MustInvoke[*HistoryHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	opts := service.DashboardOptions{
		Pipeline: dashboard.Options{
			GenreConcurrency:   cfg.Dashboard.GenreConcurrency,
			GenreFailurePolicy: dashboard.GenreFailurePolicy(cfg.Dashboard.GenreFailurePolicy),
			Modes: dashboard.ModeOptions{
				Policy:            dashboard.DegeneratePolicy(cfg.Dashboard.DegeneratePolicy),
				MinimumVisibleBar: cfg.Dashboard.MinimumVisibleBar,
			},
			FetchTimeout: cfg.Source.FetchTimeout,
		},
	}

	return service.NewDashboardService(catalog, opts, history.Store, sseHandle.Manager, log.Component("dashboard")), nil
}

// ProvideTermsService provides the term utilities service.
func ProvideTermsService(i do.Injector) (*service.TermsService, error) {
	translator := do.MustInvoke[*terms.Translator](i)
	return service.NewTermsService(translator), nil
}

// ProvideStateService provides the per-client state service.
func ProvideStateService(i do.Injector) (*appstate.Service, error) {
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)

	return appstate.NewService(storeHandle.Store, v, log.Component("appstate")), nil
}
