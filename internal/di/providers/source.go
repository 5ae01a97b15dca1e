package providers

import (
	"github.com/samber/do/v2"

	"github.com/gamedash/gamedash-server/internal/config"
	"github.com/gamedash/gamedash-server/internal/logger"
	"github.com/gamedash/gamedash-server/internal/media"
	"github.com/gamedash/gamedash-server/internal/rawg"
	"github.com/gamedash/gamedash-server/internal/terms"
	"github.com/gamedash/gamedash-server/internal/validation"
)

// RAWGClientHandle wraps the RAWG client with shutdown capability.
type RAWGClientHandle struct {
	*rawg.Client
}

// Shutdown implements do.Shutdownable.
func (h *RAWGClientHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideRAWGClient provides the rate-limited catalog client.
func ProvideRAWGClient(i do.Injector) (*RAWGClientHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	client, err := rawg.New(rawg.Config{
		BaseURL:      cfg.Source.BaseURL,
		APIKey:       cfg.Source.APIKey,
		FetchTimeout: cfg.Source.FetchTimeout,
		RPS:          float64(cfg.Source.RateLimit),
		Burst:        cfg.Source.RateLimit,
	}, log.Component("rawg"))
	if err != nil {
		return nil, err
	}

	log.Info("RAWG client initialized",
		"base_url", cfg.Source.BaseURL,
		"fetch_timeout", cfg.Source.FetchTimeout,
		"rate_limit", cfg.Source.RateLimit,
	)

	return &RAWGClientHandle{Client: client}, nil
}

// ProvideTranslator provides the English to Spanish term mapping, loaded once.
func ProvideTranslator(i do.Injector) (*terms.Translator, error) {
	log := do.MustInvoke[*logger.Logger](i)

	t, err := terms.Default()
	if err != nil {
		return nil, err
	}

	log.Info("Term dictionary loaded", "terms", t.Len())
	return t, nil
}

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// PlaceholdersHandle holds the placeholder service, or nil when disabled.
type PlaceholdersHandle struct {
	*media.Placeholders
}

// ProvidePlaceholders provides BlurHash placeholders for background images.
func ProvidePlaceholders(i do.Injector) (*PlaceholdersHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Media.BlurhashEnabled {
		log.Info("Image placeholders disabled by configuration")
		return &PlaceholdersHandle{}, nil
	}

	cacheHandle := do.MustInvoke[*CacheHandle](i)
	return &PlaceholdersHandle{
		Placeholders: media.NewPlaceholders(cacheHandle.Cache, cacheHandle.Backend, log.Component("media")),
	}, nil
}
