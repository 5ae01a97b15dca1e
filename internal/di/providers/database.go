package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/do/v2"

	"github.com/gamedash/gamedash-server/internal/cache"
	"github.com/gamedash/gamedash-server/internal/config"
	"github.com/gamedash/gamedash-server/internal/logger"
	"github.com/gamedash/gamedash-server/internal/search"
	"github.com/gamedash/gamedash-server/internal/store"
	"github.com/gamedash/gamedash-server/internal/store/sqlite"
)

// StoreHandle wraps the badger store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the badger key-value store holding client state
// and, with the badger backend, the response cache.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data path: %w", err)
	}

	dbPath := filepath.Join(cfg.Storage.DataPath, "kv")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Key-value store initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// CacheHandle is the response cache selected by configuration.
type CacheHandle struct {
	cache.Cache
	Backend string
	closer  func() error
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	if h.closer == nil {
		return nil
	}
	return h.closer()
}

// ProvideCache provides the upstream response cache. The badger backend
// shares the key-value store; redis opens its own connection.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Cache.Backend {
	case config.CacheRedis:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		r, err := cache.NewRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, err
		}
		log.Info("Response cache initialized", "backend", "redis", "ttl", cfg.Cache.TTL)
		return &CacheHandle{Cache: r, Backend: config.CacheRedis, closer: r.Close}, nil

	case config.CacheNone:
		log.Info("Response cache disabled")
		return &CacheHandle{Cache: cache.Noop{}, Backend: config.CacheNone}, nil

	default:
		storeHandle := do.MustInvoke[*StoreHandle](i)
		log.Info("Response cache initialized", "backend", "badger", "ttl", cfg.Cache.TTL)
		// The store handle owns the database; nothing to close here.
		return &CacheHandle{Cache: storeHandle.Store, Backend: config.CacheBadger}, nil
	}
}

// HistoryHandle wraps the sqlite snapshot history with shutdown capability.
type HistoryHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *HistoryHandle) Shutdown() error {
	return h.Close()
}

// ProvideHistory provides the dashboard snapshot history.
func ProvideHistory(i do.Injector) (*HistoryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Storage.DataPath, 0o755); err != nil {
		return nil, fmt.Errorf("create data path: %w", err)
	}

	dbPath := filepath.Join(cfg.Storage.DataPath, "history.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Snapshot history initialized", "path", dbPath)

	return &HistoryHandle{Store: db}, nil
}

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.GameIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve index of fetched games.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	indexPath := filepath.Join(cfg.Storage.DataPath, "search")
	if err := os.MkdirAll(indexPath, 0o755); err != nil {
		return nil, fmt.Errorf("create search path: %w", err)
	}

	index, err := search.NewGameIndex(search.Options{
		DataPath: indexPath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{GameIndex: index}, nil
}
