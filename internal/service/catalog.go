// Package service implements the application operations behind the HTTP API:
// cached catalog reads, dashboard runs with history, and term utilities.
package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/gamedash/gamedash-server/internal/cache"
	"github.com/gamedash/gamedash-server/internal/catalog"
	domainerrors "github.com/gamedash/gamedash-server/internal/errors"
	"github.com/gamedash/gamedash-server/internal/search"
)

const (
	// filterCatalogLimit caps the genre and platform lists offered as filters.
	filterCatalogLimit = 20

	defaultFetchTimeout = 10 * time.Second
)

// Source is the catalog data source.
type Source interface {
	ListItems(ctx context.Context, params catalog.ListParams) (*catalog.Page, error)
	SearchItems(ctx context.Context, search string, params catalog.ListParams) (*catalog.Page, error)
	ListGenres(ctx context.Context) ([]catalog.Genre, error)
	ListPlatforms(ctx context.Context) ([]catalog.Platform, error)
	GetItemDetail(ctx context.Context, id int) (*catalog.Detail, error)
}

// CatalogOptions configures a CatalogService.
type CatalogOptions struct {
	Cache        cache.Cache
	CacheBackend string
	CacheTTL     time.Duration
	// FetchTimeout bounds one shared upstream call. Defaults to 10s.
	FetchTimeout time.Duration
	// Index receives every item fetched from the source. Optional.
	Index *search.GameIndex
}

// CatalogService serves catalog reads from the response cache, falling back
// to the source. Concurrent misses for the same key share one upstream call.
// It satisfies dashboard.Source.
type CatalogService struct {
	src          Source
	fetchTimeout time.Duration
	pages        *cache.Typed[catalog.Page]
	details      *cache.Typed[catalog.Detail]
	genres       *cache.Typed[[]catalog.Genre]
	platforms    *cache.Typed[[]catalog.Platform]
	index        *search.GameIndex
	group        singleflight.Group
	logger       *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(src Source, opts CatalogOptions, logger *slog.Logger) *CatalogService {
	backend := opts.CacheBackend
	if backend == "" {
		backend = "none"
	}
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = defaultFetchTimeout
	}
	return &CatalogService{
		src:          src,
		fetchTimeout: fetchTimeout,
		pages:        cache.NewTyped[catalog.Page](opts.Cache, backend, opts.CacheTTL),
		details:      cache.NewTyped[catalog.Detail](opts.Cache, backend, opts.CacheTTL),
		genres:       cache.NewTyped[[]catalog.Genre](opts.Cache, backend, opts.CacheTTL),
		platforms:    cache.NewTyped[[]catalog.Platform](opts.Cache, backend, opts.CacheTTL),
		index:        opts.Index,
		logger:       logger,
	}
}

// ListItems returns one page of the catalog listing.
func (s *CatalogService) ListItems(ctx context.Context, params catalog.ListParams) (*catalog.Page, error) {
	params = params.WithDefaults()
	key := pageKey("rawg:games", "", params)

	page, err := cached(ctx, s, s.pages, key, "listItems", func(ctx context.Context) (*catalog.Page, error) {
		return s.src.ListItems(ctx, params)
	})
	if err != nil {
		return nil, err
	}
	s.indexItems(page.Items)
	return page, nil
}

// SearchItems returns one page of items matching query.
func (s *CatalogService) SearchItems(ctx context.Context, query string, params catalog.ListParams) (*catalog.Page, error) {
	if query == "" {
		return s.ListItems(ctx, params)
	}
	params = params.WithDefaults()
	key := pageKey("rawg:search", query, params)

	page, err := cached(ctx, s, s.pages, key, "searchItems", func(ctx context.Context) (*catalog.Page, error) {
		return s.src.SearchItems(ctx, query, params)
	})
	if err != nil {
		return nil, err
	}
	s.indexItems(page.Items)
	return page, nil
}

// ListGenres returns every genre known to the source, in source order.
func (s *CatalogService) ListGenres(ctx context.Context) ([]catalog.Genre, error) {
	genres, err := cached(ctx, s, s.genres, cache.Key("rawg:genres"), "listGenres", func(ctx context.Context) (*[]catalog.Genre, error) {
		g, err := s.src.ListGenres(ctx)
		return &g, err
	})
	if err != nil {
		return nil, err
	}
	return *genres, nil
}

// ListPlatforms returns every platform known to the source, in source order.
func (s *CatalogService) ListPlatforms(ctx context.Context) ([]catalog.Platform, error) {
	platforms, err := cached(ctx, s, s.platforms, cache.Key("rawg:platforms"), "listPlatforms", func(ctx context.Context) (*[]catalog.Platform, error) {
		p, err := s.src.ListPlatforms(ctx)
		return &p, err
	})
	if err != nil {
		return nil, err
	}
	return *platforms, nil
}

// FilterGenres returns the genres offered in the filter UI.
func (s *CatalogService) FilterGenres(ctx context.Context) ([]catalog.Genre, error) {
	genres, err := s.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	return capList(genres, filterCatalogLimit), nil
}

// FilterPlatforms returns the platforms offered in the filter UI.
func (s *CatalogService) FilterPlatforms(ctx context.Context) ([]catalog.Platform, error) {
	platforms, err := s.ListPlatforms(ctx)
	if err != nil {
		return nil, err
	}
	return capList(platforms, filterCatalogLimit), nil
}

// GetItemDetail returns the source detail record of one item.
func (s *CatalogService) GetItemDetail(ctx context.Context, id int) (*catalog.Detail, error) {
	if id <= 0 {
		return nil, domainerrors.Validationf("invalid item id %d", id)
	}

	key := cache.Key("rawg:detail", strconv.Itoa(id))
	detail, err := cached(ctx, s, s.details, key, "getItemDetail", func(ctx context.Context) (*catalog.Detail, error) {
		return s.src.GetItemDetail(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	s.indexItems([]catalog.Item{detail.Item})
	return detail, nil
}

// SearchLocal queries the items indexed so far.
func (s *CatalogService) SearchLocal(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if s.index == nil {
		return nil, domainerrors.Internal("local search index is not configured")
	}
	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "local search failed")
	}
	return result, nil
}

func (s *CatalogService) indexItems(items []catalog.Item) {
	if s.index == nil || len(items) == 0 {
		return
	}
	if err := s.index.IndexItems(items); err != nil {
		s.logger.Warn("failed to index items", "count", len(items), "error", err)
	}
}

// cached reads key from c, calling fetch on a miss and storing its result.
// Cache failures are logged and otherwise ignored.
//
// Callers missing the same key share one fetch. That fetch is detached from
// every caller's context and bounded by the service's fetch timeout, so one
// caller giving up (or carrying a short deadline) never fails the others. A
// caller whose ctx ends stops waiting; the fetch still completes and fills the
// cache.
func cached[T any](ctx context.Context, s *CatalogService, c *cache.Typed[T], key, op string, fetch func(context.Context) (*T, error)) (*T, error) {
	if v, err := c.Get(ctx, key); err != nil {
		s.logger.Warn("cache read failed", "key", key, "error", err)
	} else if v != nil {
		return v, nil
	}

	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(detached, s.fetchTimeout)
		defer cancel()

		v, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errEmptyResponse
		}
		if err := c.Set(detached, key, v); err != nil {
			s.logger.Warn("cache write failed", "key", key, "error", err)
		}
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, mapSourceError(op, res.Err)
		}
		return res.Val.(*T), nil
	case <-ctx.Done():
		return nil, mapSourceError(op, ctx.Err())
	}
}

func pageKey(namespace, query string, p catalog.ListParams) string {
	return cache.Key(namespace, query, p.Genres, p.Platforms, p.Ordering, p.Dates,
		strconv.Itoa(p.Page), strconv.Itoa(p.PageSize))
}

func capList[T any](list []T, n int) []T {
	if len(list) > n {
		return list[:n]
	}
	return list
}
