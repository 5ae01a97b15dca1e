package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/gamedash/gamedash-server/internal/appstate"
	"github.com/gamedash/gamedash-server/internal/catalog"
	"github.com/gamedash/gamedash-server/internal/rawg"
	"github.com/gamedash/gamedash-server/internal/search"
	"github.com/gamedash/gamedash-server/internal/service"
	"github.com/gamedash/gamedash-server/internal/sse"
	"github.com/gamedash/gamedash-server/internal/store"
	"github.com/gamedash/gamedash-server/internal/store/sqlite"
	"github.com/gamedash/gamedash-server/internal/terms"
	"github.com/gamedash/gamedash-server/internal/validation"
)

const testClientID = "client-V1StGXR8_Z5jdHi6B-myT"

// testEnvelope mirrors the response envelope with a typed data field.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

func rating(v float64) *float64 { return &v }

// stubSource serves a fixed catalog and counts upstream calls.
type stubSource struct {
	mu     sync.Mutex
	calls  map[string]int
	items  []catalog.Item
	genres []catalog.Genre
	detail *catalog.Detail
	err    error
}

func newStubSource() *stubSource {
	return &stubSource{
		calls: make(map[string]int),
		items: []catalog.Item{
			{ID: 1, Slug: "portal-2", Name: "Portal 2", Released: "2011-04-18", Rating: rating(4.6), Genres: []string{"Puzzle"}, Platforms: []string{"PC"}, Tags: []string{"Singleplayer", "Co-op"}},
			{ID: 2, Slug: "hades", Name: "Hades", Released: "2020-09-17", Rating: rating(4.4), Genres: []string{"Action"}, Platforms: []string{"PC", "Nintendo Switch"}, Tags: []string{"Singleplayer"}},
		},
		genres: []catalog.Genre{{ID: 4, Name: "Action", Slug: "action"}, {ID: 7, Name: "Puzzle", Slug: "puzzle"}},
		detail: &catalog.Detail{
			Item:        catalog.Item{ID: 1, Name: "Portal 2", Released: "2011-04-18", Rating: rating(4.6), Genres: []string{"Puzzle"}, Tags: []string{"Singleplayer", "Co-op"}},
			Description: "<p>A puzzle game.</p>",
		},
	}
}

func (s *stubSource) record(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	return s.err
}

func (s *stubSource) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *stubSource) ListItems(context.Context, catalog.ListParams) (*catalog.Page, error) {
	if err := s.record("listItems"); err != nil {
		return nil, err
	}
	return &catalog.Page{Items: s.items, Count: len(s.items)}, nil
}

func (s *stubSource) SearchItems(_ context.Context, q string, _ catalog.ListParams) (*catalog.Page, error) {
	if err := s.record("searchItems:" + q); err != nil {
		return nil, err
	}
	return &catalog.Page{Items: s.items[:1], Count: 1}, nil
}

func (s *stubSource) ListGenres(context.Context) ([]catalog.Genre, error) {
	if err := s.record("listGenres"); err != nil {
		return nil, err
	}
	return s.genres, nil
}

func (s *stubSource) ListPlatforms(context.Context) ([]catalog.Platform, error) {
	if err := s.record("listPlatforms"); err != nil {
		return nil, err
	}
	return []catalog.Platform{{ID: 4, Name: "PC", Slug: "pc"}}, nil
}

func (s *stubSource) GetItemDetail(_ context.Context, id int) (*catalog.Detail, error) {
	if err := s.record(fmt.Sprintf("detail:%d", id)); err != nil {
		return nil, err
	}
	if s.detail == nil || s.detail.ID != id {
		return nil, &rawg.Error{Op: "getItemDetail", ID: id, Err: rawg.ErrNotFound}
	}
	d := *s.detail
	return &d, nil
}

type testServer struct {
	*Server
	api    humatest.TestAPI
	src    *stubSource
	sse    *sse.Manager
	index  *search.GameIndex
	cancel context.CancelFunc
}

func (ts *testServer) cleanup() {
	ts.cancel()
	ts.Close()
}

// setupTestServer creates a server over a stub catalog source with
// in-memory badger, a memory bleve index and a temporary sqlite history.
func setupTestServer(t *testing.T) *testServer {
	return setupTestServerWithOptions(t, Options{})
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	src := newStubSource()

	kv, err := store.Open("", logger, store.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	idx, err := search.NewGameIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	history, err := sqlite.Open(filepath.Join(t.TempDir(), "history.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = history.Close() })

	translator, err := terms.Default()
	require.NoError(t, err)

	sseManager := sse.NewManager(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go sseManager.Start(ctx)

	v := validation.New()
	cat := service.NewCatalogService(src, service.CatalogOptions{
		Cache:        kv,
		CacheBackend: "badger",
		CacheTTL:     time.Hour,
		Index:        idx,
	}, logger)

	services := &Services{
		Catalog:   cat,
		Detail:    service.NewDetailService(cat, translator, nil, logger),
		Dashboard: service.NewDashboardService(cat, service.DashboardOptions{}, history, sseManager, logger),
		Terms:     service.NewTermsService(translator),
		State:     appstate.NewService(kv, v, logger),
		Validator: v,
		Index:     idx,
		SSE:       sseManager,
	}

	server := NewServer(services, opts, logger)
	return &testServer{
		Server: server,
		api:    humatest.Wrap(t, server.API()),
		src:    src,
		sse:    sseManager,
		index:  idx,
		cancel: cancel,
	}
}
