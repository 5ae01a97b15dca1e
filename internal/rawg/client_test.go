package rawg

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedash/gamedash-server/internal/catalog"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err, "load fixture %s", name)
	return data
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{
		BaseURL:      server.URL + "/api",
		APIKey:       "test-key",
		FetchTimeout: 2 * time.Second,
		RPS:          100,
		Burst:        100,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestClient_ListItems(t *testing.T) {
	fixture := loadFixture(t, "games_page.json")

	var gotQuery atomic.Value
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/games", r.URL.Path)
		gotQuery.Store(r.URL.Query())
		w.Write(fixture)
	})

	page, err := client.ListItems(context.Background(), catalog.ListParams{Genres: "4", PageSize: 3})
	require.NoError(t, err)

	q := gotQuery.Load().(url.Values)
	assert.Equal(t, []string{"test-key"}, q["key"])
	assert.Equal(t, []string{"4"}, q["genres"])
	assert.Equal(t, []string{"3"}, q["page_size"])
	assert.Equal(t, []string{"1"}, q["page"])
	assert.Equal(t, []string{"-rating"}, q["ordering"])

	assert.Equal(t, 874512, page.Count)
	assert.True(t, page.HasNext)
	require.Len(t, page.Items, 3)

	gta := page.Items[0]
	assert.Equal(t, 3498, gta.ID)
	assert.Equal(t, "2013-09-17", gta.Released)
	require.NotNil(t, gta.Rating)
	assert.InDelta(t, 4.47, *gta.Rating, 0.001)
	assert.Equal(t, []string{"PC", "PlayStation 4"}, gta.Platforms)
	assert.Equal(t, []string{"Action", "Adventure"}, gta.Genres)
	assert.Equal(t, []string{"Singleplayer", "Multiplayer"}, gta.Tags)

	portal := page.Items[1]
	assert.Empty(t, portal.Released)
	assert.Nil(t, portal.Rating)
	assert.Equal(t, []string{"Co-op", "Puzzle"}, portal.Tags, "string tags accepted, null dropped")

	tomb := page.Items[2]
	assert.Empty(t, tomb.Platforms)
	assert.NotNil(t, tomb.Platforms)
	assert.Empty(t, tomb.Tags)
}

func TestClient_SearchItems(t *testing.T) {
	var search, ordering string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		search = r.URL.Query().Get("search")
		ordering = r.URL.Query().Get("ordering")
		w.Write([]byte(`{"count": 0, "next": null, "results": []}`))
	})

	page, err := client.SearchItems(context.Background(), "  zelda ", catalog.ListParams{})
	require.NoError(t, err)

	assert.Equal(t, "zelda", search)
	assert.Empty(t, ordering, "search relies on source relevance")
	assert.Empty(t, page.Items)
	assert.False(t, page.HasNext)
}

func TestClient_StatusErrors(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantErr    error
	}{
		{"not found", http.StatusNotFound, `{"detail":"Not found."}`, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, "", ErrRateLimited},
		{"bad key", http.StatusUnauthorized, `{"error":"The key parameter is not provided"}`, ErrUnauthorized},
		{"bad request", http.StatusBadRequest, "", ErrBadRequest},
		{"server error", http.StatusBadGateway, "", ErrServer},
		{"malformed payload", http.StatusOK, `{"results": [`, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			})

			_, err := client.ListItems(context.Background(), catalog.ListParams{})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var rawgErr *Error
			require.True(t, errors.As(err, &rawgErr))
			assert.Equal(t, "listItems", rawgErr.Op)
		})
	}
}

func TestClient_FetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client, err := New(Config{
		BaseURL:      server.URL,
		APIKey:       "k",
		FetchTimeout: 50 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer client.Close()

	_, err = client.ListGenres(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_GetItemDetail(t *testing.T) {
	detail := loadFixture(t, "game_detail.json")
	shots := loadFixture(t, "screenshots.json")

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/games/3498":
			w.Write(detail)
		case "/api/games/3498/screenshots":
			w.Write(shots)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	got, err := client.GetItemDetail(context.Background(), 3498)
	require.NoError(t, err)

	assert.Equal(t, "Grand Theft Auto V", got.Name)
	assert.Equal(t, []string{"Rockstar North"}, got.Developers)
	assert.Equal(t, []string{"Rockstar Games"}, got.Publishers)
	assert.Equal(t, "Mature", got.ESRBRating)
	assert.Equal(t, "http://www.rockstargames.com/V/", got.Website)
	assert.Equal(t, 539, got.AchievementsCount)
	assert.Contains(t, got.Description, "<strong>open world</strong>")
	require.Len(t, got.Screenshots, 2)
	assert.Equal(t, 1920, got.Screenshots[0].Width)
}

func TestClient_GetItemDetail_ScreenshotsFailureTolerated(t *testing.T) {
	detail := loadFixture(t, "game_detail.json")

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/games/3498" {
			w.Write(detail)
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})

	got, err := client.GetItemDetail(context.Background(), 3498)
	require.NoError(t, err)
	assert.Empty(t, got.Screenshots)
}

func TestClient_GetItemDetail_InvalidID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.GetItemDetail(context.Background(), 0)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestClient_ListGenres(t *testing.T) {
	fixture := loadFixture(t, "genres.json")
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/genres", r.URL.Path)
		w.Write(fixture)
	})

	genres, err := client.ListGenres(context.Background())
	require.NoError(t, err)
	require.Len(t, genres, 3)
	assert.Equal(t, catalog.Genre{ID: 4, Name: "Action", Slug: "action", GamesCount: 180000}, genres[0])
	assert.Equal(t, "Adventure", genres[2].Name)
}

func TestClient_ListPlatforms_FollowsPages(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		switch r.URL.Query().Get("page") {
		case "1":
			w.Write([]byte(`{"count":3,"next":"https://api.rawg.io/api/platforms?page=2","results":[{"id":4,"name":"PC","slug":"pc"},{"id":187,"name":"PlayStation 5","slug":"playstation5"}]}`))
		default:
			w.Write([]byte(`{"count":3,"next":null,"results":[{"id":7,"name":"Nintendo Switch","slug":"nintendo-switch"}]}`))
		}
	})

	platforms, err := client.ListPlatforms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	require.Len(t, platforms, 3)
	assert.Equal(t, "Nintendo Switch", platforms[2].Name)
}
