package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedash/gamedash-server/internal/catalog"
)

var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func testItems() []catalog.Item {
	return []catalog.Item{
		{ID: 3498, Slug: "grand-theft-auto-v", Name: "Grand Theft Auto V", Released: "2013-09-17", Rating: ptr(4.47),
			Genres: []string{"Action", "Adventure"}, Platforms: []string{"PC", "PlayStation 5"}},
		{ID: 3328, Slug: "the-witcher-3-wild-hunt", Name: "The Witcher 3: Wild Hunt", Released: "2015-05-18", Rating: ptr(4.65),
			Genres: []string{"Action", "RPG"}, Platforms: []string{"PC", "Nintendo Switch"}},
		{ID: 4200, Slug: "portal-2", Name: "Portal 2", Released: "2011-04-18", Rating: ptr(4.61),
			Genres: []string{"Shooter", "Puzzle"}, Platforms: []string{"PC"}},
		{ID: 5286, Slug: "tomb-raider", Name: "Tomb Raider", Released: "2013-03-05", Rating: ptr(4.05),
			Genres: []string{"Action", "Adventure"}, Platforms: []string{"PlayStation 4"}},
	}
}

// setupTestIndex creates a temporary on-disk search index.
func setupTestIndex(t *testing.T) *GameIndex {
	t.Helper()

	index, err := NewGameIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	require.NoError(t, index.IndexItems(testItems()))
	return index
}

func hitIDs(res *SearchResult) []int {
	ids := make([]int, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids
}

func TestNewGameDocument(t *testing.T) {
	doc := NewGameDocument(testItems()[1], testNow)

	assert.Equal(t, "3328", doc.ID)
	assert.Equal(t, []string{"action", "rpg"}, doc.Genres)
	assert.Equal(t, []string{"pc", "nintendo-switch"}, doc.Platforms)
	assert.Equal(t, 2015, doc.Year)
	assert.InDelta(t, 4.65, doc.Rating, 1e-9)

	m := doc.ToMap()
	assert.NotContains(t, m, "metacritic")
	assert.NotContains(t, m, "tags")
}

func TestGameIndex_IndexItems(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)

	// Re-indexing replaces.
	require.NoError(t, index.IndexItems(testItems()[:2]))
	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)
}

func TestGameIndex_SearchByName(t *testing.T) {
	index := setupTestIndex(t)

	params := DefaultSearchParams()
	params.Query = "witcher"
	res, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.NotEmpty(t, res.Hits)
	assert.Equal(t, 3328, res.Hits[0].ID)
	assert.Equal(t, "The Witcher 3: Wild Hunt", res.Hits[0].Name)
	assert.Equal(t, 2015, res.Hits[0].Year)
}

func TestGameIndex_SearchFuzzy(t *testing.T) {
	index := setupTestIndex(t)

	params := DefaultSearchParams()
	params.Query = "portl"
	res, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Contains(t, hitIDs(res), 4200)
}

func TestGameIndex_FilterAndFacets(t *testing.T) {
	index := setupTestIndex(t)

	params := DefaultSearchParams()
	params.Genres = []string{"adventure"}
	params.SortBy = SortRating
	res, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, uint64(2), res.Total)
	assert.Equal(t, []int{3498, 5286}, hitIDs(res))

	genres := map[string]int{}
	for _, f := range res.Facets.Genres {
		genres[f.Value] = f.Count
	}
	assert.Equal(t, map[string]int{"action": 2, "adventure": 2}, genres)

	platforms := map[string]int{}
	for _, f := range res.Facets.Platforms {
		platforms[f.Value] = f.Count
	}
	assert.Equal(t, map[string]int{"pc": 1, "playstation-5": 1, "playstation-4": 1}, platforms)
}

func TestGameIndex_YearAndRatingRange(t *testing.T) {
	index := setupTestIndex(t)

	params := DefaultSearchParams()
	params.MinYear = 2013
	params.MaxYear = 2013
	params.SortBy = SortRating
	res, err := index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, []int{3498, 5286}, hitIDs(res))

	params = DefaultSearchParams()
	params.MinRating = 4.6
	params.SortBy = SortRating
	res, err = index.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, []int{3328, 4200}, hitIDs(res))
}

func TestGameIndex_MemoryAndRebuild(t *testing.T) {
	index, err := NewGameIndex(Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	require.NoError(t, index.IndexItems(testItems()))
	require.NoError(t, index.Rebuild())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNewGameIndex_ReopensExisting(t *testing.T) {
	dir := t.TempDir()

	first, err := NewGameIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, first.IndexItems(testItems()))
	require.NoError(t, first.Close())

	second, err := NewGameIndex(Options{DataPath: dir})
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	count, err := second.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), count)
}
