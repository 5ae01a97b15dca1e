package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamedash/gamedash-server/internal/catalog"
	domainerrors "github.com/gamedash/gamedash-server/internal/errors"
	"github.com/gamedash/gamedash-server/internal/logger"
)

// fakeSource serves canned pages keyed by genre ID, or "batch:<size>" for
// unfiltered lists.
type fakeSource struct {
	genres    []catalog.Genre
	genresErr error
	pages     map[string]*catalog.Page
	errs      map[string]error
	delay     func(key string) time.Duration
	block     bool

	mu    sync.Mutex
	calls map[string]int
}

func newFakeSource(genreCount int) *fakeSource {
	f := &fakeSource{
		pages: map[string]*catalog.Page{},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
	for i := 1; i <= genreCount; i++ {
		f.genres = append(f.genres, catalog.Genre{ID: i, Name: fmt.Sprintf("Genre %d", i)})
		f.pages[strconv.Itoa(i)] = &catalog.Page{
			Count: 1000 - i,
			Items: []catalog.Item{{ID: i * 10, Name: fmt.Sprintf("Game %d", i)}},
		}
	}
	f.pages["batch:100"] = &catalog.Page{Items: []catalog.Item{
		{ID: 1, Platforms: []string{"PS4", "PC"}, Released: "2024-02-01", Rating: rating(4.5)},
		{ID: 2, Platforms: []string{"PC"}, Released: "2020-06-15", Rating: rating(3.2)},
	}}
	f.pages["batch:200"] = &catalog.Page{Items: []catalog.Item{
		{ID: 1, Tags: []string{"Singleplayer"}},
		{ID: 2, Tags: []string{"Multiplayer"}},
		{ID: 3},
	}}
	return f
}

func (f *fakeSource) ListItems(ctx context.Context, params catalog.ListParams) (*catalog.Page, error) {
	key := params.Genres
	if key == "" {
		key = "batch:" + strconv.Itoa(params.PageSize)
	}

	f.mu.Lock()
	f.calls[key]++
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.delay != nil {
		select {
		case <-time.After(f.delay(key)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.pages[key], nil
}

func (f *fakeSource) ListGenres(ctx context.Context) ([]catalog.Genre, error) {
	if f.genresErr != nil {
		return nil, f.genresErr
	}
	return f.genres, nil
}

func (f *fakeSource) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func fixedNow() time.Time {
	return time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
}

func newTestPipeline(src Source, opts Options) *Pipeline {
	if opts.Now == nil {
		opts.Now = fixedNow
	}
	return New(src, opts, logger.Discard().Logger)
}

func TestRun_AllPassesSucceed(t *testing.T) {
	src := newFakeSource(12)

	report := newTestPipeline(src, Options{}).Run(context.Background())

	assert.False(t, report.Partial())
	assert.Empty(t, report.Failures)
	assert.Equal(t, fixedNow(), report.GeneratedAt)

	require.True(t, report.Genres.OK())
	require.Len(t, report.Genres.Data, TopGenres)
	for i, g := range report.Genres.Data {
		assert.Equal(t, i+1, g.ID, "rank order is preserved")
		assert.Equal(t, 1000-(i+1), g.Count)
		assert.Len(t, g.Games, 1)
	}

	require.True(t, report.Platforms.OK())
	assert.Equal(t, []PlatformSummary{{Name: "PC", Count: 2}, {Name: "PS4", Count: 1}}, report.Platforms.Data)

	require.True(t, report.Years.OK())
	require.Len(t, report.Years.Data, 16)
	assert.Equal(t, 2010, report.Years.Data[0].Year)
	assert.Equal(t, 1, report.Years.Data[14].Count) // 2024
	assert.Equal(t, 1, report.Years.Data[10].Count) // 2020

	require.True(t, report.Ratings.OK())
	assert.Equal(t, 1, report.Ratings.Data[3].Count)
	assert.Equal(t, 1, report.Ratings.Data[4].Count)

	require.True(t, report.Modes.OK())
	assert.Equal(t, ModeCounts{SingleplayerOnly: 1, MultiplayerOnly: 1, Unclassified: 1}, report.Modes.Data.Counts)
	assert.False(t, report.Modes.Data.Substituted)
}

func TestRun_OverviewBatchFetchedOnce(t *testing.T) {
	src := newFakeSource(3)

	newTestPipeline(src, Options{}).Run(context.Background())

	assert.Equal(t, 1, src.callCount("batch:100"))
	assert.Equal(t, 1, src.callCount("batch:200"))
}

func TestRun_OnlyFirstTenGenresFetched(t *testing.T) {
	src := newFakeSource(15)

	newTestPipeline(src, Options{}).Run(context.Background())

	for i := 1; i <= 10; i++ {
		assert.Equal(t, 1, src.callCount(strconv.Itoa(i)), "genre %d", i)
	}
	for i := 11; i <= 15; i++ {
		assert.Zero(t, src.callCount(strconv.Itoa(i)), "genre %d", i)
	}
}

func TestRun_GenreOrderSurvivesConcurrency(t *testing.T) {
	src := newFakeSource(8)
	// Earlier genres finish last.
	src.delay = func(key string) time.Duration {
		id, err := strconv.Atoi(key)
		if err != nil {
			return 0
		}
		return time.Duration(10-id) * 5 * time.Millisecond
	}

	report := newTestPipeline(src, Options{GenreConcurrency: 8}).Run(context.Background())

	require.True(t, report.Genres.OK())
	var ids []int
	for _, g := range report.Genres.Data {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, ids)
}

func TestRun_GenreConcurrencyIsBounded(t *testing.T) {
	src := newFakeSource(10)
	src.delay = func(key string) time.Duration {
		if _, err := strconv.Atoi(key); err != nil {
			return 0
		}
		return 20 * time.Millisecond
	}
	src.pages["batch:100"] = nil
	src.pages["batch:200"] = nil

	genreOnly := &fakeGenreSource{fakeSource: src}

	report := newTestPipeline(genreOnly, Options{GenreConcurrency: 2}).Run(context.Background())

	require.True(t, report.Genres.OK())
	assert.LessOrEqual(t, genreOnly.peak.Load(), int32(2))
	assert.Len(t, report.Genres.Data, TopGenres)
}

// fakeGenreSource tracks in-flight counts for genre fetches only.
type fakeGenreSource struct {
	*fakeSource
	inflight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeGenreSource) ListItems(ctx context.Context, params catalog.ListParams) (*catalog.Page, error) {
	if params.Genres == "" {
		return f.fakeSource.ListItems(ctx, params)
	}
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		peak := f.peak.Load()
		if n <= peak || f.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	return f.fakeSource.ListItems(ctx, params)
}

func TestRun_GenreFailureAborts(t *testing.T) {
	src := newFakeSource(10)
	src.errs["4"] = errors.New("connection reset")

	report := newTestPipeline(src, Options{GenreFailurePolicy: AbortOnGenreFailure}).Run(context.Background())

	assert.False(t, report.Genres.OK())
	assert.Nil(t, report.Genres.Data)
	assert.Equal(t, string(domainerrors.CodeSourceUnavailable), report.Genres.Code)
	assert.Contains(t, report.Genres.Error, "Genre 4")

	require.Len(t, report.Failures, 1)
	assert.Equal(t, PassGenre, report.Failures[0].Pass)
	assert.True(t, report.Partial())

	// The other passes are unaffected.
	assert.True(t, report.Platforms.OK())
	assert.True(t, report.Years.OK())
	assert.True(t, report.Modes.OK())
	assert.True(t, report.Ratings.OK())
}

func TestRun_GenreFailureSkipped(t *testing.T) {
	src := newFakeSource(10)
	src.errs["2"] = errors.New("boom")

	report := newTestPipeline(src, Options{GenreFailurePolicy: SkipFailedGenres}).Run(context.Background())

	require.True(t, report.Genres.OK())
	assert.Empty(t, report.Failures)
	require.Len(t, report.Genres.Warnings, 1)
	assert.Contains(t, report.Genres.Warnings[0], "Genre 2")

	var ids []int
	for _, g := range report.Genres.Data {
		ids = append(ids, g.ID)
	}
	assert.Equal(t, []int{1, 3, 4, 5, 6, 7, 8, 9}, ids)
}

func TestRun_GenreListFailure(t *testing.T) {
	src := newFakeSource(0)
	src.genresErr = domainerrors.RateLimited("upstream rate limit exceeded")

	report := newTestPipeline(src, Options{}).Run(context.Background())

	assert.False(t, report.Genres.OK())
	assert.Equal(t, string(domainerrors.CodeRateLimited), report.Genres.Code)
	assert.True(t, report.Platforms.OK())
}

func TestRun_OverviewFailureIsolated(t *testing.T) {
	src := newFakeSource(3)
	src.errs["batch:100"] = errors.New("upstream 503")

	report := newTestPipeline(src, Options{}).Run(context.Background())

	assert.False(t, report.Platforms.OK())
	assert.False(t, report.Years.OK())
	assert.False(t, report.Ratings.OK())
	assert.True(t, report.Genres.OK())
	assert.True(t, report.Modes.OK())

	var passes []string
	for _, f := range report.Failures {
		passes = append(passes, f.Pass)
		assert.Equal(t, string(domainerrors.CodeSourceUnavailable), f.Code)
		assert.Contains(t, f.Reason, "upstream 503")
	}
	assert.Equal(t, []string{PassPlatform, PassYear, PassRating}, passes)
}

func TestRun_DegenerateModeBatch(t *testing.T) {
	src := newFakeSource(1)
	src.pages["batch:200"] = &catalog.Page{}

	t.Run("substitute example", func(t *testing.T) {
		report := newTestPipeline(src, Options{}).Run(context.Background())
		require.True(t, report.Modes.OK())
		assert.True(t, report.Modes.Data.Substituted)
		assert.Len(t, report.Modes.Data.Entries, 4)
	})

	t.Run("show empty", func(t *testing.T) {
		report := newTestPipeline(src, Options{Modes: ModeOptions{Policy: ShowEmpty}}).Run(context.Background())
		require.True(t, report.Modes.OK())
		assert.False(t, report.Modes.Data.Substituted)
		assert.Empty(t, report.Modes.Data.Entries)
	})
}

func TestRun_NilPagesYieldEmptyData(t *testing.T) {
	src := newFakeSource(2)
	src.pages["batch:100"] = nil
	src.pages["1"] = nil

	report := newTestPipeline(src, Options{}).Run(context.Background())

	require.True(t, report.Platforms.OK())
	assert.Empty(t, report.Platforms.Data)
	require.True(t, report.Genres.OK())
	require.Len(t, report.Genres.Data, 2)
	assert.NotNil(t, report.Genres.Data[0].Games)
	assert.Zero(t, report.Genres.Data[0].Count)
}

func TestRun_FetchTimeout(t *testing.T) {
	src := newFakeSource(2)
	src.block = true

	start := time.Now()
	report := newTestPipeline(src, Options{FetchTimeout: 30 * time.Millisecond}).Run(context.Background())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.False(t, report.Genres.OK())
	assert.False(t, report.Platforms.OK())
	assert.False(t, report.Modes.OK())
	assert.Contains(t, report.Platforms.Error, "deadline exceeded")
}

func TestRun_IgnoresCallerCancellation(t *testing.T) {
	src := newFakeSource(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := newTestPipeline(src, Options{}).Run(ctx)

	assert.False(t, report.Partial())
	assert.True(t, report.Genres.OK())
}

func TestRun_OnPassEvents(t *testing.T) {
	src := newFakeSource(3)
	src.errs["batch:200"] = errors.New("boom")

	var (
		mu     sync.Mutex
		events = map[string]PassEvent{}
	)
	opts := Options{OnPass: func(e PassEvent) {
		mu.Lock()
		defer mu.Unlock()
		events[e.Pass] = e
	}}

	newTestPipeline(src, opts).Run(context.Background())

	require.Len(t, events, 5)
	for _, pass := range []string{PassGenre, PassPlatform, PassYear, PassRating} {
		assert.Equal(t, StatusOK, events[pass].Status, pass)
		assert.Empty(t, events[pass].Error, pass)
	}
	assert.Equal(t, StatusFailed, events[PassMode].Status)
	assert.Contains(t, events[PassMode].Error, "boom")
}
