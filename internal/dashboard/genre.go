package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/gamedash/gamedash-server/internal/catalog"
)

// GenreFailurePolicy decides what a failed per-genre fetch does to the genre pass.
type GenreFailurePolicy string

const (
	// AbortOnGenreFailure fails the whole pass; no partial genre list is returned.
	AbortOnGenreFailure GenreFailurePolicy = "abort"
	// SkipFailedGenres drops failed genres and reports them as warnings.
	SkipFailedGenres GenreFailurePolicy = "skip"
)

const (
	genresConsidered = 10
	genreSampleSize  = 5
)

// genrePass summarizes the first ten genres, fetching a small sample of each.
// Fetches run with bounded concurrency; the output keeps genre rank order and
// is truncated to TopGenres.
func (p *Pipeline) genrePass(ctx context.Context) ([]GenreSummary, []string, error) {
	genres, err := fetch(ctx, p.opts.FetchTimeout, "listGenres", p.src.ListGenres)
	if err != nil {
		return nil, nil, err
	}
	if len(genres) > genresConsidered {
		genres = genres[:genresConsidered]
	}

	slots := make([]*GenreSummary, len(genres))
	failures := make([]error, len(genres))

	var (
		aborted  atomic.Bool
		firstErr error
		once     sync.Once
		g        errgroup.Group
	)
	g.SetLimit(p.opts.GenreConcurrency)

	for i, genre := range genres {
		g.Go(func() error {
			// After an abort, queued genres are not fetched. Fetches already in
			// flight finish and are discarded.
			if aborted.Load() {
				return nil
			}
			params := catalog.ListParams{Genres: strconv.Itoa(genre.ID), PageSize: genreSampleSize}
			page, err := fetch(ctx, p.opts.FetchTimeout, "listItems", func(ctx context.Context) (*catalog.Page, error) {
				return p.src.ListItems(ctx, params)
			})
			if err != nil {
				err = fmt.Errorf("genre %q: %w", genre.Name, err)
				if p.opts.GenreFailurePolicy == SkipFailedGenres {
					failures[i] = err
					return nil
				}
				aborted.Store(true)
				once.Do(func() { firstErr = err })
				return nil
			}
			summary := &GenreSummary{ID: genre.ID, Name: genre.Name, Games: []catalog.Item{}}
			if page != nil {
				summary.Count = page.Count
				if page.Items != nil {
					summary.Games = page.Items
				}
			}
			slots[i] = summary
			return nil
		})
	}
	_ = g.Wait()

	if firstErr != nil {
		return nil, nil, firstErr
	}

	out := make([]GenreSummary, 0, len(slots))
	var warnings []string
	for i, s := range slots {
		if s == nil {
			if failures[i] != nil {
				warnings = append(warnings, failures[i].Error())
			}
			continue
		}
		out = append(out, *s)
	}
	if len(out) > TopGenres {
		out = out[:TopGenres]
	}
	return out, warnings, nil
}
