package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gamedash/gamedash-server/internal/catalog"
	domainerrors "github.com/gamedash/gamedash-server/internal/errors"
	"github.com/gamedash/gamedash-server/internal/metrics"
)

const (
	overviewBatchSize = 100
	modeBatchSize     = 200

	defaultFetchTimeout     = 10 * time.Second
	defaultGenreConcurrency = 4
)

// Source is the slice of the catalog data source the pipeline reads.
type Source interface {
	ListItems(ctx context.Context, params catalog.ListParams) (*catalog.Page, error)
	ListGenres(ctx context.Context) ([]catalog.Genre, error)
}

// PassEvent describes a finished pass.
type PassEvent struct {
	Pass       string `json:"pass"`
	Status     Status `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Options tunes a Pipeline. Zero values fall back to defaults.
type Options struct {
	GenreConcurrency   int
	GenreFailurePolicy GenreFailurePolicy
	Modes              ModeOptions
	FetchTimeout       time.Duration
	Now                func() time.Time
	// OnPass is called once per pass as soon as it finishes, from the pass goroutine.
	OnPass func(PassEvent)
}

// Pipeline runs the dashboard passes against a Source.
type Pipeline struct {
	src    Source
	opts   Options
	logger *slog.Logger
}

// New creates a Pipeline.
func New(src Source, opts Options, logger *slog.Logger) *Pipeline {
	if opts.GenreConcurrency <= 0 {
		opts.GenreConcurrency = defaultGenreConcurrency
	}
	if opts.GenreFailurePolicy == "" {
		opts.GenreFailurePolicy = AbortOnGenreFailure
	}
	if opts.Modes.Policy == "" {
		opts.Modes.Policy = SubstituteExample
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Pipeline{src: src, opts: opts, logger: logger}
}

// Run executes every pass and returns whatever succeeded together with the
// failures. It never returns an error of its own.
//
// Cancellation of ctx does not abort upstream fetches: they run until they
// complete or hit the fetch timeout, and the caller may discard the Report.
func (p *Pipeline) Run(ctx context.Context) *Report {
	ctx = context.WithoutCancel(ctx)
	now := p.opts.Now()
	report := &Report{GeneratedAt: now.UTC()}

	// Platform, year and rating passes share one batch.
	overview := sync.OnceValues(func() ([]catalog.Item, error) {
		return p.fetchBatch(ctx, overviewBatchSize)
	})

	var g errgroup.Group
	g.Go(func() error {
		report.Genres = track(p, PassGenre, func() ([]GenreSummary, []string, error) {
			return p.genrePass(ctx)
		})
		return nil
	})
	g.Go(func() error {
		report.Platforms = track(p, PassPlatform, func() ([]PlatformSummary, []string, error) {
			items, err := overview()
			if err != nil {
				return nil, nil, err
			}
			return CountPlatforms(items, TopPlatforms), nil, nil
		})
		return nil
	})
	g.Go(func() error {
		report.Years = track(p, PassYear, func() ([]YearCount, []string, error) {
			items, err := overview()
			if err != nil {
				return nil, nil, err
			}
			return YearHistogram(items, now.Year()), nil, nil
		})
		return nil
	})
	g.Go(func() error {
		report.Ratings = track(p, PassRating, func() ([]RatingBucket, []string, error) {
			items, err := overview()
			if err != nil {
				return nil, nil, err
			}
			return RatingDistribution(items), nil, nil
		})
		return nil
	})
	g.Go(func() error {
		report.Modes = track(p, PassMode, func() (ModeSummary, []string, error) {
			items, err := p.fetchBatch(ctx, modeBatchSize)
			if err != nil {
				return ModeSummary{}, nil, err
			}
			summary := SummarizeModes(ClassifyModes(items), p.opts.Modes)
			if summary.Analyzed == 0 {
				metrics.RecordDegenerate(summary.Policy)
				p.logger.Info("mode pass found no classifiable items", "policy", summary.Policy, "batch", len(items))
			}
			return summary, nil, nil
		})
		return nil
	})
	_ = g.Wait()

	report.collectFailures()
	return report
}

func (p *Pipeline) fetchBatch(ctx context.Context, size int) ([]catalog.Item, error) {
	page, err := fetch(ctx, p.opts.FetchTimeout, "listItems", func(ctx context.Context) (*catalog.Page, error) {
		return p.src.ListItems(ctx, catalog.ListParams{PageSize: size, Ordering: catalog.DefaultOrdering})
	})
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, nil
	}
	return page.Items, nil
}

// track runs one pass, converting its outcome into a PassResult and reporting it.
func track[T any](p *Pipeline, pass string, fn func() (T, []string, error)) PassResult[T] {
	start := time.Now()
	data, warnings, err := fn()
	elapsed := time.Since(start)

	var result PassResult[T]
	event := PassEvent{Pass: pass, DurationMS: elapsed.Milliseconds()}
	if err != nil {
		result = failed[T](err)
		event.Error = err.Error()
		p.logger.Warn("dashboard pass failed", "pass", pass, "error", err, "duration", elapsed)
	} else {
		result = succeeded(data, warnings...)
		for _, w := range warnings {
			p.logger.Warn("dashboard pass degraded", "pass", pass, "warning", w)
		}
		p.logger.Debug("dashboard pass finished", "pass", pass, "duration", elapsed)
	}
	event.Status = result.Status

	metrics.RecordPass(pass, string(result.Status), elapsed.Seconds())
	if p.opts.OnPass != nil {
		p.opts.OnPass(event)
	}
	return result
}

// fetch calls the source with a per-fetch timeout and normalizes failures to
// SourceUnavailable domain errors.
func fetch[T any](ctx context.Context, timeout time.Duration, op string, call func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := call(ctx)
	if err != nil {
		var zero T
		var de *domainerrors.Error
		if errors.As(err, &de) {
			return zero, err
		}
		return zero, domainerrors.SourceUnavailable(op, err)
	}
	return v, nil
}
