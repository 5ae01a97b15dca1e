// Package dashboard aggregates catalog batches into chart-ready summaries.
//
// A dashboard run is made of independent passes (genre, platform, year,
// mode and rating). Each pass reports its own outcome, so a failed fetch in
// one pass still leaves the others' results in the Report.
package dashboard

import (
	"errors"
	"time"

	"github.com/gamedash/gamedash-server/internal/catalog"
	domainerrors "github.com/gamedash/gamedash-server/internal/errors"
)

// Pass names.
const (
	PassGenre    = "genre"
	PassPlatform = "platform"
	PassYear     = "year"
	PassMode     = "mode"
	PassRating   = "rating"
)

// Status is the outcome of a pass.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// PassResult is either a successful pass carrying Data or a failed one carrying Error.
type PassResult[T any] struct {
	Status   Status   `json:"status" enum:"ok,failed"`
	Data     T        `json:"data,omitempty"`
	Error    string   `json:"error,omitempty"`
	Code     string   `json:"code,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// OK reports whether the pass succeeded.
func (r PassResult[T]) OK() bool {
	return r.Status == StatusOK
}

func succeeded[T any](data T, warnings ...string) PassResult[T] {
	return PassResult[T]{Status: StatusOK, Data: data, Warnings: warnings}
}

func failed[T any](err error) PassResult[T] {
	return PassResult[T]{Status: StatusFailed, Error: err.Error(), Code: string(errorCode(err))}
}

func errorCode(err error) domainerrors.Code {
	var de *domainerrors.Error
	if errors.As(err, &de) {
		return de.Code
	}
	return domainerrors.CodeSourceUnavailable
}

// PassFailure names a pass that did not produce data.
type PassFailure struct {
	Pass   string `json:"pass"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// GenreSummary is one genre with its total match count and a few sample items.
// Count is the total reported by the source, not len(Games).
type GenreSummary struct {
	ID    int            `json:"id"`
	Name  string         `json:"name"`
	Count int            `json:"count"`
	Games []catalog.Item `json:"games"`
}

// PlatformSummary counts platform occurrences across a batch.
type PlatformSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// YearCount is one bucket of the release-year histogram.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// RatingBucket is one bucket of the rating distribution.
type RatingBucket struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

// Report is the outcome of one dashboard run.
type Report struct {
	ID          string                        `json:"id,omitempty"`
	GeneratedAt time.Time                     `json:"generated_at"`
	Genres      PassResult[[]GenreSummary]    `json:"genres"`
	Platforms   PassResult[[]PlatformSummary] `json:"platforms"`
	Years       PassResult[[]YearCount]       `json:"years"`
	Modes       PassResult[ModeSummary]       `json:"modes"`
	Ratings     PassResult[[]RatingBucket]    `json:"ratings"`
	Failures    []PassFailure                 `json:"failures"`
}

// Partial reports whether at least one pass failed.
func (r *Report) Partial() bool {
	return len(r.Failures) > 0
}

func (r *Report) collectFailures() {
	r.Failures = []PassFailure{}
	add := func(pass string, status Status, code, reason string) {
		if status == StatusFailed {
			r.Failures = append(r.Failures, PassFailure{Pass: pass, Code: code, Reason: reason})
		}
	}
	add(PassGenre, r.Genres.Status, r.Genres.Code, r.Genres.Error)
	add(PassPlatform, r.Platforms.Status, r.Platforms.Code, r.Platforms.Error)
	add(PassYear, r.Years.Status, r.Years.Code, r.Years.Error)
	add(PassMode, r.Modes.Status, r.Modes.Code, r.Modes.Error)
	add(PassRating, r.Ratings.Status, r.Ratings.Code, r.Ratings.Error)
}
