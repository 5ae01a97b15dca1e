// Package catalog defines the video-game catalog types shared by the data source,
// the aggregation pipeline and the HTTP API.
package catalog

import (
	"strings"
	"time"
)

// Item is one catalog entry as returned by a listing or search.
// Items are never mutated after the data source builds them.
type Item struct {
	ID              int      `json:"id"`
	Slug            string   `json:"slug,omitempty"`
	Name            string   `json:"name"`
	Released        string   `json:"released,omitempty"` // ISO date, may be empty or partial
	Rating          *float64 `json:"rating,omitempty"`   // 0.0 to 5.0
	Metacritic      *int     `json:"metacritic,omitempty"`
	BackgroundImage string   `json:"background_image,omitempty"`
	Platforms       []string `json:"platforms"`
	Genres          []string `json:"genres"`
	Tags            []string `json:"tags"`
}

// ReleaseYear parses the year from Released. It accepts full dates and bare years.
func (i Item) ReleaseYear() (int, bool) {
	s := strings.TrimSpace(i.Released)
	if s == "" {
		return 0, false
	}
	for _, layout := range []string{"2006-01-02", "2006-01", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Year(), true
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Year(), true
	}
	return 0, false
}

// Screenshot is a single gallery image.
type Screenshot struct {
	ID     int    `json:"id"`
	Image  string `json:"image"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Detail is an Item with the extended fields of the detail endpoint.
type Detail struct {
	Item
	Description       string       `json:"description,omitempty"` // HTML
	DescriptionRaw    string       `json:"description_raw,omitempty"`
	Developers        []string     `json:"developers"`
	Publishers        []string     `json:"publishers"`
	Website           string       `json:"website,omitempty"`
	RedditURL         string       `json:"reddit_url,omitempty"`
	MetacriticURL     string       `json:"metacritic_url,omitempty"`
	ESRBRating        string       `json:"esrb_rating,omitempty"`
	RatingsCount      int          `json:"ratings_count"`
	Added             int          `json:"added"`
	Playtime          int          `json:"playtime"`
	AchievementsCount int          `json:"achievements_count"`
	Screenshots       []Screenshot `json:"screenshots"`
}

// Page is one page of a listing.
type Page struct {
	Items   []Item `json:"items"`
	Count   int    `json:"count"`    // total matches reported by the source
	HasNext bool   `json:"has_next"` // a following page exists
}

// Genre is a genre known to the data source.
type Genre struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	GamesCount int    `json:"games_count"`
}

// Platform is a platform known to the data source.
type Platform struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	GamesCount int    `json:"games_count"`
}

// Orderings accepted by listings.
var Orderings = []string{"-rating", "-released", "released", "-added", "name", "-name", "-metacritic"}

// Defaults for listings.
const (
	DefaultOrdering = "-rating"
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// ListParams filters and pages a listing.
type ListParams struct {
	Genres    string `json:"genres,omitempty" validate:"omitempty,idlist"`
	Platforms string `json:"platforms,omitempty" validate:"omitempty,idlist"`
	Ordering  string `json:"ordering,omitempty" validate:"omitempty,oneof=-rating -released released -added name -name -metacritic"`
	Dates     string `json:"dates,omitempty" validate:"omitempty,daterange"`
	Page      int    `json:"page,omitempty" validate:"omitempty,min=1"`
	PageSize  int    `json:"page_size,omitempty" validate:"omitempty,min=1,max=200"`
}

// WithDefaults fills unset paging and ordering.
func (p ListParams) WithDefaults() ListParams {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if p.Ordering == "" {
		p.Ordering = DefaultOrdering
	}
	return p
}
