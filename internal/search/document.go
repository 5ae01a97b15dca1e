// Package search keeps a local Bleve index of every catalog item the server
// has fetched, so the catalog can be searched and faceted without another
// upstream request.
package search

import (
	"strconv"
	"time"

	"github.com/gamedash/gamedash-server/internal/catalog"
)

// GameDocument is the indexed form of a catalog item.
type GameDocument struct {
	ID        string   `json:"id"`
	Slug      string   `json:"slug"`
	Name      string   `json:"name"`
	Genres    []string `json:"genres,omitempty"`    // slugs, for facets
	Platforms []string `json:"platforms,omitempty"` // slugs, for facets
	Tags      []string `json:"tags,omitempty"`

	Year       int     `json:"year,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	Metacritic int     `json:"metacritic,omitempty"`

	IndexedAt int64 `json:"indexed_at"` // Unix millis
}

// NewGameDocument builds the document for item.
func NewGameDocument(item catalog.Item, now time.Time) *GameDocument {
	doc := &GameDocument{
		ID:        strconv.Itoa(item.ID),
		Slug:      item.Slug,
		Name:      item.Name,
		Genres:    slugs(item.Genres),
		Platforms: slugs(item.Platforms),
		Tags:      slugs(item.Tags),
		IndexedAt: now.UnixMilli(),
	}
	if year, ok := item.ReleaseYear(); ok {
		doc.Year = year
	}
	if item.Rating != nil {
		doc.Rating = *item.Rating
	}
	if item.Metacritic != nil {
		doc.Metacritic = *item.Metacritic
	}
	return doc
}

// ToMap converts the document to a map with the field names of the index
// mapping. Empty optional fields are left out.
func (d *GameDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"slug":       d.Slug,
		"name":       d.Name,
		"indexed_at": d.IndexedAt,
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if len(d.Platforms) > 0 {
		m["platforms"] = d.Platforms
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Year > 0 {
		m["year"] = d.Year
	}
	if d.Rating > 0 {
		m["rating"] = d.Rating
	}
	if d.Metacritic > 0 {
		m["metacritic"] = d.Metacritic
	}
	return m
}

func slugs(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if s := catalog.Slugify(n); s != "" {
			out = append(out, s)
		}
	}
	return out
}
