package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders.
const (
	SortRelevance = "relevance"
	SortRating    = "rating"
	SortYear      = "year"
	SortName      = "name"
)

const facetSize = 20

// SearchParams configures a local search.
type SearchParams struct {
	Query string

	// Filters. Genres and platforms are slugs and OR within a field.
	Genres    []string
	Platforms []string
	MinYear   int
	MaxYear   int
	MinRating float64

	Limit  int
	Offset int

	SortBy string // relevance, rating, year, name

	IncludeFacets bool
	Highlight     bool
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		SortBy:        SortRelevance,
		IncludeFacets: true,
		Highlight:     true,
	}
}

// SearchResult holds one page of hits.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Facets SearchFacets `json:"facets"`
}

// SearchHit is one matching item.
type SearchHit struct {
	ID         int               `json:"id"`
	Slug       string            `json:"slug,omitempty"`
	Name       string            `json:"name"`
	Score      float64           `json:"score"`
	Year       int               `json:"year,omitempty"`
	Rating     float64           `json:"rating,omitempty"`
	Genres     []string          `json:"genres,omitempty"`
	Platforms  []string          `json:"platforms,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// SearchFacets holds facet counts for the matching set.
type SearchFacets struct {
	Genres    []FacetCount `json:"genres,omitempty"`
	Platforms []FacetCount `json:"platforms,omitempty"`
}

// FacetCount is a facet value and the number of hits carrying it.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a query against the local index.
func (s *GameIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)

	if params.IncludeFacets {
		req.AddFacet("genres", bleve.NewFacetRequest("genres", facetSize))
		req.AddFacet("platforms", bleve.NewFacetRequest("platforms", facetSize))
	}
	if params.Highlight && params.Query != "" {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField("name")
	}
	req.Fields = []string{"slug", "name", "year", "rating", "genres", "platforms"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		h := SearchHit{Score: hit.Score}
		h.ID, _ = strconv.Atoi(hit.ID)
		if v, ok := hit.Fields["slug"].(string); ok {
			h.Slug = v
		}
		if v, ok := hit.Fields["name"].(string); ok {
			h.Name = v
		}
		if v, ok := hit.Fields["year"].(float64); ok {
			h.Year = int(v)
		}
		if v, ok := hit.Fields["rating"].(float64); ok {
			h.Rating = v
		}
		h.Genres = stringList(hit.Fields["genres"])
		h.Platforms = stringList(hit.Fields["platforms"])

		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	if params.IncludeFacets {
		result.Facets = extractFacets(res)
	}
	return result, nil
}

// buildSearchQuery combines the text query and the filters with AND.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		nameMatch := bleve.NewMatchQuery(q)
		nameMatch.SetField("name")
		nameMatch.SetBoost(3.0)

		// Typo tolerance.
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("name")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{nameMatch, fuzzy}
		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("name")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if q := anyTerm("genres", params.Genres); q != nil {
		queries = append(queries, q)
	}
	if q := anyTerm("platforms", params.Platforms); q != nil {
		queries = append(queries, q)
	}

	if params.MinYear > 0 || params.MaxYear > 0 {
		lo := float64(params.MinYear)
		hi := float64(params.MaxYear)
		if params.MaxYear == 0 {
			hi = 3000
		}
		inclusive := true
		rq := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
		rq.SetField("year")
		queries = append(queries, rq)
	}

	if params.MinRating > 0 {
		lo := params.MinRating
		inclusive := true
		rq := bleve.NewNumericRangeInclusiveQuery(&lo, nil, &inclusive, nil)
		rq.SetField("rating")
		queries = append(queries, rq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

func anyTerm(field string, values []string) query.Query {
	if len(values) == 0 {
		return nil
	}
	qs := make([]query.Query, len(values))
	for i, v := range values {
		tq := bleve.NewTermQuery(v)
		tq.SetField(field)
		qs[i] = tq
	}
	return bleve.NewDisjunctionQuery(qs...)
}

func addSorting(req *bleve.SearchRequest, params SearchParams) {
	switch params.SortBy {
	case SortRating:
		req.SortBy([]string{"-rating", "-_score"})
	case SortYear:
		req.SortBy([]string{"-year", "-_score"})
	case SortName:
		req.SortBy([]string{"name", "_id"})
	default:
		req.SortBy([]string{"-_score", "_id"})
	}
}

func extractFacets(result *bleve.SearchResult) SearchFacets {
	var facets SearchFacets
	if f, ok := result.Facets["genres"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			facets.Genres = append(facets.Genres, FacetCount{Value: term.Term, Count: term.Count})
		}
	}
	if f, ok := result.Facets["platforms"]; ok && f.Terms != nil {
		for _, term := range f.Terms.Terms() {
			facets.Platforms = append(facets.Platforms, FacetCount{Value: term.Term, Count: term.Count})
		}
	}
	return facets
}

// stringList reads a stored multi-value field, which Bleve returns as a
// string for one value and []any for several.
func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
