package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamedash/gamedash-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchLocal",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/local",
		Summary:     "Search local index",
		Description: "Searches games already fetched from the catalog, with facets. Works while the catalog source is down.",
		Tags:        []string{"Search"},
	}, s.handleSearchLocal)
}

// SearchLocalInput contains parameters for searching the local index.
type SearchLocalInput struct {
	Q         string  `query:"q" maxLength:"200" doc:"Search query"`
	Genres    string  `query:"genres" doc:"Comma-separated genre slugs"`
	Platforms string  `query:"platforms" doc:"Comma-separated platform slugs"`
	MinYear   int     `query:"min_year" minimum:"0" doc:"Earliest release year"`
	MaxYear   int     `query:"max_year" minimum:"0" doc:"Latest release year"`
	MinRating float64 `query:"min_rating" minimum:"0" maximum:"5" doc:"Minimum rating"`
	Limit     int     `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Max results"`
	Offset    int     `query:"offset" minimum:"0" default:"0" doc:"Pagination offset"`
	Sort      string  `query:"sort" enum:"relevance,rating,year,name" default:"relevance" doc:"Sort order"`
}

// SearchLocalOutput wraps the search result for Huma.
type SearchLocalOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleSearchLocal(ctx context.Context, input *SearchLocalInput) (*SearchLocalOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Q
	params.Genres = splitList(input.Genres)
	params.Platforms = splitList(input.Platforms)
	params.MinYear = input.MinYear
	params.MaxYear = input.MaxYear
	params.MinRating = input.MinRating
	params.Limit = input.Limit
	params.Offset = input.Offset
	if input.Sort != "" {
		params.SortBy = input.Sort
	}

	if params.MinYear > 0 && params.MaxYear > 0 && params.MinYear > params.MaxYear {
		return nil, huma.Error422UnprocessableEntity("min_year must not be after max_year")
	}

	result, err := s.services.Catalog.SearchLocal(ctx, params)
	if err != nil {
		return nil, err
	}
	return &SearchLocalOutput{Body: result}, nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
