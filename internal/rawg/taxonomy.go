package rawg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gamedash/gamedash-server/internal/catalog"
)

const (
	taxonomyPageSize = 40
	// The genre list fits in one page; platforms need two.
	maxTaxonomyPages = 5
)

// ListGenres returns all genres in source order.
func (c *Client) ListGenres(ctx context.Context) ([]catalog.Genre, error) {
	raw, err := c.listTaxonomy(ctx, "listGenres", "/genres")
	if err != nil {
		return nil, err
	}
	genres := make([]catalog.Genre, 0, len(raw))
	for _, r := range raw {
		genres = append(genres, catalog.Genre{ID: r.ID, Name: r.Name, Slug: r.Slug, GamesCount: r.GamesCount})
	}
	return genres, nil
}

// ListPlatforms returns all platforms in source order.
func (c *Client) ListPlatforms(ctx context.Context) ([]catalog.Platform, error) {
	raw, err := c.listTaxonomy(ctx, "listPlatforms", "/platforms")
	if err != nil {
		return nil, err
	}
	platforms := make([]catalog.Platform, 0, len(raw))
	for _, r := range raw {
		platforms = append(platforms, catalog.Platform{ID: r.ID, Name: r.Name, Slug: r.Slug, GamesCount: r.GamesCount})
	}
	return platforms, nil
}

// listTaxonomy follows pagination until the source reports no next page.
func (c *Client) listTaxonomy(ctx context.Context, op, path string) ([]rawNamedID, error) {
	var all []rawNamedID
	for page := 1; page <= maxTaxonomyPages; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("page_size", strconv.Itoa(taxonomyPageSize))

		body, err := c.doRequest(ctx, op, path, query)
		if err != nil {
			return nil, wrapError(op, 0, err)
		}

		var resp taxonomyResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, wrapError(op, 0, fmt.Errorf("%w: %w", ErrMalformed, err))
		}
		all = append(all, resp.Results...)

		if resp.Next == nil || *resp.Next == "" {
			break
		}
	}
	return all, nil
}
