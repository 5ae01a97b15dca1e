package rawg

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gamedash/gamedash-server/internal/catalog"
)

// ListItems returns one page of games matching the filters.
func (c *Client) ListItems(ctx context.Context, params catalog.ListParams) (*catalog.Page, error) {
	return c.listGames(ctx, "listItems", "", params)
}

// SearchItems returns one page of games matching a free-text query.
func (c *Client) SearchItems(ctx context.Context, search string, params catalog.ListParams) (*catalog.Page, error) {
	search = strings.TrimSpace(search)
	if search == "" {
		return c.ListItems(ctx, params)
	}
	return c.listGames(ctx, "searchItems", search, params)
}

func (c *Client) listGames(ctx context.Context, op, search string, params catalog.ListParams) (*catalog.Page, error) {
	params = params.WithDefaults()

	query := url.Values{}
	query.Set("page", strconv.Itoa(params.Page))
	query.Set("page_size", strconv.Itoa(params.PageSize))
	if search != "" {
		query.Set("search", search)
	} else {
		query.Set("ordering", params.Ordering)
	}
	if params.Genres != "" {
		query.Set("genres", params.Genres)
	}
	if params.Platforms != "" {
		query.Set("platforms", params.Platforms)
	}
	if params.Dates != "" {
		query.Set("dates", params.Dates)
	}

	body, err := c.doRequest(ctx, op, "/games", query)
	if err != nil {
		return nil, wrapError(op, 0, err)
	}

	var resp listResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError(op, 0, fmt.Errorf("%w: %w", ErrMalformed, err))
	}

	page := &catalog.Page{
		Items:   make([]catalog.Item, 0, len(resp.Results)),
		Count:   resp.Count,
		HasNext: resp.Next != nil && *resp.Next != "",
	}
	for i := range resp.Results {
		page.Items = append(page.Items, resp.Results[i].toItem())
	}
	return page, nil
}

// GetItemDetail returns the full record for one game, screenshots included.
// A screenshot failure leaves the gallery empty rather than failing the detail.
func (c *Client) GetItemDetail(ctx context.Context, id int) (*catalog.Detail, error) {
	if id <= 0 {
		return nil, wrapError("getItemDetail", id, ErrInvalidID)
	}

	body, err := c.doRequest(ctx, "getItemDetail", "/games/"+strconv.Itoa(id), nil)
	if err != nil {
		return nil, wrapError("getItemDetail", id, err)
	}

	var raw rawDetail
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, wrapError("getItemDetail", id, fmt.Errorf("%w: %w", ErrMalformed, err))
	}
	detail := raw.toDetail()

	shots, err := c.Screenshots(ctx, id)
	if err != nil {
		c.logger.Warn("screenshots unavailable", "game_id", id, "error", err)
	} else {
		detail.Screenshots = shots
	}
	return detail, nil
}

// Screenshots returns the screenshot gallery of a game.
func (c *Client) Screenshots(ctx context.Context, id int) ([]catalog.Screenshot, error) {
	if id <= 0 {
		return nil, wrapError("screenshots", id, ErrInvalidID)
	}

	body, err := c.doRequest(ctx, "screenshots", "/games/"+strconv.Itoa(id)+"/screenshots", nil)
	if err != nil {
		return nil, wrapError("screenshots", id, err)
	}

	var resp screenshotResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("screenshots", id, fmt.Errorf("%w: %w", ErrMalformed, err))
	}
	if resp.Results == nil {
		return []catalog.Screenshot{}, nil
	}
	return resp.Results, nil
}
