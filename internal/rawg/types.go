package rawg

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gamedash/gamedash-server/internal/catalog"
)

// Raw API response types.

type listResponse struct {
	Count   int       `json:"count"`
	Next    *string   `json:"next"`
	Results []rawGame `json:"results"`
}

type taxonomyResponse struct {
	Count   int          `json:"count"`
	Next    *string      `json:"next"`
	Results []rawNamedID `json:"results"`
}

type screenshotResponse struct {
	Results []catalog.Screenshot `json:"results"`
}

type rawNamedID struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	GamesCount int    `json:"games_count"`
}

type rawPlatformEntry struct {
	Platform rawNamedID `json:"platform"`
}

type rawGame struct {
	ID              int                `json:"id"`
	Slug            string             `json:"slug"`
	Name            string             `json:"name"`
	Released        *string            `json:"released"`
	Rating          *float64           `json:"rating"`
	Metacritic      *int               `json:"metacritic"`
	BackgroundImage *string            `json:"background_image"`
	Platforms       []rawPlatformEntry `json:"platforms"`
	Genres          []rawNamedID       `json:"genres"`
	Tags            []rawTag           `json:"tags"`
}

type rawDetail struct {
	rawGame
	Description       string       `json:"description"`
	DescriptionRaw    string       `json:"description_raw"`
	Developers        []rawNamedID `json:"developers"`
	Publishers        []rawNamedID `json:"publishers"`
	Website           string       `json:"website"`
	RedditURL         string       `json:"reddit_url"`
	MetacriticURL     string       `json:"metacritic_url"`
	ESRBRating        *rawNamedID  `json:"esrb_rating"`
	RatingsCount      int          `json:"ratings_count"`
	Added             int          `json:"added"`
	Playtime          int          `json:"playtime"`
	AchievementsCount int          `json:"achievements_count"`
}

// rawTag accepts either a bare string or a {"name": ...} record.
type rawTag struct {
	Name string
}

func (t *rawTag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &t.Name)
	}
	var rec struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	t.Name = rec.Name
	return nil
}

func (g *rawGame) toItem() catalog.Item {
	item := catalog.Item{
		ID:         g.ID,
		Slug:       g.Slug,
		Name:       g.Name,
		Rating:     g.Rating,
		Metacritic: g.Metacritic,
		Platforms:  make([]string, 0, len(g.Platforms)),
		Genres:     names(g.Genres),
		Tags:       make([]string, 0, len(g.Tags)),
	}
	if g.Released != nil {
		item.Released = *g.Released
	}
	if g.BackgroundImage != nil {
		item.BackgroundImage = *g.BackgroundImage
	}
	for _, p := range g.Platforms {
		if name := strings.TrimSpace(p.Platform.Name); name != "" {
			item.Platforms = append(item.Platforms, name)
		}
	}
	for _, tag := range g.Tags {
		if tag.Name != "" {
			item.Tags = append(item.Tags, tag.Name)
		}
	}
	return item
}

func (d *rawDetail) toDetail() *catalog.Detail {
	detail := &catalog.Detail{
		Item:              d.toItem(),
		Description:       d.Description,
		DescriptionRaw:    d.DescriptionRaw,
		Developers:        names(d.Developers),
		Publishers:        names(d.Publishers),
		Website:           d.Website,
		RedditURL:         d.RedditURL,
		MetacriticURL:     d.MetacriticURL,
		RatingsCount:      d.RatingsCount,
		Added:             d.Added,
		Playtime:          d.Playtime,
		AchievementsCount: d.AchievementsCount,
		Screenshots:       []catalog.Screenshot{},
	}
	if d.ESRBRating != nil {
		detail.ESRBRating = d.ESRBRating.Name
	}
	return detail
}

func names(raw []rawNamedID) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if r.Name != "" {
			out = append(out, r.Name)
		}
	}
	return out
}
