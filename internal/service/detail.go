package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gamedash/gamedash-server/internal/catalog"
	"github.com/gamedash/gamedash-server/internal/media"
	"github.com/gamedash/gamedash-server/internal/terms"
)

// GameDetail is a catalog detail prepared for display.
type GameDetail struct {
	catalog.Detail

	// DescriptionText is the translated plain-text description, capped at 1000 characters.
	DescriptionText     string             `json:"description_text"`
	DescriptionMarkdown string             `json:"description_markdown"`
	ReleasedDisplay     string             `json:"released_display"`
	RatingLabel         string             `json:"rating_label"`
	MetacriticBand      string             `json:"metacritic_band,omitempty"`
	GenresDisplay       []string           `json:"genres_display"`
	TagsDisplay         []string           `json:"tags_display"`
	PlayModes           terms.Flags        `json:"play_modes"`
	Placeholder         *media.Placeholder `json:"placeholder,omitempty"`
}

// PlaceholderSource computes image placeholders.
type PlaceholderSource interface {
	Get(ctx context.Context, url string) (*media.Placeholder, error)
}

// DetailService prepares item details for display.
type DetailService struct {
	catalog      *CatalogService
	translator   *terms.Translator
	placeholders PlaceholderSource
	logger       *slog.Logger
}

// NewDetailService creates a DetailService. placeholders may be nil.
func NewDetailService(c *CatalogService, t *terms.Translator, placeholders PlaceholderSource, logger *slog.Logger) *DetailService {
	return &DetailService{
		catalog:      c,
		translator:   t,
		placeholders: placeholders,
		logger:       logger,
	}
}

// Get returns the display detail of item id.
func (s *DetailService) Get(ctx context.Context, id int) (*GameDetail, error) {
	d, err := s.catalog.GetItemDetail(ctx, id)
	if err != nil {
		return nil, err
	}

	description := d.Description
	if description == "" {
		description = d.DescriptionRaw
	}

	out := &GameDetail{
		Detail:              *d,
		DescriptionText:     s.translator.ProcessDescription(description),
		DescriptionMarkdown: terms.DescriptionMarkdown(d.Description),
		ReleasedDisplay:     terms.FormatDateSpanish(d.Released),
		RatingLabel:         terms.RatingLabel(d.Rating),
		MetacriticBand:      terms.MetacriticBand(d.Metacritic),
		GenresDisplay:       s.translator.TranslateTerms(d.Genres),
		TagsDisplay:         s.translator.TranslateTerms(d.Tags),
		PlayModes:           terms.Classify(d.Tags),
	}
	if out.Screenshots == nil {
		out.Screenshots = []catalog.Screenshot{}
	}

	if s.placeholders != nil && d.BackgroundImage != "" {
		ph, err := s.placeholders.Get(ctx, d.BackgroundImage)
		switch {
		case err == nil:
			out.Placeholder = ph
		case errors.Is(err, context.Canceled):
			return nil, err
		default:
			s.logger.Warn("placeholder unavailable", "game_id", id, "error", err)
		}
	}

	return out, nil
}
