package service

import (
	"context"
	"errors"

	domainerrors "github.com/gamedash/gamedash-server/internal/errors"
	"github.com/gamedash/gamedash-server/internal/rawg"
)

var errEmptyResponse = errors.New("source returned no data")

// mapSourceError converts data source failures into domain errors.
// Errors that already carry a domain code pass through unchanged.
func mapSourceError(op string, err error) error {
	if err == nil {
		return nil
	}

	var de *domainerrors.Error
	if errors.As(err, &de) {
		return err
	}

	switch {
	case errors.Is(err, rawg.ErrNotFound):
		return domainerrors.NotFound("item not found").WithCause(err)
	case errors.Is(err, rawg.ErrInvalidID), errors.Is(err, rawg.ErrBadRequest):
		return domainerrors.BadRequest("invalid request to catalog source").WithCause(err)
	case errors.Is(err, rawg.ErrRateLimited):
		return domainerrors.RateLimited("catalog source rate limit reached").WithCause(err)
	case errors.Is(err, context.Canceled):
		return err
	default:
		return domainerrors.SourceUnavailable(op, err)
	}
}
