package api

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/gamedash/gamedash-server/internal/http/response"
)

// EnvelopeTransformer wraps every huma response body in the versioned
// envelope: {v, success, data} on success, {v, success, error, code,
// message, details} on failure.
func EnvelopeTransformer(_ huma.Context, _ string, v any) (any, error) {
	switch body := v.(type) {
	case *APIError:
		return response.ErrorEnvelope(body.Code, body.Message, body.Details), nil
	case response.Envelope, *response.Envelope:
		return body, nil
	default:
		return response.SuccessEnvelope(v), nil
	}
}
