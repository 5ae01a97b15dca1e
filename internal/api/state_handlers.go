package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamedash/gamedash-server/internal/appstate"
)

func (s *Server) registerStateRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getState",
		Method:      http.MethodGet,
		Path:        "/api/v1/state",
		Summary:     "Get client state",
		Description: "Returns the theme, last search and filters saved for the calling client (X-Client-ID)",
		Tags:        []string{"State"},
	}, s.handleGetState)

	huma.Register(s.api, huma.Operation{
		OperationID: "putState",
		Method:      http.MethodPut,
		Path:        "/api/v1/state",
		Summary:     "Save client state",
		Description: "Replaces the state saved for the calling client",
		Tags:        []string{"State"},
	}, s.handlePutState)
}

// StateRequest is the request body for saving client state.
type StateRequest struct {
	Theme      string           `json:"theme,omitempty" doc:"light or dark"`
	LastSearch string           `json:"last_search,omitempty" doc:"Last search text"`
	Filters    appstate.Filters `json:"filters" required:"false" doc:"Last applied filters"`
}

// StateInput wraps the state request for Huma.
type StateInput struct {
	Body StateRequest
}

// StateOutput wraps client state for Huma.
type StateOutput struct {
	Body appstate.State
}

func (s *Server) handleGetState(ctx context.Context, _ *struct{}) (*StateOutput, error) {
	st, err := s.services.State.Get(ctx, appstate.ClientID(ctx))
	if err != nil {
		return nil, err
	}
	return &StateOutput{Body: st}, nil
}

func (s *Server) handlePutState(ctx context.Context, input *StateInput) (*StateOutput, error) {
	st, err := s.services.State.Put(ctx, appstate.ClientID(ctx), appstate.State{
		Theme:      input.Body.Theme,
		LastSearch: input.Body.LastSearch,
		Filters:    input.Body.Filters,
	})
	if err != nil {
		return nil, err
	}
	return &StateOutput{Body: st}, nil
}
