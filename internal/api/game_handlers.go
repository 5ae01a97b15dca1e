package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamedash/gamedash-server/internal/catalog"
	"github.com/gamedash/gamedash-server/internal/service"
)

func (s *Server) registerGameRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGames",
		Method:      http.MethodGet,
		Path:        "/api/v1/games",
		Summary:     "List games",
		Description: "Lists catalog games with filters and paging. A non-empty search switches to a text search.",
		Tags:        []string{"Games"},
	}, s.handleListGames)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGame",
		Method:      http.MethodGet,
		Path:        "/api/v1/games/{id}",
		Summary:     "Get game",
		Description: "Returns a game with its translated description, Spanish release date, rating label and placeholder",
		Tags:        []string{"Games"},
	}, s.handleGetGame)

	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns the genres offered as filters",
		Tags:        []string{"Games"},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPlatforms",
		Method:      http.MethodGet,
		Path:        "/api/v1/platforms",
		Summary:     "List platforms",
		Description: "Returns the platforms offered as filters",
		Tags:        []string{"Games"},
	}, s.handleListPlatforms)
}

// ListGamesInput contains parameters for listing games.
type ListGamesInput struct {
	Search    string `query:"search" maxLength:"200" doc:"Free-text search"`
	Page      int    `query:"page" minimum:"1" default:"1" doc:"Page number"`
	PageSize  int    `query:"page_size" minimum:"1" maximum:"200" default:"20" doc:"Items per page"`
	Ordering  string `query:"ordering" enum:"-rating,-released,released,-added,name,-name,-metacritic" default:"-rating" doc:"Sort order"`
	Genres    string `query:"genres" doc:"Comma-separated genre ids"`
	Platforms string `query:"platforms" doc:"Comma-separated platform ids"`
	Dates     string `query:"dates" doc:"Release window, YYYY-MM-DD,YYYY-MM-DD"`
}

// ListGamesOutput contains one page of games.
type ListGamesOutput struct {
	Body *catalog.Page
}

// GetGameInput contains parameters for getting a game.
type GetGameInput struct {
	ID int `path:"id" minimum:"1" doc:"Game ID"`
}

// GetGameOutput contains the display detail of a game.
type GetGameOutput struct {
	Body *service.GameDetail
}

// ListGenresOutput contains the genre filter list.
type ListGenresOutput struct {
	Body []catalog.Genre
}

// ListPlatformsOutput contains the platform filter list.
type ListPlatformsOutput struct {
	Body []catalog.Platform
}

func (s *Server) handleListGames(ctx context.Context, input *ListGamesInput) (*ListGamesOutput, error) {
	params := catalog.ListParams{
		Genres:    input.Genres,
		Platforms: input.Platforms,
		Ordering:  input.Ordering,
		Dates:     input.Dates,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}
	if err := s.services.Validator.Validate(params); err != nil {
		return nil, err
	}

	page, err := s.services.Catalog.SearchItems(ctx, input.Search, params)
	if err != nil {
		return nil, err
	}
	return &ListGamesOutput{Body: page}, nil
}

func (s *Server) handleGetGame(ctx context.Context, input *GetGameInput) (*GetGameOutput, error) {
	detail, err := s.services.Detail.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &GetGameOutput{Body: detail}, nil
}

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*ListGenresOutput, error) {
	genres, err := s.services.Catalog.FilterGenres(ctx)
	if err != nil {
		return nil, err
	}
	return &ListGenresOutput{Body: genres}, nil
}

func (s *Server) handleListPlatforms(ctx context.Context, _ *struct{}) (*ListPlatformsOutput, error) {
	platforms, err := s.services.Catalog.FilterPlatforms(ctx)
	if err != nil {
		return nil, err
	}
	return &ListPlatformsOutput{Body: platforms}, nil
}
