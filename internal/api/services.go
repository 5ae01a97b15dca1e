package api

import (
	"github.com/gamedash/gamedash-server/internal/appstate"
	"github.com/gamedash/gamedash-server/internal/search"
	"github.com/gamedash/gamedash-server/internal/service"
	"github.com/gamedash/gamedash-server/internal/sse"
	"github.com/gamedash/gamedash-server/internal/validation"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Catalog   *service.CatalogService
	Detail    *service.DetailService
	Dashboard *service.DashboardService
	Terms     *service.TermsService
	State     *appstate.Service
	Validator *validation.Validator

	Index *search.GameIndex // health reporting only
	SSE   *sse.Manager
}
