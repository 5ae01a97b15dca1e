package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/gamedash/gamedash-server/internal/appstate"
	"github.com/gamedash/gamedash-server/internal/dashboard"
	"github.com/gamedash/gamedash-server/internal/store/sqlite"
)

func (s *Server) registerDashboardRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "runDashboard",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard",
		Summary:     "Run dashboard",
		Description: "Runs every aggregation pass and returns the chart data. Failed passes are listed in failures while the others still carry data. Progress is streamed on /api/v1/events.",
		Tags:        []string{"Dashboard"},
	}, s.handleRunDashboard)

	huma.Register(s.api, huma.Operation{
		OperationID: "listDashboardHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard/history",
		Summary:     "List dashboard history",
		Description: "Returns previous runs, newest first",
		Tags:        []string{"Dashboard"},
	}, s.handleListHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDashboardSnapshot",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard/history/{id}",
		Summary:     "Get dashboard snapshot",
		Description: "Returns a stored run",
		Tags:        []string{"Dashboard"},
	}, s.handleGetSnapshot)

	huma.Register(s.api, huma.Operation{
		OperationID: "getDashboardStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/dashboard/stats",
		Summary:     "Get pass statistics",
		Description: "Returns per-pass run and failure counts across stored runs",
		Tags:        []string{"Dashboard"},
	}, s.handlePassStats)
}

// DashboardOutput contains a dashboard run.
type DashboardOutput struct {
	Body *dashboard.Report
}

// ListHistoryInput contains parameters for listing history.
type ListHistoryInput struct {
	Limit int `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Maximum runs to return"`
}

// ListHistoryOutput contains run summaries.
type ListHistoryOutput struct {
	Body []sqlite.SnapshotSummary
}

// GetSnapshotInput contains parameters for getting a snapshot.
type GetSnapshotInput struct {
	ID string `path:"id" maxLength:"64" doc:"Run ID"`
}

// PassStatsOutput contains pass statistics.
type PassStatsOutput struct {
	Body []sqlite.PassStats
}

func (s *Server) handleRunDashboard(ctx context.Context, _ *struct{}) (*DashboardOutput, error) {
	report := s.services.Dashboard.Run(ctx, appstate.ClientID(ctx))
	return &DashboardOutput{Body: report}, nil
}

func (s *Server) handleListHistory(ctx context.Context, input *ListHistoryInput) (*ListHistoryOutput, error) {
	list, err := s.services.Dashboard.History(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	return &ListHistoryOutput{Body: list}, nil
}

func (s *Server) handleGetSnapshot(ctx context.Context, input *GetSnapshotInput) (*DashboardOutput, error) {
	report, err := s.services.Dashboard.Snapshot(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &DashboardOutput{Body: report}, nil
}

func (s *Server) handlePassStats(ctx context.Context, _ *struct{}) (*PassStatsOutput, error) {
	stats, err := s.services.Dashboard.PassStatistics(ctx)
	if err != nil {
		return nil, err
	}
	return &PassStatsOutput{Body: stats}, nil
}
