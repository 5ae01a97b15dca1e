package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gamedash/gamedash-server/internal/dashboard"
	domainerrors "github.com/gamedash/gamedash-server/internal/errors"
	"github.com/gamedash/gamedash-server/internal/sse"
	"github.com/gamedash/gamedash-server/internal/store"
	"github.com/gamedash/gamedash-server/internal/store/sqlite"
)

// defaultHistoryKeep is how many runs stay in the history after each save.
const defaultHistoryKeep = 200

// History stores finished dashboard runs.
type History interface {
	SaveReport(ctx context.Context, r *dashboard.Report) error
	GetReport(ctx context.Context, id string) (*dashboard.Report, error)
	ListReports(ctx context.Context, limit int) ([]sqlite.SnapshotSummary, error)
	PassStatistics(ctx context.Context) ([]sqlite.PassStats, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

// EventEmitter publishes live events.
type EventEmitter interface {
	Emit(event sse.Event)
}

// DashboardOptions configures a DashboardService.
type DashboardOptions struct {
	Pipeline dashboard.Options
	// HistoryKeep bounds the stored history. Zero uses the default.
	HistoryKeep int
}

// DashboardService runs the aggregation pipeline, records each run and
// streams its progress to the requesting client.
type DashboardService struct {
	src     dashboard.Source
	opts    DashboardOptions
	history History
	events  EventEmitter
	logger  *slog.Logger
}

// NewDashboardService creates a DashboardService. history and events may be nil.
func NewDashboardService(src dashboard.Source, opts DashboardOptions, history History, events EventEmitter, logger *slog.Logger) *DashboardService {
	if opts.HistoryKeep <= 0 {
		opts.HistoryKeep = defaultHistoryKeep
	}
	return &DashboardService{
		src:     src,
		opts:    opts,
		history: history,
		events:  events,
		logger:  logger,
	}
}

// Run executes one dashboard run for clientID. Pass failures are reported
// inside the Report; Run itself does not fail.
func (s *DashboardService) Run(ctx context.Context, clientID string) *dashboard.Report {
	runID := uuid.NewString()
	log := s.logger.With("run_id", runID)
	log.Info("dashboard run started", "client_id", clientID)

	s.emit(sse.NewDashboardStartedEvent(clientID, runID))

	opts := s.opts.Pipeline
	opts.OnPass = func(ev dashboard.PassEvent) {
		s.emit(sse.NewDashboardPassEvent(clientID, sse.DashboardPassEventData{
			RunID:      runID,
			Pass:       ev.Pass,
			Status:     string(ev.Status),
			Error:      ev.Error,
			DurationMS: ev.DurationMS,
		}))
	}

	report := dashboard.New(s.src, opts, log).Run(ctx)
	report.ID = runID

	s.record(context.WithoutCancel(ctx), log, report)

	failures := make([]string, 0, len(report.Failures))
	for _, f := range report.Failures {
		failures = append(failures, f.Pass)
	}
	s.emit(sse.NewDashboardCompletedEvent(clientID, sse.DashboardCompletedEventData{
		RunID:       runID,
		CompletedAt: time.Now().UTC(),
		Partial:     report.Partial(),
		Failures:    failures,
	}))

	log.Info("dashboard run finished", "partial", report.Partial(), "failures", failures)
	return report
}

// History lists past runs, newest first.
func (s *DashboardService) History(ctx context.Context, limit int) ([]sqlite.SnapshotSummary, error) {
	if s.history == nil {
		return []sqlite.SnapshotSummary{}, nil
	}
	list, err := s.history.ListReports(ctx, limit)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "list dashboard history")
	}
	return list, nil
}

// Snapshot returns a stored run.
func (s *DashboardService) Snapshot(ctx context.Context, id string) (*dashboard.Report, error) {
	if s.history == nil {
		return nil, domainerrors.NotFoundf("snapshot %s not found", id)
	}
	r, err := s.history.GetReport(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("snapshot %s not found", id)
	}
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load dashboard snapshot")
	}
	return r, nil
}

// PassStatistics reports per-pass failure counts across stored runs.
func (s *DashboardService) PassStatistics(ctx context.Context) ([]sqlite.PassStats, error) {
	if s.history == nil {
		return []sqlite.PassStats{}, nil
	}
	stats, err := s.history.PassStatistics(ctx)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "load pass statistics")
	}
	return stats, nil
}

// record saves the run and trims old history. Failures are logged only.
func (s *DashboardService) record(ctx context.Context, log *slog.Logger, report *dashboard.Report) {
	if s.history == nil {
		return
	}
	if err := s.history.SaveReport(ctx, report); err != nil {
		log.Error("failed to save dashboard snapshot", "error", err)
		return
	}
	if _, err := s.history.Prune(ctx, s.opts.HistoryKeep); err != nil {
		log.Warn("failed to prune dashboard history", "error", err)
	}
}

func (s *DashboardService) emit(event sse.Event) {
	if s.events != nil {
		s.events.Emit(event)
	}
}
