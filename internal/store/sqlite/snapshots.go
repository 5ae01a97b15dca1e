package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gamedash/gamedash-server/internal/dashboard"
	"github.com/gamedash/gamedash-server/internal/store"
)

// SnapshotSummary describes a stored run without its chart data.
type SnapshotSummary struct {
	ID          string   `json:"id"`
	GeneratedAt string   `json:"generated_at"`
	Partial     bool     `json:"partial"`
	Failed      []string `json:"failed_passes"`
}

// PassStats counts how often a pass failed across stored runs.
type PassStats struct {
	Pass     string `json:"pass"`
	Runs     int    `json:"runs"`
	Failures int    `json:"failures"`
}

type passRow struct {
	pass, status, code, reason string
}

func passRows(r *dashboard.Report) []passRow {
	return []passRow{
		{dashboard.PassGenre, string(r.Genres.Status), r.Genres.Code, r.Genres.Error},
		{dashboard.PassPlatform, string(r.Platforms.Status), r.Platforms.Code, r.Platforms.Error},
		{dashboard.PassYear, string(r.Years.Status), r.Years.Code, r.Years.Error},
		{dashboard.PassMode, string(r.Modes.Status), r.Modes.Code, r.Modes.Error},
		{dashboard.PassRating, string(r.Ratings.Status), r.Ratings.Code, r.Ratings.Error},
	}
}

// SaveReport stores a finished run together with its per-pass outcomes.
// Returns store.ErrInvalidID for a report without id and
// store.ErrAlreadyExists when the id was already saved.
func (s *Store) SaveReport(ctx context.Context, r *dashboard.Report) error {
	if r.ID == "" {
		return store.ErrInvalidID
	}

	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO dashboard_snapshots (id, generated_at, partial, report, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		r.ID,
		formatTime(r.GeneratedAt),
		r.Partial(),
		string(data),
		formatTime(s.now()),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return store.ErrAlreadyExists
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}

	for _, p := range passRows(r) {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_passes (snapshot_id, pass, status, code, error)
			VALUES (?, ?, ?, ?, ?)`,
			r.ID, p.pass, p.status, p.code, p.reason,
		)
		if err != nil {
			return fmt.Errorf("insert pass %s: %w", p.pass, err)
		}
	}

	return tx.Commit()
}

// GetReport loads a stored run.
// Returns store.ErrNotFound if no run has that id.
func (s *Store) GetReport(ctx context.Context, id string) (*dashboard.Report, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT report FROM dashboard_snapshots WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var r dashboard.Report
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		return nil, fmt.Errorf("unmarshal report %s: %w", id, err)
	}
	return &r, nil
}

// ListReports returns the newest runs first, at most limit of them.
func (s *Store) ListReports(ctx context.Context, limit int) ([]SnapshotSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.generated_at, s.partial,
			COALESCE((SELECT GROUP_CONCAT(p.pass, ',') FROM snapshot_passes p
				WHERE p.snapshot_id = s.id AND p.status = 'failed'), '')
		FROM dashboard_snapshots s
		ORDER BY s.generated_at DESC, s.created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []SnapshotSummary{}
	for rows.Next() {
		var (
			sum         SnapshotSummary
			generatedAt string
			failed      string
		)
		if err := rows.Scan(&sum.ID, &generatedAt, &sum.Partial, &failed); err != nil {
			return nil, err
		}

		t, err := parseTime(generatedAt)
		if err != nil {
			return nil, err
		}
		sum.GeneratedAt = t.UTC().Format(time.RFC3339Nano)

		sum.Failed = []string{}
		if failed != "" {
			sum.Failed = strings.Split(failed, ",")
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// PassStatistics returns run and failure counts per pass over all stored runs.
func (s *Store) PassStatistics(ctx context.Context) ([]PassStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT pass, COUNT(*), SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END)
		FROM snapshot_passes
		GROUP BY pass
		ORDER BY pass`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []PassStats{}
	for rows.Next() {
		var st PassStats
		if err := rows.Scan(&st.Pass, &st.Runs, &st.Failures); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// Prune deletes all but the newest keep runs and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM dashboard_snapshots WHERE id NOT IN (
			SELECT id FROM dashboard_snapshots
			ORDER BY generated_at DESC, created_at DESC
			LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 && s.logger != nil {
		s.logger.Debug("pruned dashboard snapshots", "removed", n, "kept", keep)
	}
	return n, nil
}
