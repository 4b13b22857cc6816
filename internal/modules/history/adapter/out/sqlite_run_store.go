package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"toolhub/internal/modules/history/domain"
	historyout "toolhub/internal/modules/history/port/out"

	_ "modernc.org/sqlite"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SQLiteRunStore struct {
	db *sql.DB
}

func NewSQLiteRunStore(dbPath string) (historyout.RunStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteRunStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteRunStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS runs (
  id TEXT PRIMARY KEY,
  tool_id TEXT NOT NULL,
  success INTEGER NOT NULL,
  duration_ms INTEGER NOT NULL,
  output TEXT NOT NULL,
  error_output TEXT NOT NULL,
  completed_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_completed_at ON runs(completed_at);
CREATE INDEX IF NOT EXISTS idx_runs_tool_id ON runs(tool_id);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	return nil
}

func (s *SQLiteRunStore) Insert(ctx context.Context, run domain.Run) error {
	const stmt = `
INSERT INTO runs (id, tool_id, success, duration_ms, output, error_output, completed_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		run.ID,
		run.ToolID,
		boolToInt(run.Success),
		run.DurationMS,
		run.Output,
		run.ErrorOutput,
		run.CompletedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (s *SQLiteRunStore) Recent(ctx context.Context, limit int) ([]domain.Run, error) {
	const query = `
SELECT id, tool_id, success, duration_ms, output, error_output, completed_at
FROM runs ORDER BY completed_at DESC LIMIT ?;
`
	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var out []domain.Run
	for rows.Next() {
		var run domain.Run
		var success int
		var completedAt string
		if err := rows.Scan(&run.ID, &run.ToolID, &success, &run.DurationMS, &run.Output, &run.ErrorOutput, &completedAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Success = success != 0
		if run.CompletedAt, err = time.Parse(timeLayout, completedAt); err != nil {
			return nil, fmt.Errorf("parse completed_at: %w", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func (s *SQLiteRunStore) Stats(ctx context.Context) ([]domain.ToolStats, error) {
	const query = `
SELECT tool_id,
       COUNT(*)                                  AS runs,
       SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) AS failures,
       CAST(AVG(duration_ms) AS INTEGER)         AS avg_duration_ms,
       MAX(completed_at)                         AS last_run_at
FROM runs GROUP BY tool_id ORDER BY tool_id;
`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query run stats: %w", err)
	}
	defer rows.Close()

	var out []domain.ToolStats
	for rows.Next() {
		var stats domain.ToolStats
		var lastRunAt string
		if err := rows.Scan(&stats.ToolID, &stats.Runs, &stats.Failures, &stats.AvgDurationMS, &lastRunAt); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		if stats.LastRunAt, err = time.Parse(timeLayout, lastRunAt); err != nil {
			return nil, fmt.Errorf("parse last_run_at: %w", err)
		}
		out = append(out, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}
	return out, nil
}

func (s *SQLiteRunStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE completed_at < ?`, cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("purge runs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge rows affected: %w", err)
	}
	return int(affected), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
