package out_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	adapter "toolhub/internal/modules/history/adapter/out"
	"toolhub/internal/modules/history/domain"
	historyout "toolhub/internal/modules/history/port/out"
)

func newRunStore(t *testing.T) historyout.RunStore {
	t.Helper()
	store, err := adapter.NewSQLiteRunStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open run store: %v", err)
	}
	return store
}

func run(id, toolID string, success bool, durationMS int64, at time.Time) domain.Run {
	return domain.Run{
		ID:          id,
		ToolID:      toolID,
		Success:     success,
		DurationMS:  durationMS,
		Output:      "out",
		ErrorOutput: "",
		CompletedAt: at,
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	t.Parallel()
	store := newRunStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"r1", "r2", "r3"} {
		if err := store.Insert(ctx, run(id, "reindex", true, 100, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}

	recent, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(recent))
	}
	if recent[0].ID != "r3" || recent[1].ID != "r2" {
		t.Fatalf("wrong order: %s, %s", recent[0].ID, recent[1].ID)
	}
}

func TestStatsAggregatesPerTool(t *testing.T) {
	t.Parallel()
	store := newRunStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	fixtures := []domain.Run{
		run("a1", "reindex", true, 100, base),
		run("a2", "reindex", false, 300, base.Add(time.Hour)),
		run("b1", "purge-logs", true, 50, base),
	}
	for _, r := range fixtures {
		if err := store.Insert(ctx, r); err != nil {
			t.Fatalf("insert %s: %v", r.ID, err)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("expected stats for 2 tools, got %d", len(stats))
	}
	reindex := stats[1]
	if reindex.ToolID != "reindex" {
		t.Fatalf("expected reindex second (ordered by tool id), got %s", reindex.ToolID)
	}
	if reindex.Runs != 2 || reindex.Failures != 1 {
		t.Fatalf("wrong aggregate: %+v", reindex)
	}
	if reindex.AvgDurationMS != 200 {
		t.Fatalf("wrong avg duration: %d", reindex.AvgDurationMS)
	}
	if got := reindex.SuccessRate(); got != 0.5 {
		t.Fatalf("wrong success rate: %f", got)
	}
	if !reindex.LastRunAt.Equal(base.Add(time.Hour)) {
		t.Fatalf("wrong last run: %v", reindex.LastRunAt)
	}
}

func TestDeleteBefore(t *testing.T) {
	t.Parallel()
	store := newRunStore(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	if err := store.Insert(ctx, run("old", "reindex", true, 10, base.Add(-48*time.Hour))); err != nil {
		t.Fatalf("insert old: %v", err)
	}
	if err := store.Insert(ctx, run("new", "reindex", true, 10, base)); err != nil {
		t.Fatalf("insert new: %v", err)
	}

	removed, err := store.DeleteBefore(ctx, base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("delete before: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removal, got %d", removed)
	}
	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "new" {
		t.Fatalf("wrong survivor: %+v", recent)
	}
}
