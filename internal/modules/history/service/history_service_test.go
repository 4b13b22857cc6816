package service

import (
	"context"
	"testing"
	"time"

	"toolhub/internal/modules/history/domain"
)

type memoryRunStore struct {
	runs        []domain.Run
	recentLimit int
}

func (m *memoryRunStore) Insert(_ context.Context, run domain.Run) error {
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryRunStore) Recent(_ context.Context, limit int) ([]domain.Run, error) {
	m.recentLimit = limit
	if limit > len(m.runs) {
		limit = len(m.runs)
	}
	return m.runs[:limit], nil
}

func (m *memoryRunStore) Stats(context.Context) ([]domain.ToolStats, error) {
	return nil, nil
}

func (m *memoryRunStore) DeleteBefore(context.Context, time.Time) (int, error) {
	return 0, nil
}

type sequenceIDs struct{ n int }

func (s *sequenceIDs) New() string {
	s.n++
	return string(rune('a' + s.n - 1))
}

func TestRecordAssignsIDAndValidates(t *testing.T) {
	t.Parallel()

	store := &memoryRunStore{}
	svc := NewHistoryService(store, &sequenceIDs{})
	ctx := context.Background()

	run, err := svc.Record(ctx, domain.Run{
		ToolID:      "reindex-stock",
		Success:     true,
		DurationMS:  120,
		CompletedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if run.ID == "" {
		t.Fatal("run was not assigned an id")
	}
	if len(store.runs) != 1 {
		t.Fatalf("stored %d runs, want 1", len(store.runs))
	}

	if _, err := svc.Record(ctx, domain.Run{Success: true}); err == nil {
		t.Fatal("expected validation error for missing tool id")
	}
	if _, err := svc.Record(ctx, domain.Run{ToolID: "t", DurationMS: -1}); err == nil {
		t.Fatal("expected validation error for negative duration")
	}
}

func TestRecentAppliesDefaultLimit(t *testing.T) {
	t.Parallel()

	store := &memoryRunStore{}
	svc := NewHistoryService(store, &sequenceIDs{})

	if _, err := svc.Recent(context.Background(), 0); err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if store.recentLimit != 50 {
		t.Fatalf("limit = %d, want default 50", store.recentLimit)
	}

	if _, err := svc.Recent(context.Background(), 7); err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if store.recentLimit != 7 {
		t.Fatalf("limit = %d, want 7", store.recentLimit)
	}
}
