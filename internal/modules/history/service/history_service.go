package service

import (
	"context"
	"fmt"
	"time"

	"toolhub/internal/modules/history/domain"
	historyout "toolhub/internal/modules/history/port/out"
	"toolhub/internal/platform/id"
)

const defaultRecentLimit = 50

// HistoryService is the execution ledger. It only ever appends; the
// core never rewrites outcomes after the fact.
type HistoryService struct {
	store historyout.RunStore
	ids   id.Generator
}

func NewHistoryService(store historyout.RunStore, ids id.Generator) *HistoryService {
	return &HistoryService{store: store, ids: ids}
}

func (s *HistoryService) Record(ctx context.Context, run domain.Run) (domain.Run, error) {
	run.ID = s.ids.New()
	if err := run.Validate(); err != nil {
		return domain.Run{}, err
	}
	if err := s.store.Insert(ctx, run); err != nil {
		return domain.Run{}, fmt.Errorf("record run: %w", err)
	}
	return run, nil
}

func (s *HistoryService) Recent(ctx context.Context, limit int) ([]domain.Run, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.store.Recent(ctx, limit)
}

func (s *HistoryService) Stats(ctx context.Context) ([]domain.ToolStats, error) {
	return s.store.Stats(ctx)
}

func (s *HistoryService) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	return s.store.DeleteBefore(ctx, cutoff)
}
