package out

import (
	"context"
	"time"

	"toolhub/internal/modules/history/domain"
)

type RunStore interface {
	Insert(ctx context.Context, run domain.Run) error
	Recent(ctx context.Context, limit int) ([]domain.Run, error)
	Stats(ctx context.Context) ([]domain.ToolStats, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int, error)
}
