package in

import (
	"context"
	"time"

	"toolhub/internal/modules/history/dto"
)

type Usecase interface {
	Record(ctx context.Context, input dto.RecordInput) (dto.RunOutput, error)
	Recent(ctx context.Context, limit int) ([]dto.RunOutput, error)
	Stats(ctx context.Context) ([]dto.ToolStatsOutput, error)
	Purge(ctx context.Context, cutoff time.Time) (int, error)
}
