package in

import (
	"context"
	"time"

	"toolhub/internal/modules/history/dto"
	historyin "toolhub/internal/modules/history/port/in"
)

type CLIHandler struct {
	usecase historyin.Usecase
}

func NewCLIHandler(usecase historyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Recent(ctx context.Context, limit int) ([]dto.RunOutput, error) {
	return h.usecase.Recent(ctx, limit)
}

func (h CLIHandler) Stats(ctx context.Context) ([]dto.ToolStatsOutput, error) {
	return h.usecase.Stats(ctx)
}

func (h CLIHandler) Purge(ctx context.Context, cutoff time.Time) (int, error) {
	return h.usecase.Purge(ctx, cutoff)
}
