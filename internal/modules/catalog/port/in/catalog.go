package in

import (
	"context"

	"toolhub/internal/modules/catalog/dto"
	preflightdto "toolhub/internal/modules/preflight/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.ToolOutput, error)
	EnsureTool(ctx context.Context, toolID string) (string, error)
	Preflight(ctx context.Context, toolID string) (preflightdto.ReportOutput, error)
	Run(ctx context.Context, input dto.RunInput) (dto.RunOutput, error)
}
