package in

import (
	"context"

	"toolhub/internal/modules/catalog/dto"
	catalogin "toolhub/internal/modules/catalog/port/in"
	preflightdto "toolhub/internal/modules/preflight/dto"
)

type CLIHandler struct {
	usecase catalogin.Usecase
}

func NewCLIHandler(usecase catalogin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.ToolOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Preflight(ctx context.Context, toolID string) (preflightdto.ReportOutput, error) {
	return h.usecase.Preflight(ctx, toolID)
}

func (h CLIHandler) Run(ctx context.Context, input dto.RunInput) (dto.RunOutput, error) {
	return h.usecase.Run(ctx, input)
}
