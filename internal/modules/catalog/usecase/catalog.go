package usecase

import (
	"context"

	"toolhub/internal/modules/catalog/dto"
	catalogin "toolhub/internal/modules/catalog/port/in"
	"toolhub/internal/modules/catalog/service"
	preflightdto "toolhub/internal/modules/preflight/dto"
)

type Interactor struct {
	svc *service.CatalogService
}

func NewInteractor(svc *service.CatalogService) catalogin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.ToolOutput, error) {
	tools, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ToolOutput, 0, len(tools))
	for _, tool := range tools {
		out = append(out, dto.ToolOutput{
			ID:                 tool.ID,
			Title:              tool.Title,
			Description:        tool.Description,
			ScriptPath:         tool.ScriptPath,
			RequiresElevation:  tool.RequiresElevation,
			RequiresConnection: tool.RequiresConnection,
			Dependencies:       tool.Dependencies,
		})
	}
	return out, nil
}

func (i *Interactor) EnsureTool(ctx context.Context, toolID string) (string, error) {
	return i.svc.EnsureTool(ctx, toolID)
}

func (i *Interactor) Preflight(ctx context.Context, toolID string) (preflightdto.ReportOutput, error) {
	return i.svc.Preflight(ctx, toolID)
}

func (i *Interactor) Run(ctx context.Context, input dto.RunInput) (dto.RunOutput, error) {
	return i.svc.Run(ctx, input)
}
