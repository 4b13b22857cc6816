package in

import (
	"context"

	"toolhub/internal/modules/preflight/dto"
	preflightin "toolhub/internal/modules/preflight/port/in"
	"toolhub/internal/platform/config"
)

type CLIHandler struct {
	usecase preflightin.Usecase
}

func NewCLIHandler(usecase preflightin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Validate(ctx context.Context, req dto.RequirementsInput, endpoint config.Endpoint) dto.ReportOutput {
	return h.usecase.Validate(ctx, req, endpoint)
}
