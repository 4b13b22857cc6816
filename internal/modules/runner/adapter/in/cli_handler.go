package in

import (
	"context"

	"toolhub/internal/modules/runner/dto"
	runnerin "toolhub/internal/modules/runner/port/in"
)

type CLIHandler struct {
	usecase runnerin.Usecase
}

func NewCLIHandler(usecase runnerin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Execute(ctx context.Context, input dto.ExecuteInput) (dto.ExecuteOutput, error) {
	return h.usecase.Execute(ctx, input)
}

func (h CLIHandler) Stop() {
	h.usecase.Stop()
}

func (h CLIHandler) Active() bool {
	return h.usecase.Active()
}
