package usecase

import (
	"context"

	"toolhub/internal/modules/runner/domain"
	"toolhub/internal/modules/runner/dto"
	runnerin "toolhub/internal/modules/runner/port/in"
	"toolhub/internal/modules/runner/service"
)

type Interactor struct {
	svc *service.RunnerService
}

func NewInteractor(svc *service.RunnerService) runnerin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Execute(ctx context.Context, input dto.ExecuteInput) (dto.ExecuteOutput, error) {
	result, err := i.svc.Execute(ctx, domain.ExecutionRequest{
		ScriptPath: input.ScriptPath,
		Parameters: input.Parameters,
		Output:     input.OnOutput,
		Error:      input.OnError,
		Progress:   input.OnProgress,
	})
	if err != nil {
		return dto.ExecuteOutput{}, err
	}
	return dto.ExecuteOutput{
		Success:       result.Success,
		ExitCode:      result.ExitCode,
		ExitCodeKnown: result.ExitCodeKnown,
		Output:        result.Output,
		ErrorOutput:   result.ErrorOutput,
		Duration:      result.Duration,
		CompletedAt:   result.CompletedAt,
	}, nil
}

func (i *Interactor) Stop() {
	i.svc.Stop()
}

func (i *Interactor) Active() bool {
	return i.svc.Active()
}
