package in

import (
	"context"

	"toolhub/internal/modules/runner/dto"
)

type Usecase interface {
	Execute(ctx context.Context, input dto.ExecuteInput) (dto.ExecuteOutput, error)
	Stop()
	Active() bool
}
