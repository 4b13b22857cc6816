package in

import (
	"context"

	"toolhub/internal/modules/cache/dto"
	cachein "toolhub/internal/modules/cache/port/in"
)

type CLIHandler struct {
	usecase cachein.Usecase
}

func NewCLIHandler(usecase cachein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Usage(ctx context.Context) dto.UsageOutput {
	return h.usecase.Usage(ctx)
}

func (h CLIHandler) ClearAll(ctx context.Context) error {
	return h.usecase.ClearAll(ctx)
}

func (h CLIHandler) SweepExpired(ctx context.Context) (dto.SweepOutput, error) {
	return h.usecase.SweepExpired(ctx)
}

func (h CLIHandler) VerifyIntegrity(ctx context.Context, key string) bool {
	return h.usecase.VerifyIntegrity(ctx, key)
}

func (h CLIHandler) IsStale(ctx context.Context, key string) bool {
	return h.usecase.IsStale(ctx, key)
}
