package in

import (
	"context"

	"toolhub/internal/modules/cache/dto"
)

type Usecase interface {
	Store(ctx context.Context, key string, content []byte) (dto.EntryInfo, error)
	Resolve(ctx context.Context, key string) (string, bool)
	IsStale(ctx context.Context, key string) bool
	VerifyIntegrity(ctx context.Context, key string) bool
	ClearAll(ctx context.Context) error
	SweepExpired(ctx context.Context) (dto.SweepOutput, error)
	Usage(ctx context.Context) dto.UsageOutput
}
