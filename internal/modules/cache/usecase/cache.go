package usecase

import (
	"context"

	"toolhub/internal/modules/cache/dto"
	cachein "toolhub/internal/modules/cache/port/in"
	"toolhub/internal/modules/cache/service"
)

type Interactor struct {
	svc *service.CacheService
}

func NewInteractor(svc *service.CacheService) cachein.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Store(ctx context.Context, key string, content []byte) (dto.EntryInfo, error) {
	entry, err := i.svc.Store(ctx, key, content)
	if err != nil {
		return dto.EntryInfo{}, err
	}
	return dto.EntryInfo{
		Key:       entry.Key,
		LocalPath: entry.LocalPath,
		SHA256:    entry.SHA256,
		ByteSize:  entry.ByteSize,
		CachedAt:  entry.CachedAt,
		ExpiresAt: entry.ExpiresAt,
	}, nil
}

func (i *Interactor) Resolve(ctx context.Context, key string) (string, bool) {
	return i.svc.Resolve(ctx, key)
}

func (i *Interactor) IsStale(ctx context.Context, key string) bool {
	return i.svc.IsStale(ctx, key)
}

func (i *Interactor) VerifyIntegrity(ctx context.Context, key string) bool {
	return i.svc.VerifyIntegrity(ctx, key)
}

func (i *Interactor) ClearAll(ctx context.Context) error {
	return i.svc.ClearAll(ctx)
}

func (i *Interactor) SweepExpired(ctx context.Context) (dto.SweepOutput, error) {
	removed, err := i.svc.SweepExpired(ctx)
	if err != nil {
		return dto.SweepOutput{}, err
	}
	return dto.SweepOutput{Removed: removed}, nil
}

func (i *Interactor) Usage(ctx context.Context) dto.UsageOutput {
	return dto.UsageOutput{
		TotalBytes: i.svc.TotalBytes(ctx),
		FileCount:  i.svc.FileCount(ctx),
	}
}
