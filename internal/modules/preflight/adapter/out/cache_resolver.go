package out

import (
	"context"

	cachein "toolhub/internal/modules/cache/port/in"
	preflightout "toolhub/internal/modules/preflight/port/out"
)

// CacheArtifactResolver answers artifact questions from the cache
// module's inbound port.
type CacheArtifactResolver struct {
	cache cachein.Usecase
}

func NewCacheArtifactResolver(cache cachein.Usecase) preflightout.ArtifactResolver {
	return CacheArtifactResolver{cache: cache}
}

func (r CacheArtifactResolver) Resolve(ctx context.Context, key string) (string, bool) {
	return r.cache.Resolve(ctx, key)
}

func (r CacheArtifactResolver) IsStale(ctx context.Context, key string) bool {
	return r.cache.IsStale(ctx, key)
}
