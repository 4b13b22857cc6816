package out

import (
	"context"
	"time"

	"toolhub/internal/modules/cache/domain"
)

// MetadataStore persists one row per cache key. Each method is a single
// atomic operation; cross-operation coordination is not required because
// key overwrites are last-writer-wins.
type MetadataStore interface {
	Upsert(ctx context.Context, entry domain.Entry) error
	Get(ctx context.Context, key string) (domain.Entry, error)
	Delete(ctx context.Context, key string) error
	ListExpired(ctx context.Context, before time.Time) ([]domain.Entry, error)
	DeleteAll(ctx context.Context) error
}
