package in

import (
	"context"
	"time"

	"toolhub/internal/platform/config"
)

// Usecase is the closed accessor surface for persisted preferences.
// Every getter takes a caller-supplied default that is returned when
// the key is absent or its stored value fails to parse.
type Usecase interface {
	GetString(ctx context.Context, key, def string) (string, error)
	PutString(ctx context.Context, key, value string) error

	GetBool(ctx context.Context, key string, def bool) (bool, error)
	PutBool(ctx context.Context, key string, value bool) error

	GetInt(ctx context.Context, key string, def int64) (int64, error)
	PutInt(ctx context.Context, key string, value int64) error

	GetDuration(ctx context.Context, key string, def time.Duration) (time.Duration, error)
	PutDuration(ctx context.Context, key string, value time.Duration) error

	GetJSON(ctx context.Context, key string, target any) (bool, error)
	PutJSON(ctx context.Context, key string, value any) error

	Delete(ctx context.Context, key string) error

	DataEndpoint(ctx context.Context) (config.Endpoint, error)
	SetDataEndpoint(ctx context.Context, ep config.Endpoint) error
}
