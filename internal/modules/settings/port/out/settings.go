package out

import "context"

// KVStore persists raw string values by key with upsert semantics.
// Typing lives one layer up, in the closed set of accessors the
// service exposes.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
