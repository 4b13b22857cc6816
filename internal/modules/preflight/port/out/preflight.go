package out

import (
	"context"
	"time"
)

// PrivilegeProbe answers whether the current process runs elevated.
type PrivilegeProbe interface {
	Elevated(ctx context.Context) (bool, error)
}

// Dialer opens a raw TCP handshake to prove a data endpoint is reachable.
type Dialer interface {
	Dial(ctx context.Context, address string, timeout time.Duration) error
}

// RuntimeProbe queries an interpreter runtime's version string.
type RuntimeProbe interface {
	Version(ctx context.Context, interpreter string) (string, error)
}

// ArtifactResolver is the slice of the cache the validator needs:
// presence and staleness, nothing else.
type ArtifactResolver interface {
	Resolve(ctx context.Context, key string) (string, bool)
	IsStale(ctx context.Context, key string) bool
}
