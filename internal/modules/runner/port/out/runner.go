package out

import (
	"context"

	"toolhub/internal/modules/runner/domain"
)

// Session is one isolated interpreter session, good for exactly one run
// and discarded afterwards. Run blocks until the script completes or ctx
// is cancelled, invoking emit synchronously for every stream event.
type Session interface {
	Run(ctx context.Context, scriptPath string, parameters map[string]string, emit func(domain.StreamEvent)) (domain.ExitStatus, error)
	Close()
}

// SessionFactory opens a fresh session per run. Sessions are never
// reused across runs; that is what keeps script state from leaking
// between unrelated tools.
type SessionFactory interface {
	Open(ctx context.Context) (Session, error)
}
