package out

import (
	"context"

	"toolhub/internal/modules/catalog/domain"
)

// Fetcher retrieves the tool manifest and artifact bodies from the
// remote catalog.
type Fetcher interface {
	FetchManifest(ctx context.Context) (domain.Manifest, error)
	FetchContent(ctx context.Context, relPath string) ([]byte, error)
}
