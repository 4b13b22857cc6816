package out

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"toolhub/internal/modules/catalog/domain"
	catalogout "toolhub/internal/modules/catalog/port/out"
)

const manifestPath = "manifest.json"

// HTTPFetcher talks to a REST catalog that serves manifest.json and
// the raw artifact bodies under their manifest-relative paths.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

func NewHTTPFetcher(baseURL string) catalogout.Fetcher {
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *HTTPFetcher) FetchManifest(ctx context.Context) (domain.Manifest, error) {
	body, err := f.get(ctx, manifestPath)
	if err != nil {
		return domain.Manifest{}, err
	}
	var manifest domain.Manifest
	if err := json.Unmarshal(body, &manifest); err != nil {
		return domain.Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return manifest, nil
}

func (f *HTTPFetcher) FetchContent(ctx context.Context, relPath string) ([]byte, error) {
	return f.get(ctx, relPath)
}

func (f *HTTPFetcher) get(ctx context.Context, relPath string) ([]byte, error) {
	target := f.baseURL + "/" + url.PathEscape(relPath)
	// Artifact paths keep their directory structure on the server.
	target = strings.ReplaceAll(target, "%2F", "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %q: %w", relPath, err)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %q: %w", relPath, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %q: unexpected status %s", relPath, resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", relPath, err)
	}
	return body, nil
}
