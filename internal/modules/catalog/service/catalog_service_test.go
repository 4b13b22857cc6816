package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	cachedto "toolhub/internal/modules/cache/dto"
	"toolhub/internal/modules/catalog/domain"
	"toolhub/internal/modules/catalog/dto"
	historydto "toolhub/internal/modules/history/dto"
	preflightdto "toolhub/internal/modules/preflight/dto"
	runnerdto "toolhub/internal/modules/runner/dto"
	settingsin "toolhub/internal/modules/settings/port/in"
	"toolhub/internal/platform/config"
	apperrors "toolhub/internal/platform/errors"
	"toolhub/internal/platform/logging"
)

type fakeFetcher struct {
	manifest domain.Manifest
	contents map[string][]byte
	fetched  []string
}

func (f *fakeFetcher) FetchManifest(context.Context) (domain.Manifest, error) {
	return f.manifest, nil
}

func (f *fakeFetcher) FetchContent(_ context.Context, relPath string) ([]byte, error) {
	f.fetched = append(f.fetched, relPath)
	content, ok := f.contents[relPath]
	if !ok {
		return nil, fmt.Errorf("no such artifact %q", relPath)
	}
	return content, nil
}

type fakeCache struct {
	stored map[string][]byte
	stale  map[string]bool
	broken map[string]bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		stored: map[string][]byte{},
		stale:  map[string]bool{},
		broken: map[string]bool{},
	}
}

func (c *fakeCache) Store(_ context.Context, key string, content []byte) (cachedto.EntryInfo, error) {
	c.stored[key] = content
	c.stale[key] = false
	c.broken[key] = false
	return cachedto.EntryInfo{Key: key, LocalPath: "/cache/" + key}, nil
}

func (c *fakeCache) Resolve(_ context.Context, key string) (string, bool) {
	if _, ok := c.stored[key]; !ok {
		return "", false
	}
	return "/cache/" + key, true
}

func (c *fakeCache) IsStale(_ context.Context, key string) bool {
	if _, ok := c.stored[key]; !ok {
		return true
	}
	return c.stale[key]
}

func (c *fakeCache) VerifyIntegrity(_ context.Context, key string) bool {
	if _, ok := c.stored[key]; !ok {
		return false
	}
	return !c.broken[key]
}

func (c *fakeCache) ClearAll(context.Context) error { return nil }

func (c *fakeCache) SweepExpired(context.Context) (cachedto.SweepOutput, error) {
	return cachedto.SweepOutput{}, nil
}

func (c *fakeCache) Usage(context.Context) cachedto.UsageOutput { return cachedto.UsageOutput{} }

type fakePreflight struct {
	report   preflightdto.ReportOutput
	req      preflightdto.RequirementsInput
	endpoint config.Endpoint
	calls    int
}

func (p *fakePreflight) Validate(_ context.Context, req preflightdto.RequirementsInput, endpoint config.Endpoint) preflightdto.ReportOutput {
	p.calls++
	p.req = req
	p.endpoint = endpoint
	return p.report
}

type fakeRunner struct {
	result runnerdto.ExecuteOutput
	input  runnerdto.ExecuteInput
	calls  int
}

func (r *fakeRunner) Execute(_ context.Context, input runnerdto.ExecuteInput) (runnerdto.ExecuteOutput, error) {
	r.calls++
	r.input = input
	return r.result, nil
}

func (r *fakeRunner) Stop()        {}
func (r *fakeRunner) Active() bool { return false }

type fakeHistory struct {
	records []historydto.RecordInput
	err     error
}

func (h *fakeHistory) Record(_ context.Context, input historydto.RecordInput) (historydto.RunOutput, error) {
	if h.err != nil {
		return historydto.RunOutput{}, h.err
	}
	h.records = append(h.records, input)
	return historydto.RunOutput{ID: "run-1", ToolID: input.ToolID}, nil
}

func (h *fakeHistory) Recent(context.Context, int) ([]historydto.RunOutput, error) {
	return nil, nil
}

func (h *fakeHistory) Stats(context.Context) ([]historydto.ToolStatsOutput, error) {
	return nil, nil
}

func (h *fakeHistory) Purge(context.Context, time.Time) (int, error) { return 0, nil }

// fakeSettings only answers DataEndpoint; the embedded interface
// panics on anything else, which would flag an unexpected call.
type fakeSettings struct {
	settingsin.Usecase
	endpoint config.Endpoint
}

func (s fakeSettings) DataEndpoint(context.Context) (config.Endpoint, error) {
	return s.endpoint, nil
}

type harness struct {
	svc       *CatalogService
	fetcher   *fakeFetcher
	cache     *fakeCache
	preflight *fakePreflight
	runner    *fakeRunner
	history   *fakeHistory
}

func newHarness(tools ...domain.Tool) *harness {
	fetcher := &fakeFetcher{
		manifest: domain.Manifest{Tools: tools},
		contents: map[string][]byte{},
	}
	for _, tool := range tools {
		fetcher.contents[tool.ScriptPath] = []byte("script body")
		for _, dep := range tool.Dependencies {
			fetcher.contents[dep] = []byte("dep body")
		}
	}
	cache := newFakeCache()
	preflight := &fakePreflight{report: preflightdto.ReportOutput{Passed: true}}
	runner := &fakeRunner{result: runnerdto.ExecuteOutput{
		Success:       true,
		ExitCode:      0,
		ExitCodeKnown: true,
		Output:        "done",
		Duration:      250 * time.Millisecond,
		CompletedAt:   time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}}
	history := &fakeHistory{}
	svc := NewCatalogService(
		fetcher, cache, preflight, runner, history,
		fakeSettings{endpoint: config.Endpoint{Host: "db.internal", Port: 5432}},
		logging.Discard(),
	)
	return &harness{svc: svc, fetcher: fetcher, cache: cache, preflight: preflight, runner: runner, history: history}
}

func sampleTool() domain.Tool {
	return domain.Tool{
		ID:                 "rebuild-price-cache",
		Title:              "Rebuild price cache",
		ScriptPath:         "scripts/rebuild-price-cache.ps1",
		RequiresConnection: true,
		Dependencies:       []string{"modules/db-helpers.psm1"},
	}
}

func TestRunFetchesValidatesExecutesAndRecords(t *testing.T) {
	t.Parallel()

	tool := sampleTool()
	h := newHarness(tool)

	out, err := h.svc.Run(context.Background(), dto.RunInput{ToolID: tool.ID})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(h.fetcher.fetched) != 2 {
		t.Fatalf("fetched %v, want script and dependency", h.fetcher.fetched)
	}
	if h.preflight.req.ScriptKey != tool.ScriptPath {
		t.Fatalf("preflight script key = %q", h.preflight.req.ScriptKey)
	}
	if h.preflight.endpoint.Host != "db.internal" {
		t.Fatalf("preflight endpoint = %+v", h.preflight.endpoint)
	}
	if h.runner.input.ScriptPath != "/cache/"+tool.ScriptPath {
		t.Fatalf("runner script path = %q", h.runner.input.ScriptPath)
	}
	if !out.Execution.Success {
		t.Fatal("expected successful execution")
	}
	if len(h.history.records) != 1 {
		t.Fatalf("history records = %d, want 1", len(h.history.records))
	}
	rec := h.history.records[0]
	if rec.ToolID != tool.ID || !rec.Success || rec.DurationMS != 250 {
		t.Fatalf("recorded %+v", rec)
	}
}

func TestFailingPreflightBlocksRun(t *testing.T) {
	t.Parallel()

	tool := sampleTool()
	h := newHarness(tool)
	h.preflight.report = preflightdto.ReportOutput{
		Checks: []preflightdto.CheckOutput{{Name: "connectivity", Passed: false, Message: "refused"}},
		Passed: false,
	}

	out, err := h.svc.Run(context.Background(), dto.RunInput{ToolID: tool.ID})
	if !errors.Is(err, apperrors.ErrPreFlightHold) {
		t.Fatalf("Run = %v, want ErrPreFlightHold", err)
	}
	if h.runner.calls != 0 {
		t.Fatal("runner must not execute on a failing battery")
	}
	if len(out.Report.Checks) != 1 {
		t.Fatalf("report not surfaced: %+v", out.Report)
	}
	if len(h.history.records) != 0 {
		t.Fatal("blocked run must not reach the ledger")
	}
}

func TestForceOverridesFailingPreflight(t *testing.T) {
	t.Parallel()

	tool := sampleTool()
	h := newHarness(tool)
	h.preflight.report = preflightdto.ReportOutput{Passed: false}

	_, err := h.svc.Run(context.Background(), dto.RunInput{ToolID: tool.ID, Force: true})
	if err != nil {
		t.Fatalf("Run with force: %v", err)
	}
	if h.runner.calls != 1 {
		t.Fatalf("runner calls = %d, want 1", h.runner.calls)
	}
}

func TestEnsureToolSkipsFreshIntactArtifacts(t *testing.T) {
	t.Parallel()

	tool := sampleTool()
	h := newHarness(tool)
	ctx := context.Background()

	if _, err := h.svc.EnsureTool(ctx, tool.ID); err != nil {
		t.Fatalf("EnsureTool: %v", err)
	}
	h.fetcher.fetched = nil

	if _, err := h.svc.EnsureTool(ctx, tool.ID); err != nil {
		t.Fatalf("EnsureTool again: %v", err)
	}
	if len(h.fetcher.fetched) != 0 {
		t.Fatalf("re-fetched fresh artifacts: %v", h.fetcher.fetched)
	}
}

func TestEnsureToolRefetchesBrokenArtifact(t *testing.T) {
	t.Parallel()

	tool := sampleTool()
	h := newHarness(tool)
	ctx := context.Background()

	if _, err := h.svc.EnsureTool(ctx, tool.ID); err != nil {
		t.Fatalf("EnsureTool: %v", err)
	}
	h.cache.broken[tool.ScriptPath] = true
	h.fetcher.fetched = nil

	if _, err := h.svc.EnsureTool(ctx, tool.ID); err != nil {
		t.Fatalf("EnsureTool after corruption: %v", err)
	}
	if len(h.fetcher.fetched) != 1 || h.fetcher.fetched[0] != tool.ScriptPath {
		t.Fatalf("fetched %v, want only the broken script", h.fetcher.fetched)
	}
}

func TestUnknownToolIsNotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(sampleTool())
	_, err := h.svc.Run(context.Background(), dto.RunInput{ToolID: "no-such-tool"})
	if !errors.Is(err, apperrors.ErrToolNotFound) {
		t.Fatalf("Run = %v, want ErrToolNotFound", err)
	}
}

func TestLedgerFailureDoesNotFailRun(t *testing.T) {
	t.Parallel()

	tool := sampleTool()
	h := newHarness(tool)
	h.history.err = errors.New("disk full")

	out, err := h.svc.Run(context.Background(), dto.RunInput{ToolID: tool.ID})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !out.Execution.Success {
		t.Fatal("execution result lost")
	}
}
