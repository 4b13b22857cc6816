package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	cachedto "toolhub/internal/modules/cache/dto"
	catalogdto "toolhub/internal/modules/catalog/dto"
	historydto "toolhub/internal/modules/history/dto"
	preflightdto "toolhub/internal/modules/preflight/dto"
	"toolhub/internal/ui/components"
)

type fakeCatalog struct{}

func (fakeCatalog) List(context.Context) ([]catalogdto.ToolOutput, error) { return nil, nil }

func (fakeCatalog) Preflight(context.Context, string) (preflightdto.ReportOutput, error) {
	return preflightdto.ReportOutput{Passed: true}, nil
}

func (fakeCatalog) Run(context.Context, catalogdto.RunInput) (catalogdto.RunOutput, error) {
	return catalogdto.RunOutput{}, nil
}

type fakeRunner struct{ stopped bool }

func (f *fakeRunner) Stop()        { f.stopped = true }
func (f *fakeRunner) Active() bool { return false }

type fakeCache struct {
	swept   bool
	cleared bool
	err     error
}

func (f *fakeCache) ClearAll(context.Context) error {
	f.cleared = true
	return f.err
}

func (f *fakeCache) SweepExpired(context.Context) (cachedto.SweepOutput, error) {
	f.swept = true
	return cachedto.SweepOutput{Removed: 2}, f.err
}

type fakeHistory struct{}

func (fakeHistory) Recent(context.Context, int) ([]historydto.RunOutput, error) { return nil, nil }

func (fakeHistory) Stats(context.Context) ([]historydto.ToolStatsOutput, error) { return nil, nil }

func newTestModel(cache *fakeCache) Model {
	return NewModel(fakeCatalog{}, &fakeRunner{}, cache, fakeHistory{})
}

// Every advertised palette hint must land in a real dispatch branch, not
// the unknown-command fallback.
func TestEveryPaletteHintDispatches(t *testing.T) {
	t.Parallel()
	for _, hint := range components.Hints() {
		verb, _, _ := strings.Cut(hint, " ")
		input := verb
		if strings.HasPrefix(verb, "tool:") {
			input = verb + " sample-tool"
		}

		m := newTestModel(&fakeCache{})
		updated, _ := m.executePalette(input)
		got := updated.(Model)
		if strings.HasPrefix(got.status, "unknown command") {
			t.Errorf("hint %q is advertised but not dispatched: status %q", hint, got.status)
		}
	}
}

func TestPaletteCacheSweepInvokesCache(t *testing.T) {
	t.Parallel()
	cache := &fakeCache{}
	m := newTestModel(cache)

	updated, cmd := m.executePalette("cache:sweep")
	if cmd == nil {
		t.Fatalf("cache:sweep must return a command")
	}
	msg := cmd()
	op, ok := msg.(cacheOpMsg)
	if !ok {
		t.Fatalf("expected cacheOpMsg, got %T", msg)
	}
	if !cache.swept {
		t.Fatalf("sweep was not forwarded to the cache port")
	}
	if !strings.Contains(op.status, "2") {
		t.Fatalf("sweep outcome should report the removal count: %q", op.status)
	}

	after, _ := updated.(Model).Update(op)
	if got := after.(Model).status; !strings.Contains(got, "2") {
		t.Fatalf("status bar should show the sweep outcome, got %q", got)
	}
}

func TestPaletteCacheClearReportsFailure(t *testing.T) {
	t.Parallel()
	cache := &fakeCache{err: errors.New("db locked")}
	m := newTestModel(cache)

	_, cmd := m.executePalette("cache:clear")
	if cmd == nil {
		t.Fatalf("cache:clear must return a command")
	}
	msg := cmd()
	op, ok := msg.(cacheOpMsg)
	if !ok {
		t.Fatalf("expected cacheOpMsg, got %T", msg)
	}
	if !cache.cleared {
		t.Fatalf("clear was not forwarded to the cache port")
	}
	if op.err == nil {
		t.Fatalf("clear failure must be surfaced")
	}

	after, _ := m.Update(op)
	if got := after.(Model).status; !strings.Contains(got, "db locked") {
		t.Fatalf("status bar should show the failure, got %q", got)
	}
}
