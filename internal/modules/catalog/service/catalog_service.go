package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	cachein "toolhub/internal/modules/cache/port/in"
	"toolhub/internal/modules/catalog/domain"
	"toolhub/internal/modules/catalog/dto"
	"toolhub/internal/modules/catalog/port/out"
	historydto "toolhub/internal/modules/history/dto"
	historyin "toolhub/internal/modules/history/port/in"
	preflightdto "toolhub/internal/modules/preflight/dto"
	preflightin "toolhub/internal/modules/preflight/port/in"
	runnerdto "toolhub/internal/modules/runner/dto"
	runnerin "toolhub/internal/modules/runner/port/in"
	settingsin "toolhub/internal/modules/settings/port/in"
	apperrors "toolhub/internal/platform/errors"
)

// CatalogService orchestrates a tool run end to end: fetch the
// manifest, make the artifacts locally available, run the check
// battery, execute, and record the outcome in the ledger.
type CatalogService struct {
	fetcher   out.Fetcher
	cache     cachein.Usecase
	preflight preflightin.Usecase
	runner    runnerin.Usecase
	history   historyin.Usecase
	settings  settingsin.Usecase
	log       zerolog.Logger
}

func NewCatalogService(
	fetcher out.Fetcher,
	cache cachein.Usecase,
	preflight preflightin.Usecase,
	runner runnerin.Usecase,
	history historyin.Usecase,
	settings settingsin.Usecase,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		fetcher:   fetcher,
		cache:     cache,
		preflight: preflight,
		runner:    runner,
		history:   history,
		settings:  settings,
		log:       log,
	}
}

func (s *CatalogService) List(ctx context.Context) ([]domain.Tool, error) {
	manifest, err := s.fetcher.FetchManifest(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return manifest.Tools, nil
}

func (s *CatalogService) Find(ctx context.Context, toolID string) (domain.Tool, error) {
	tools, err := s.List(ctx)
	if err != nil {
		return domain.Tool{}, err
	}
	for _, tool := range tools {
		if tool.ID == toolID {
			return tool, nil
		}
	}
	return domain.Tool{}, fmt.Errorf("%w: %q", apperrors.ErrToolNotFound, toolID)
}

// EnsureTool makes the tool's script and dependency artifacts locally
// available, refreshing anything stale or integrity-broken, and
// returns the local path of the script.
func (s *CatalogService) EnsureTool(ctx context.Context, toolID string) (string, error) {
	tool, err := s.Find(ctx, toolID)
	if err != nil {
		return "", err
	}
	if err := s.ensureArtifact(ctx, tool.ScriptPath); err != nil {
		return "", err
	}
	for _, dep := range tool.Dependencies {
		if err := s.ensureArtifact(ctx, dep); err != nil {
			return "", err
		}
	}
	localPath, ok := s.cache.Resolve(ctx, tool.ScriptPath)
	if !ok {
		return "", fmt.Errorf("%w: %q", apperrors.ErrNotCached, tool.ScriptPath)
	}
	return localPath, nil
}

// ensureArtifact refreshes the cached copy when it is stale or fails
// integrity verification. An integrity-broken artifact is never served
// as-is.
func (s *CatalogService) ensureArtifact(ctx context.Context, key string) error {
	if !s.cache.IsStale(ctx, key) && s.cache.VerifyIntegrity(ctx, key) {
		return nil
	}
	s.log.Debug().Str("key", key).Msg("refreshing artifact from catalog")
	content, err := s.fetcher.FetchContent(ctx, key)
	if err != nil {
		return fmt.Errorf("fetch %q: %w", key, err)
	}
	if _, err := s.cache.Store(ctx, key, content); err != nil {
		return fmt.Errorf("cache %q: %w", key, err)
	}
	return nil
}

func (s *CatalogService) Preflight(ctx context.Context, toolID string) (preflightdto.ReportOutput, error) {
	tool, err := s.Find(ctx, toolID)
	if err != nil {
		return preflightdto.ReportOutput{}, err
	}
	return s.preflightFor(ctx, tool)
}

func (s *CatalogService) preflightFor(ctx context.Context, tool domain.Tool) (preflightdto.ReportOutput, error) {
	endpoint, err := s.settings.DataEndpoint(ctx)
	if err != nil {
		return preflightdto.ReportOutput{}, fmt.Errorf("load data endpoint: %w", err)
	}
	req := preflightdto.RequirementsInput{
		ScriptKey:          tool.ScriptPath,
		RequiresElevation:  tool.RequiresElevation,
		RequiresConnection: tool.RequiresConnection,
		Dependencies:       tool.Dependencies,
	}
	return s.preflight.Validate(ctx, req, endpoint), nil
}

// Run ensures the tool's artifacts, validates the environment, runs
// the script, and records the outcome. A failing check battery blocks
// execution unless input.Force is set.
func (s *CatalogService) Run(ctx context.Context, input dto.RunInput) (dto.RunOutput, error) {
	tool, err := s.Find(ctx, input.ToolID)
	if err != nil {
		return dto.RunOutput{}, err
	}
	localPath, err := s.EnsureTool(ctx, tool.ID)
	if err != nil {
		return dto.RunOutput{}, err
	}

	report, err := s.preflightFor(ctx, tool)
	if err != nil {
		return dto.RunOutput{}, err
	}
	if !report.Passed && !input.Force {
		return dto.RunOutput{Report: report}, fmt.Errorf("%w: %q", apperrors.ErrPreFlightHold, tool.ID)
	}

	exec, err := s.runner.Execute(ctx, runnerdto.ExecuteInput{
		ScriptPath: localPath,
		Parameters: input.Parameters,
		OnOutput:   input.OnOutput,
		OnError:    input.OnError,
		OnProgress: input.OnProgress,
	})
	if err != nil {
		return dto.RunOutput{Report: report}, err
	}

	if _, err := s.history.Record(ctx, historydto.RecordInput{
		ToolID:      tool.ID,
		Success:     exec.Success,
		DurationMS:  exec.Duration.Milliseconds(),
		Output:      exec.Output,
		ErrorOutput: exec.ErrorOutput,
		CompletedAt: exec.CompletedAt,
	}); err != nil {
		s.log.Warn().Err(err).Str("tool", tool.ID).Msg("failed to record run in ledger")
	}

	return dto.RunOutput{Report: report, Execution: exec}, nil
}
