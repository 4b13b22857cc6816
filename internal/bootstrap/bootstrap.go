package bootstrap

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	cacheinadapter "toolhub/internal/modules/cache/adapter/in"
	cacheoutadapter "toolhub/internal/modules/cache/adapter/out"
	cacheservice "toolhub/internal/modules/cache/service"
	cacheusecase "toolhub/internal/modules/cache/usecase"
	cataloginadapter "toolhub/internal/modules/catalog/adapter/in"
	catalogoutadapter "toolhub/internal/modules/catalog/adapter/out"
	catalogservice "toolhub/internal/modules/catalog/service"
	catalogusecase "toolhub/internal/modules/catalog/usecase"
	historyinadapter "toolhub/internal/modules/history/adapter/in"
	historyoutadapter "toolhub/internal/modules/history/adapter/out"
	historyservice "toolhub/internal/modules/history/service"
	historyusecase "toolhub/internal/modules/history/usecase"
	preflightinadapter "toolhub/internal/modules/preflight/adapter/in"
	preflightoutadapter "toolhub/internal/modules/preflight/adapter/out"
	preflightservice "toolhub/internal/modules/preflight/service"
	preflightusecase "toolhub/internal/modules/preflight/usecase"
	runnerinadapter "toolhub/internal/modules/runner/adapter/in"
	runneroutadapter "toolhub/internal/modules/runner/adapter/out"
	runnerservice "toolhub/internal/modules/runner/service"
	runnerusecase "toolhub/internal/modules/runner/usecase"
	settingsinadapter "toolhub/internal/modules/settings/adapter/in"
	settingsoutadapter "toolhub/internal/modules/settings/adapter/out"
	settingsservice "toolhub/internal/modules/settings/service"
	settingsusecase "toolhub/internal/modules/settings/usecase"
	"toolhub/internal/platform/clock"
	"toolhub/internal/platform/config"
	"toolhub/internal/platform/id"
	"toolhub/internal/platform/logging"
	uiapp "toolhub/internal/ui/app"
)

type App struct {
	CatalogCLI   cataloginadapter.CLIHandler
	CacheCLI     cacheinadapter.CLIHandler
	PreFlightCLI preflightinadapter.CLIHandler
	RunnerCLI    runnerinadapter.CLIHandler
	HistoryCLI   historyinadapter.CLIHandler
	SettingsCLI  settingsinadapter.CLIHandler

	Janitor       *cacheservice.Janitor
	SweepSchedule string
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.UUID{}
	log := logging.New("toolhub")

	metadataStore, err := cacheoutadapter.NewSQLiteMetadataStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new cache metadata store: %w", err)
	}
	cacheSvc := cacheservice.NewCacheService(cfg.CacheDir, cfg.CacheTTL, metadataStore, clk, log)
	cacheUC := cacheusecase.NewInteractor(cacheSvc)
	janitor := cacheservice.NewJanitor(cacheSvc, log)

	preflightSvc := preflightservice.NewPreFlightService(
		preflightoutadapter.NewOSPrivilegeProbe(),
		preflightoutadapter.NewTCPDialer(),
		preflightoutadapter.NewExecRuntimeProbe(),
		preflightoutadapter.NewCacheArtifactResolver(cacheUC),
		log,
	)
	preflightUC := preflightusecase.NewInteractor(preflightSvc)

	runnerFactory := runneroutadapter.NewGRPCSessionFactory(cfg.RunnerBinary, cfg.CacheDir)
	runnerUC := runnerusecase.NewInteractor(runnerservice.NewRunnerService(runnerFactory, clk, log))

	runStore, err := historyoutadapter.NewSQLiteRunStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new run store: %w", err)
	}
	historyUC := historyusecase.NewInteractor(historyservice.NewHistoryService(runStore, ids))

	kvStore, err := settingsoutadapter.NewSQLiteKVStore(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new settings store: %w", err)
	}
	settingsUC := settingsusecase.NewInteractor(settingsservice.NewSettingsService(kvStore, log))

	// Seed the saved data endpoint from the config file once; a value
	// already in the store wins.
	if cfg.DataEndpoint.Configured() {
		saved, err := settingsUC.DataEndpoint(context.Background())
		if err == nil && !saved.Configured() {
			if err := settingsUC.SetDataEndpoint(context.Background(), cfg.DataEndpoint); err != nil {
				log.Warn().Err(err).Msg("failed to seed data endpoint")
			}
		}
	}

	catalogUC := catalogusecase.NewInteractor(catalogservice.NewCatalogService(
		catalogoutadapter.NewHTTPFetcher(cfg.CatalogURL),
		cacheUC,
		preflightUC,
		runnerUC,
		historyUC,
		settingsUC,
		log,
	))

	return &App{
		CatalogCLI:   cataloginadapter.NewCLIHandler(catalogUC),
		CacheCLI:     cacheinadapter.NewCLIHandler(cacheUC),
		PreFlightCLI: preflightinadapter.NewCLIHandler(preflightUC),
		RunnerCLI:    runnerinadapter.NewCLIHandler(runnerUC),
		HistoryCLI:   historyinadapter.NewCLIHandler(historyUC),
		SettingsCLI:  settingsinadapter.NewCLIHandler(settingsUC),
		Janitor:       janitor,
		SweepSchedule: cfg.SweepSchedule,
	}, nil
}

// RunTUI runs the terminal UI with the cache janitor sweeping in the
// background for the lifetime of the session.
func RunTUI(app *App) error {
	if err := app.Janitor.Start(app.SweepSchedule); err != nil {
		return err
	}
	defer app.Janitor.Stop()

	model := uiapp.NewModel(app.CatalogCLI, app.RunnerCLI, app.CacheCLI, app.HistoryCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
