package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"toolhub/internal/bootstrap"
	catalogdto "toolhub/internal/modules/catalog/dto"
	preflightdto "toolhub/internal/modules/preflight/dto"
	"toolhub/internal/platform/config"
	apperrors "toolhub/internal/platform/errors"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var baseDir string

	root := &cobra.Command{
		Use:           "toolhub",
		Short:         "Back-office admin tool launcher",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&baseDir, "base-dir", defaultBaseDir(), "toolhub data directory")

	root.AddCommand(newTUICmd(&baseDir))
	root.AddCommand(newToolsCmd(&baseDir))
	root.AddCommand(newCacheCmd(&baseDir))
	root.AddCommand(newHistoryCmd(&baseDir))
	root.AddCommand(newSettingsCmd(&baseDir))
	return root
}

func defaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".toolhub"
	}
	return filepath.Join(home, ".toolhub")
}

func loadApp(baseDir string) (*bootstrap.App, error) {
	cfg, err := config.Load(baseDir, filepath.Join(baseDir, "toolhub.yaml"))
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

func newTUICmd(baseDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the toolhub terminal UI",
		RunE: func(_ *cobra.Command, _ []string) error {
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			return bootstrap.RunTUI(app)
		},
	}
}

func newToolsCmd(baseDir *string) *cobra.Command {
	tools := &cobra.Command{Use: "tools", Short: "Catalog tool operations"}

	tools.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List tools in the remote catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			items, err := app.CatalogCLI.List(context.Background())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no tools in catalog")
				return nil
			}
			for _, t := range items {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", t.ID, t.Title, t.Description)
			}
			return nil
		},
	})

	tools.AddCommand(&cobra.Command{
		Use:   "preflight <tool-id>",
		Short: "Run the pre-flight check battery for a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			report, err := app.CatalogCLI.Preflight(context.Background(), args[0])
			if err != nil {
				return err
			}
			printReport(cmd, report)
			return nil
		},
	})

	var params []string
	var force bool
	run := &cobra.Command{
		Use:   "run <tool-id>",
		Short: "Download, validate and execute a tool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parameters, err := parseParams(params)
			if err != nil {
				return err
			}
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			out, err := app.CatalogCLI.Run(context.Background(), catalogdto.RunInput{
				ToolID:     args[0],
				Parameters: parameters,
				Force:      force,
				OnOutput: func(line string) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
				},
				OnError: func(line string) {
					_, _ = fmt.Fprintln(cmd.ErrOrStderr(), line)
				},
				OnProgress: func(percent int) {
					_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "progress: %d%%\n", percent)
				},
			})
			if errors.Is(err, apperrors.ErrPreFlightHold) {
				printReport(cmd, out.Report)
				return err
			}
			if err != nil {
				return err
			}
			exec := out.Execution
			exitCode := "unknown"
			if exec.ExitCodeKnown {
				exitCode = fmt.Sprintf("%d", exec.ExitCode)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "success=%t exit=%s duration=%s\n", exec.Success, exitCode, exec.Duration.Round(time.Millisecond))
			return nil
		},
	}
	run.Flags().StringArrayVar(&params, "param", nil, "script parameter as name=value (repeatable)")
	run.Flags().BoolVar(&force, "force", false, "execute even when pre-flight checks fail")
	tools.AddCommand(run)

	return tools
}

func printReport(cmd *cobra.Command, report preflightdto.ReportOutput) {
	for _, check := range report.Checks {
		status := "pass"
		if !check.Passed {
			status = "FAIL"
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s", status, check.Name)
		if check.Message != "" {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\t%s", check.Message)
		}
		if check.Remediation != "" && check.Remediation != "none" {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "\t(remediation: %s)", check.Remediation)
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "battery passed=%t\n", report.Passed)
}

func parseParams(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	params := make(map[string]string, len(raw))
	for _, item := range raw {
		name, value, ok := strings.Cut(item, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid --param %q, want name=value", item)
		}
		params[name] = value
	}
	return params, nil
}

func newCacheCmd(baseDir *string) *cobra.Command {
	cache := &cobra.Command{Use: "cache", Short: "Artifact cache operations"}

	cache.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show cache usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			usage := app.CacheCLI.Usage(context.Background())
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "files=%d bytes=%d\n", usage.FileCount, usage.TotalBytes)
			return nil
		},
	})

	cache.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove all cached artifacts and metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			if err := app.CacheCLI.ClearAll(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "cache cleared")
			return nil
		},
	})

	cache.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Remove expired cached artifacts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			out, err := app.CacheCLI.SweepExpired(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired artifacts\n", out.Removed)
			return nil
		},
	})

	cache.AddCommand(&cobra.Command{
		Use:   "janitor",
		Short: "Run the scheduled expiration sweep in the foreground",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			if err := app.Janitor.Start(app.SweepSchedule); err != nil {
				return err
			}
			defer app.Janitor.Stop()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sweeping on %q, ctrl+c to stop\n", app.SweepSchedule)

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop
			return nil
		},
	})

	return cache
}

func newHistoryCmd(baseDir *string) *cobra.Command {
	history := &cobra.Command{Use: "history", Short: "Execution ledger"}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "Show recent runs, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			runs, err := app.HistoryCLI.Recent(context.Background(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}
			for _, r := range runs {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\tsuccess=%t\t%dms\t%s\n",
					r.CompletedAt.Format(time.RFC3339), r.ToolID, r.Success, r.DurationMS, r.ID)
			}
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 0, "max runs to show (0 = default)")
	history.AddCommand(list)

	history.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Per-tool aggregates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			stats, err := app.HistoryCLI.Stats(context.Background())
			if err != nil {
				return err
			}
			if len(stats) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no runs recorded")
				return nil
			}
			for _, s := range stats {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\truns=%d failures=%d success=%.0f%% avg=%dms last=%s\n",
					s.ToolID, s.Runs, s.Failures, s.SuccessRate*100, s.AvgDurationMS, s.LastRunAt.Format(time.RFC3339))
			}
			return nil
		},
	})

	var olderThan time.Duration
	purge := &cobra.Command{
		Use:   "purge --older-than <duration>",
		Short: "Delete ledger entries older than a duration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			purged, err := app.HistoryCLI.Purge(context.Background(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "purged %d runs\n", purged)
			return nil
		},
	}
	purge.Flags().DurationVar(&olderThan, "older-than", 0, "age threshold, e.g. 720h")
	history.AddCommand(purge)

	return history
}

func newSettingsCmd(baseDir *string) *cobra.Command {
	settings := &cobra.Command{Use: "settings", Short: "Persisted preferences"}

	settings.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Show a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			value, err := app.SettingsCLI.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	})

	settings.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			return app.SettingsCLI.Set(context.Background(), args[0], args[1])
		},
	})

	settings.AddCommand(&cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			return app.SettingsCLI.Delete(context.Background(), args[0])
		},
	})

	endpoint := &cobra.Command{Use: "endpoint", Short: "Saved data endpoint"}

	endpoint.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the saved data endpoint",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			ep, err := app.SettingsCLI.DataEndpoint(context.Background())
			if err != nil {
				return err
			}
			if !ep.Configured() {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no data endpoint saved")
				return nil
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), ep.Address())
			return nil
		},
	})

	var host string
	var port int
	set := &cobra.Command{
		Use:   "set --host <host> --port <port>",
		Short: "Save the data endpoint used by pre-flight",
		RunE: func(_ *cobra.Command, _ []string) error {
			if strings.TrimSpace(host) == "" || port <= 0 {
				return fmt.Errorf("--host and --port are required")
			}
			app, err := loadApp(*baseDir)
			if err != nil {
				return err
			}
			return app.SettingsCLI.SetDataEndpoint(context.Background(), host, port)
		},
	}
	set.Flags().StringVar(&host, "host", "", "endpoint host")
	set.Flags().IntVar(&port, "port", 0, "endpoint port")
	endpoint.AddCommand(set)

	settings.AddCommand(endpoint)
	return settings
}
