package main

import (
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"partworks/meshport/pkg/cli"
	"partworks/meshport/pkg/manifest"
	"partworks/meshport/pkg/telemetry/metrics"
	"partworks/meshport/pkg/watch"
)

var watchFlags struct {
	manifestPath string
	designPath   string
	outputDir    string
	schedule     string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-export automatically when inputs change",
	Long: `Watch the manifest and the design description and re-run the export
whenever either changes. Rapid save bursts are debounced into one run.

With --schedule (or watch.schedule in the config), runs also fire on a
cron schedule, which catches document changes that don't touch either
watched file.

When telemetry.metrics.enabled is set, a Prometheus endpoint serves run
and export counters for the lifetime of the watch.

Examples:
  meshport watch --design design.json
  meshport watch --design design.json --schedule "*/15 * * * *"`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.manifestPath, "manifest", "m", manifest.DefaultFilename, "export manifest path")
	watchCmd.Flags().StringVarP(&watchFlags.designPath, "design", "d", "", "design description path (required)")
	watchCmd.Flags().StringVarP(&watchFlags.outputDir, "output", "o", "", "export folder (overrides config)")
	watchCmd.Flags().StringVar(&watchFlags.schedule, "schedule", "", "cron schedule for periodic runs (overrides config)")
	watchCmd.MarkFlagRequired("design")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadToolConfig()
	if err != nil {
		return cli.NewCommandError("watch", err)
	}

	schedule := watchFlags.schedule
	if schedule == "" {
		schedule = cfg.Watch.Schedule
	}

	collector := metrics.NewCollector()
	if cfg.Telemetry.Metrics.Enabled {
		server := &http.Server{
			Addr:              cfg.Telemetry.Metrics.ListenAddress,
			Handler:           collector.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics endpoint listening", "address", server.Addr)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics endpoint failed", "error", err)
			}
		}()
		defer server.Close()
	}

	ctx := cli.SetupSignalHandler()

	// Each trigger reloads everything: the manifest or design is exactly
	// what changed.
	runOnce := func() error {
		env, err := prepareRun(cfg, logger, watchFlags.manifestPath, watchFlags.designPath, watchFlags.outputDir)
		if err != nil {
			return err
		}
		report, err := executeRun(ctx, env, collector, nil)
		if err != nil {
			return err
		}
		logger.Info("watch run finished",
			"committed", len(report.Committed),
			"failed", len(report.Failed),
			"warnings", len(report.Warnings))
		return nil
	}

	// One run up front so the folder is current before we start waiting.
	if err := runOnce(); err != nil {
		logger.Error("initial run failed", "error", err)
	}

	watcher, err := watch.New(&watch.Config{
		Paths:            []string{watchFlags.manifestPath, watchFlags.designPath},
		DebounceInterval: cfg.Watch.Debounce,
		Schedule:         schedule,
	}, logger.Slog())
	if err != nil {
		return cli.NewCommandError("watch", err)
	}
	defer watcher.Stop()

	if err := watcher.Watch(ctx, runOnce); err != nil {
		return cli.NewCommandError("watch", err)
	}
	return nil
}
