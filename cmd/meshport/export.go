package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"partworks/meshport/pkg/cli"
	"partworks/meshport/pkg/config"
	"partworks/meshport/pkg/export"
	"partworks/meshport/pkg/history"
	"partworks/meshport/pkg/host"
	"partworks/meshport/pkg/ledger"
	"partworks/meshport/pkg/manifest"
	"partworks/meshport/pkg/plan"
	"partworks/meshport/pkg/telemetry/logging"
	"partworks/meshport/pkg/telemetry/metrics"
	"partworks/meshport/pkg/vcs"
)

var exportFlags struct {
	manifestPath string
	designPath   string
	outputDir    string
	incremental  bool
	commit       bool
	jsonOutput   bool
	quiet        bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export components whose geometry changed",
	Long: `Export manifest components whose geometry changed since the last run.

The run plans against the version ledger first: components whose
fingerprint matches their ledger entry are skipped, everything else is
exported and recorded. A failed file never blocks the rest of the run.

Examples:
  # Export using the manifest in the current folder
  meshport export --design design.json

  # Export into a different folder and commit the results
  meshport export --design design.json --output ./exports --commit

  # Machine-readable report
  meshport export --design design.json --json`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFlags.manifestPath, "manifest", "m", manifest.DefaultFilename, "export manifest path")
	exportCmd.Flags().StringVarP(&exportFlags.designPath, "design", "d", "", "design description path (required)")
	exportCmd.Flags().StringVarP(&exportFlags.outputDir, "output", "o", "", "export folder (overrides config)")
	exportCmd.Flags().BoolVar(&exportFlags.incremental, "incremental", false, "save the ledger after every file")
	exportCmd.Flags().BoolVar(&exportFlags.commit, "commit", false, "commit exported files and the ledger to git")
	exportCmd.Flags().BoolVar(&exportFlags.jsonOutput, "json", false, "print the run report as JSON")
	exportCmd.Flags().BoolVarP(&exportFlags.quiet, "quiet", "q", false, "suppress progress output")
	exportCmd.MarkFlagRequired("design")
}

// runEnv bundles everything a planned run needs.
type runEnv struct {
	cfg         *config.Config
	logger      *logging.Logger
	host        *host.ScriptedHost
	specs       []manifest.Spec
	led         *ledger.Ledger
	outputDir   string
	ledgerPath  string
	incremental bool
}

// prepareRun loads the manifest, design description, and ledger for a run.
func prepareRun(cfg *config.Config, logger *logging.Logger, manifestPath, designPath, outputOverride string) (*runEnv, error) {
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, cli.NewConfigError(manifestPath, err.Error())
	}
	specs, err := m.Resolve()
	if err != nil {
		return nil, cli.NewConfigError(manifestPath, err.Error())
	}

	h, err := host.LoadScripted(designPath)
	if err != nil {
		return nil, cli.NewConfigError(designPath, err.Error())
	}

	outputDir := outputOverride
	if outputDir == "" {
		outputDir = cfg.Export.OutputDir
	}
	ledgerPath := filepath.Join(outputDir, cfg.Ledger.Filename)

	led, err := ledger.Load(ledgerPath)
	if err != nil {
		if !errors.Is(err, ledger.ErrCorrupt) {
			return nil, err
		}
		// A corrupt sidecar must not strand the folder: run from an empty
		// ledger (everything re-exports) and say so loudly.
		logger.Warn("ledger sidecar is corrupt; treating as empty, all files will re-export",
			"path", ledgerPath, "error", err)
		led = ledger.New()
	}

	return &runEnv{
		cfg:         cfg,
		logger:      logger,
		host:        h,
		specs:       specs,
		led:         led,
		outputDir:   outputDir,
		ledgerPath:  ledgerPath,
		incremental: cfg.Export.IncrementalSave,
	}, nil
}

// buildActions snapshots the host and plans the run.
func buildActions(env *runEnv) ([]plan.Action, []plan.Warning, error) {
	seen := make(map[string]bool, len(env.specs))
	names := make([]string, 0, len(env.specs))
	for _, spec := range env.specs {
		if !seen[spec.Name] {
			seen[spec.Name] = true
			names = append(names, spec.Name)
		}
	}

	snap, err := host.Take(env.host, names)
	if err != nil {
		return nil, nil, err
	}
	return plan.Build(env.specs, snap, env.led)
}

// warnIfDirty warns when the ledger sidecar has uncommitted changes,
// signaling that another machine may not see this folder's latest state.
func warnIfDirty(env *runEnv) {
	if !env.cfg.VCS.WarnDirty {
		return
	}

	repo, err := vcs.Open(env.outputDir)
	if err != nil {
		if !errors.Is(err, vcs.ErrNotARepository) {
			env.logger.Warn("git check failed", "error", err)
		}
		return
	}

	if info, err := repo.Head(); err == nil {
		env.logger.Debug("repository state", "head", info.SHA, "author", info.Author)
	}

	if _, err := os.Stat(env.ledgerPath); err != nil {
		return
	}
	dirty, err := repo.IsDirty(env.ledgerPath)
	if err != nil {
		env.logger.Warn("git status check failed", "error", err)
		return
	}
	if dirty {
		env.logger.Warn("ledger sidecar has uncommitted changes",
			"path", env.ledgerPath)
	}
}

// commitRun commits the run's files and the sidecar, returning the commit SHA.
func commitRun(env *runEnv, report *export.Report) (string, error) {
	if len(report.Committed) == 0 {
		return "", nil
	}

	repo, err := vcs.Open(env.outputDir)
	if err != nil {
		return "", err
	}

	paths := make([]string, 0, len(report.Committed)+1)
	for _, r := range report.Committed {
		paths = append(paths, filepath.Join(env.outputDir, filepath.FromSlash(r.Action.Path)))
	}
	paths = append(paths, env.ledgerPath)

	message := fmt.Sprintf("%s export %d file(s) from document %s",
		env.cfg.VCS.CommitMessagePrefix, len(report.Committed), report.DocumentVersion)
	return repo.Commit(paths, message)
}

// recordHistory appends the run to the history database. History is
// best-effort: failures are logged, never fatal.
func recordHistory(env *runEnv, report *export.Report, commitSHA string) {
	if !env.cfg.History.Enabled {
		return
	}

	if dir := filepath.Dir(env.cfg.History.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			env.logger.Warn("failed to create history directory", "error", err)
			return
		}
	}

	store, err := history.Open(env.cfg.History.Path)
	if err != nil {
		env.logger.Warn("failed to open history database", "error", err)
		return
	}
	defer store.Close()

	run := history.Run{
		ID:              report.RunID,
		StartedAt:       report.StartedAt,
		FinishedAt:      report.FinishedAt,
		DocumentVersion: report.DocumentVersion,
		Committed:       len(report.Committed),
		Failed:          len(report.Failed),
		Warnings:        len(report.Warnings),
		CommitSHA:       commitSHA,
	}

	files := make([]history.FileRecord, 0, len(report.Committed)+len(report.Failed))
	for _, r := range report.Committed {
		files = append(files, history.FileRecord{
			RunID:     report.RunID,
			Path:      r.Action.Path,
			Component: r.Action.Component,
			Result:    "committed",
			Reason:    string(r.Action.Reason),
			Duration:  r.Duration,
		})
	}
	for _, r := range report.Failed {
		rec := history.FileRecord{
			RunID:     report.RunID,
			Path:      r.Action.Path,
			Component: r.Action.Component,
			Result:    "failed",
			Reason:    string(r.Action.Reason),
			Duration:  r.Duration,
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		files = append(files, rec)
	}

	if err := store.RecordRun(context.Background(), run, files); err != nil {
		env.logger.Warn("failed to record run history", "error", err)
	}
}

// executeRun plans and runs one export against the prepared environment.
func executeRun(ctx context.Context, env *runEnv, collector *metrics.Collector, progress cli.ProgressReporter) (*export.Report, error) {
	warnIfDirty(env)

	actions, warnings, err := buildActions(env)
	if err != nil {
		return nil, err
	}

	if progress == nil {
		progress = cli.NopProgress{}
	}
	progress.Start(len(actions))

	executor := export.New(env.host, env.led, export.Options{
		OutputDir:       env.outputDir,
		LedgerPath:      env.ledgerPath,
		IncrementalSave: env.incremental,
		Logger:          env.logger.Slog(),
		Metrics:         collector,
		OnAttempt:       func(a plan.Action) { progress.File(a.Path) },
	})

	report, err := executor.Run(ctx, actions, warnings)
	if err != nil {
		return report, err
	}
	progress.Finish()

	commitSHA := ""
	if exportFlags.commit || env.cfg.VCS.Commit {
		commitSHA, err = commitRun(env, report)
		if err != nil {
			env.logger.Error("git commit failed", "error", err)
		} else if commitSHA != "" {
			env.logger.Info("committed run", "sha", commitSHA)
		}
	}

	recordHistory(env, report, commitSHA)
	return report, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadToolConfig()
	if err != nil {
		return cli.NewCommandError("export", err)
	}

	env, err := prepareRun(cfg, logger, exportFlags.manifestPath, exportFlags.designPath, exportFlags.outputDir)
	if err != nil {
		return cli.NewCommandError("export", err)
	}
	if exportFlags.incremental {
		env.incremental = true
	}

	var progress cli.ProgressReporter = cli.NopProgress{}
	if !exportFlags.quiet && !exportFlags.jsonOutput {
		progress = cli.NewProgressReporter(os.Stderr)
	}

	ctx := cli.SetupSignalHandler()
	report, err := executeRun(ctx, env, nil, progress)
	if err != nil {
		return cli.NewCommandError("export", err)
	}

	if exportFlags.jsonOutput {
		if err := cli.RenderReportJSON(os.Stdout, report); err != nil {
			return cli.NewCommandError("export", err)
		}
	} else {
		if err := cli.RenderReport(os.Stdout, report); err != nil {
			return cli.NewCommandError("export", err)
		}
	}

	if len(report.Failed) > 0 {
		return cli.NewCommandError("export", fmt.Errorf("%d file(s) failed", len(report.Failed)))
	}
	return nil
}
