package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"partworks/meshport/pkg/host"
	"partworks/meshport/pkg/ledger"
	"partworks/meshport/pkg/plan"
	"partworks/meshport/pkg/telemetry/metrics"
)

// Options configures an Executor.
type Options struct {
	// OutputDir is the export folder all action paths are relative to.
	OutputDir string

	// LedgerPath is where the version ledger sidecar is persisted.
	LedgerPath string

	// IncrementalSave persists the ledger after every committed action
	// instead of once at the end, bounding loss if the run is interrupted.
	IncrementalSave bool

	// Logger receives structured run logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Metrics receives export counters. May be nil.
	Metrics *metrics.Collector

	// Now is the clock used for ledger timestamps. Defaults to time.Now.
	Now func() time.Time

	// OnAttempt, when set, is called before each action is attempted.
	// The CLI uses it for progress output.
	OnAttempt func(plan.Action)
}

// ActionResult is the outcome of one attempted action.
type ActionResult struct {
	// Action is the planned action that was attempted.
	Action plan.Action

	// Err is nil for committed actions and the export failure otherwise.
	Err error

	// Duration is how long the host export call took.
	Duration time.Duration
}

// Report summarizes a run.
type Report struct {
	// RunID uniquely identifies the run.
	RunID string

	// DocumentVersion is the host document version the run exported from.
	DocumentVersion string

	// StartedAt and FinishedAt bracket the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// Committed lists actions whose files were written and recorded.
	Committed []ActionResult

	// Failed lists actions whose export failed; their ledger entries are
	// untouched so the next run re-attempts them.
	Failed []ActionResult

	// Warnings carries the planner's per-component warnings through to the
	// end-of-run summary.
	Warnings []plan.Warning

	// LedgerSaved reports whether the sidecar was persisted.
	LedgerSaved bool
}

// Executor drives planned actions against the host and commits results into
// the ledger.
type Executor struct {
	host    host.Host
	led     *ledger.Ledger
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

// New creates an Executor that mutates the given ledger in memory and
// persists it to opts.LedgerPath.
func New(h host.Host, led *ledger.Ledger, opts Options) *Executor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Executor{
		host:    h,
		led:     led,
		opts:    opts,
		logger:  logger,
		metrics: opts.Metrics,
		now:     now,
	}
}

// Run attempts every action in order and returns the run report. The only
// error Run itself returns is a failure to persist the ledger; per-action
// export failures are reported in Report.Failed, not as an error, because
// partial success is an expected outcome.
func (e *Executor) Run(ctx context.Context, actions []plan.Action, warnings []plan.Warning) (*Report, error) {
	report := &Report{
		RunID:           uuid.NewString(),
		DocumentVersion: e.host.DocumentVersion(),
		StartedAt:       e.now(),
		Warnings:        warnings,
	}

	logger := e.logger.With("run_id", report.RunID)
	logger.Info("export run started",
		"actions", len(actions),
		"output_dir", e.opts.OutputDir,
		"document_version", report.DocumentVersion)

	for _, action := range actions {
		if err := ctx.Err(); err != nil {
			// Interrupted: stop attempting. Everything committed so far is
			// already in the in-memory ledger and gets persisted below.
			logger.Warn("run interrupted; remaining actions not attempted",
				"component", action.Component)
			break
		}

		if e.opts.OnAttempt != nil {
			e.opts.OnAttempt(action)
		}

		result := e.attempt(ctx, logger, action)
		if result.Err != nil {
			report.Failed = append(report.Failed, result)
			e.metrics.RecordExport(metrics.ResultFailed, result.Duration)
			logger.Error("export failed",
				"component", action.Component,
				"path", action.Path,
				"error", result.Err)
			continue
		}

		e.commit(action)
		report.Committed = append(report.Committed, result)
		e.metrics.RecordExport(metrics.ResultCommitted, result.Duration)
		logger.Info("export committed",
			"component", action.Component,
			"path", action.Path,
			"reason", action.Reason,
			"duration", result.Duration)

		if e.opts.IncrementalSave {
			if err := e.led.Save(e.opts.LedgerPath); err != nil {
				return report, fmt.Errorf("failed to save ledger incrementally: %w", err)
			}
			report.LedgerSaved = true
		}
	}

	report.FinishedAt = e.now()

	// Persist once, reflecting only the committed subset. A run that
	// committed nothing leaves the sidecar byte-for-byte untouched.
	if len(report.Committed) > 0 && !e.opts.IncrementalSave {
		if err := e.led.Save(e.opts.LedgerPath); err != nil {
			return report, fmt.Errorf("failed to save ledger: %w", err)
		}
		report.LedgerSaved = true
	}

	e.metrics.RecordRun(e.led.Len())
	logger.Info("export run finished",
		"committed", len(report.Committed),
		"failed", len(report.Failed),
		"warnings", len(report.Warnings),
		"duration", report.FinishedAt.Sub(report.StartedAt))

	return report, nil
}

// attempt invokes the host export for one action and verifies the result.
func (e *Executor) attempt(ctx context.Context, logger *slog.Logger, action plan.Action) ActionResult {
	dest := filepath.Join(e.opts.OutputDir, filepath.FromSlash(action.Path))

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return ActionResult{Action: action, Err: fmt.Errorf("failed to create export directory: %w", err)}
	}

	start := e.now()
	err := e.host.ExportMesh(ctx, action.Ref, action.Rotation, dest, action.Format)
	duration := e.now().Sub(start)

	if err != nil {
		return ActionResult{
			Action:   action,
			Err:      fmt.Errorf("host export failed: %w", err),
			Duration: duration,
		}
	}

	// The host reported success; trust nothing, check the file.
	info, err := os.Stat(dest)
	if err != nil {
		return ActionResult{
			Action:   action,
			Err:      fmt.Errorf("host reported success but no file at %q: %w", dest, err),
			Duration: duration,
		}
	}
	if info.Size() == 0 {
		return ActionResult{
			Action:   action,
			Err:      fmt.Errorf("host produced an empty file at %q", dest),
			Duration: duration,
		}
	}

	return ActionResult{Action: action, Duration: duration}
}

// commit records a verified export in the in-memory ledger.
func (e *Executor) commit(action plan.Action) {
	e.led.Put(action.Path, ledger.Entry{
		Fingerprint:           action.Fingerprint,
		ExportedAt:            e.now().UTC(),
		SourceDocumentVersion: e.host.DocumentVersion(),
		InstanceCount:         action.InstanceCount,
		Component:             action.Component,
	})
}
