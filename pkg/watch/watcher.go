package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/robfig/cron/v3"
)

// Config contains configuration for the input watcher.
type Config struct {
	// Paths are the files whose changes trigger a run, typically the
	// export manifest and the design description.
	Paths []string

	// DebounceInterval is the quiet period required after a change before
	// a run is triggered (default: 500ms). Editors often save a file with
	// several write and rename events in quick succession.
	DebounceInterval time.Duration

	// Schedule is an optional cron expression; when set, runs also fire
	// on the schedule regardless of file changes.
	Schedule string
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() *Config {
	return &Config{
		DebounceInterval: 500 * time.Millisecond,
	}
}

// Watcher triggers export runs on input file changes and, optionally, on a
// cron schedule.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	config   *Config
	debounce *debouncer

	// watched maps cleaned absolute paths to true; events are filtered
	// against it because the parent directories are what fsnotify watches.
	watched map[string]bool

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// New creates a watcher for the configured input files.
func New(config *Config, logger *slog.Logger) (*Watcher, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.DebounceInterval <= 0 {
		config.DebounceInterval = DefaultConfig().DebounceInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	if len(config.Paths) == 0 && config.Schedule == "" {
		return nil, fmt.Errorf("nothing to watch: no paths and no schedule")
	}

	if config.Schedule != "" {
		if _, err := cron.ParseStandard(config.Schedule); err != nil {
			return nil, fmt.Errorf("invalid schedule %q: %w", config.Schedule, err)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	watched := make(map[string]bool, len(config.Paths))
	for _, p := range config.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to resolve %q: %w", p, err)
		}
		watched[filepath.Clean(abs)] = true
	}

	return &Watcher{
		watcher:  fw,
		logger:   logger,
		config:   config,
		debounce: newDebouncer(config.DebounceInterval),
		watched:  watched,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Watch blocks until the context is cancelled or Stop is called, invoking
// onTrigger whenever a watched file changes (after debouncing) or the cron
// schedule fires. Errors from onTrigger are logged, never fatal: a broken
// manifest edit should not kill the watch loop.
func (w *Watcher) Watch(ctx context.Context, onTrigger func() error) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		close(w.doneCh)
	}()

	// Watch parent directories, not the files themselves: editors that
	// save via rename replace the inode and a direct file watch goes
	// silent after the first save.
	dirs := make(map[string]bool)
	for path := range w.watched {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %q: %w", dir, err)
		}
	}

	var schedule *cron.Cron
	if w.config.Schedule != "" {
		schedule = cron.New()
		_, err := schedule.AddFunc(w.config.Schedule, func() {
			w.logger.Info("Scheduled run triggered", "schedule", w.config.Schedule)
			if err := onTrigger(); err != nil {
				w.logger.Error("Scheduled run failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule runs: %w", err)
		}
		schedule.Start()
		defer schedule.Stop()
	}

	w.logger.Info("Watching for changes",
		"paths", len(w.watched),
		"debounce_ms", w.config.DebounceInterval.Milliseconds(),
		"schedule", w.config.Schedule,
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watcher stopped (context cancelled)")
			return nil

		case <-w.stopCh:
			w.logger.Info("Watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			if !w.shouldProcessEvent(event) {
				continue
			}

			w.logger.Debug("Input change detected",
				"path", event.Name,
				"op", event.Op.String(),
			)

			w.debounce.trigger(func() {
				w.logger.Info("Triggering run", "path", event.Name)
				if err := onTrigger(); err != nil {
					w.logger.Error("Run failed", "error", err)
				}
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("Watcher error", "error", err)
			// Keep watching despite errors.
		}
	}
}

// Stop stops the watcher and waits for Watch to return.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.debounce.stop()

	if err := w.watcher.Close(); err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

// shouldProcessEvent reports whether an fsnotify event concerns a watched
// file. Chmod-only events are ignored.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod == fsnotify.Chmod {
		return false
	}
	return w.watched[filepath.Clean(event.Name)]
}

// debouncer collapses rapid event bursts into a single callback after a
// quiet period.
type debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopCh   chan struct{}
}

func newDebouncer(interval time.Duration) *debouncer {
	return &debouncer{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// trigger records a new event; the callback fires after the debounce
// interval unless another event arrives first.
func (d *debouncer) trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.callback = callback

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.interval, func() {
		select {
		case <-d.stopCh:
			return
		default:
			d.mu.Lock()
			cb := d.callback
			d.mu.Unlock()

			if cb != nil {
				cb()
			}
		}
	})
}

func (d *debouncer) stop() {
	close(d.stopCh)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
