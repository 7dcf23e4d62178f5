package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/checkem/internal/config"
	"git.home.luguber.info/inful/checkem/internal/foundation/errors"
	"git.home.luguber.info/inful/checkem/internal/logfields"
	"git.home.luguber.info/inful/checkem/internal/observability"
	"git.home.luguber.info/inful/checkem/internal/tracker"
)

// Result is the outcome of checking one target.
type Result struct {
	Target   Target
	Changed  bool
	Err      error
	Duration time.Duration
}

// Runner checks a fixed set of targets against a tracker.
type Runner struct {
	tracker  *tracker.Tracker
	targets  []Target
	logger   *slog.Logger
	onChange func(context.Context, Result)

	// scanMu serializes full scans with watch-triggered checks.
	scanMu    sync.Mutex
	scheduler gocron.Scheduler
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// OnChange registers fn to be called for every result with Changed set.
func OnChange(fn func(context.Context, Result)) RunnerOption {
	return func(r *Runner) { r.onChange = fn }
}

// NewRunner creates a Runner for targets.
func NewRunner(tr *tracker.Tracker, targets []Target, opts ...RunnerOption) *Runner {
	r := &Runner{
		tracker: tr,
		targets: targets,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Targets returns the configured targets.
func (r *Runner) Targets() []Target {
	return r.targets
}

// Scan checks every target once. Without auto-save the tracker is flushed
// after the scan.
func (r *Runner) Scan(ctx context.Context) ([]Result, error) {
	r.scanMu.Lock()
	defer r.scanMu.Unlock()

	results := make([]Result, 0, len(r.targets))
	for _, t := range r.targets {
		results = append(results, r.checkTarget(ctx, t))
	}

	if !r.tracker.AutoSave() {
		if err := r.tracker.Flush(ctx); err != nil {
			return results, err
		}
	}
	return results, nil
}

func (r *Runner) checkTarget(ctx context.Context, t Target) Result {
	ctx = observability.WithTarget(ctx, t.Key)
	start := time.Now()
	changed, err := t.check(ctx, r.tracker)
	res := Result{Target: t, Changed: changed, Duration: time.Since(start)}

	if err != nil {
		// A failed auto-save is a tracker error and already classified.
		if !errors.IsClassified(err) {
			err = errors.WatchError("failed to check target").
				WithCause(err).
				WithContext("key", t.Key).
				WithContext("path", t.Path).
				Build()
		}
		res.Err = err
		observability.WarnContext(ctx, r.logger, "Target check failed",
			logfields.Path(t.Path),
			logfields.TargetKind(string(t.Kind)),
			logfields.Error(err))
	} else {
		observability.DebugContext(ctx, r.logger, "Target checked",
			logfields.Changed(changed),
			logfields.TargetKind(string(t.Kind)),
			logfields.Duration(res.Duration))
	}

	if changed && r.onChange != nil {
		r.onChange(ctx, res)
	}
	return res
}

func (r *Runner) recheck(ctx context.Context, t Target) {
	r.scanMu.Lock()
	defer r.scanMu.Unlock()
	r.checkTarget(ctx, t)
	if !r.tracker.AutoSave() {
		if err := r.tracker.Flush(ctx); err != nil {
			r.logger.Error("Failed to save store", logfields.Error(err))
		}
	}
}

// Schedule starts a scheduler that scans every interval until Stop is called.
func (r *Runner) Schedule(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return errors.ValidationError("scan interval must be positive").Build()
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := r.Scan(ctx); err != nil {
				observability.ErrorContext(ctx, r.logger, "Scheduled scan failed", logfields.Error(err))
			}
		}),
		gocron.WithName("checkem-scan"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("failed to create periodic scan job: %w", err)
	}

	r.scheduler = s
	observability.InfoContext(ctx, r.logger, "Starting scheduler", logfields.Duration(interval))
	s.Start()
	return nil
}

// Stop shuts the scheduler down, if one was started.
func (r *Runner) Stop() error {
	if r.scheduler == nil {
		return nil
	}
	r.logger.Info("Stopping scheduler")
	err := r.scheduler.Shutdown()
	r.scheduler = nil
	return err
}

// WatchFiles re-checks file targets whenever they are written or recreated.
// It blocks until ctx is canceled.
func (r *Runner) WatchFiles(ctx context.Context) error {
	byPath := make(map[string]Target)
	dirs := make(map[string]bool)
	for _, t := range r.targets {
		if t.Kind != config.TargetFile {
			continue
		}
		p := filepath.Clean(t.Path)
		byPath[p] = t
		dirs[filepath.Dir(p)] = true
	}
	if len(byPath) == 0 {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.WatchError("failed to create file watcher").WithCause(err).Build()
	}
	defer func() { _ = watcher.Close() }()

	// Watching the directory survives editors that replace the file.
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return errors.WatchError("failed to watch directory").
				WithCause(err).
				WithContext("path", dir).
				Build()
		}
	}
	observability.InfoContext(ctx, r.logger, "Watching files", logfields.Records(len(byPath)))

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			t, tracked := byPath[filepath.Clean(event.Name)]
			if !tracked {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				r.recheck(ctx, t)
			} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				r.logger.Warn("Watched file moved away", logfields.Target(t.Key), logfields.Path(t.Path))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.logger.Error("File watcher error", logfields.Error(err))
		}
	}
}
