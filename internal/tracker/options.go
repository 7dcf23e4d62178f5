package tracker

import (
	"log/slog"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/checkem/internal/digest"
	"git.home.luguber.info/inful/checkem/internal/metrics"
	"git.home.luguber.info/inful/checkem/internal/notify"
	"git.home.luguber.info/inful/checkem/internal/storage"
)

// Option configures a Tracker.
type Option func(*Tracker)

// WithAutoSave persists the whole store after every check.
func WithAutoSave(enabled bool) Option {
	return func(t *Tracker) { t.autoSave = enabled }
}

// WithBackend sets the storage backend. Defaults to storage.NewFSBackend().
func WithBackend(b storage.Backend) Option {
	return func(t *Tracker) {
		if b != nil {
			t.backend = b
		}
	}
}

// WithDigester sets the checksum function. Defaults to SHA-256.
func WithDigester(d digest.Digester) Option {
	return func(t *Tracker) {
		if d != nil {
			t.digester = d
		}
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clockwork.Clock) Option {
	return func(t *Tracker) {
		if c != nil {
			t.clock = c
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithRecorder reports checks and persistence to r. Defaults to a no-op recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(t *Tracker) {
		if r != nil {
			t.recorder = r
		}
	}
}

// WithNotifier receives an event for every check that changes a value.
func WithNotifier(n notify.Notifier) Option {
	return func(t *Tracker) {
		if n != nil {
			t.notifier = n
		}
	}
}
