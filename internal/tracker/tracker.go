// Package tracker detects whether keyed values changed since they were last
// observed and persists that state through a storage backend.
package tracker

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/checkem/internal/digest"
	"git.home.luguber.info/inful/checkem/internal/foundation"
	"git.home.luguber.info/inful/checkem/internal/foundation/errors"
	"git.home.luguber.info/inful/checkem/internal/logfields"
	"git.home.luguber.info/inful/checkem/internal/metrics"
	"git.home.luguber.info/inful/checkem/internal/notify"
	"git.home.luguber.info/inful/checkem/internal/observability"
	"git.home.luguber.info/inful/checkem/internal/storage"
)

// Tracker owns a Store and the location it is persisted to.
// It is safe for use by multiple goroutines of one process.
type Tracker struct {
	mu       sync.Mutex
	store    Store
	location string

	backend  storage.Backend
	digester digest.Digester
	autoSave bool
	clock    clockwork.Clock
	logger   *slog.Logger
	recorder metrics.Recorder
	notifier notify.Notifier
}

// New creates a Tracker with an empty in-memory store and no location.
// Flush and auto-save do nothing until SetLocation is called.
func New(opts ...Option) *Tracker {
	t := &Tracker{
		store:    make(Store),
		backend:  storage.NewFSBackend(),
		digester: digest.MustNew(digest.Default),
		clock:    clockwork.NewRealClock(),
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		notifier: notify.NoopNotifier{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Open creates a Tracker bound to location and loads it.
//
// A missing resource starts an empty store. With auto-save the empty store is
// written immediately so later loads succeed; without it a warning is logged
// and nothing is written. A resource that cannot be read or parsed is an error.
func Open(ctx context.Context, location string, opts ...Option) (*Tracker, error) {
	if location == "" {
		return nil, errors.ValidationError("storage location must not be empty").Build()
	}
	t := New(opts...)
	t.location = location

	t.mu.Lock()
	defer t.mu.Unlock()

	found, err := t.loadLocked(ctx, location)
	if err != nil {
		return nil, err
	}
	if !found && t.autoSave {
		if err := t.saveLocked(ctx, location); err != nil {
			return nil, err
		}
		observability.InfoContext(ctx, t.logger, "Created empty store", logfields.Location(location))
	}
	return t, nil
}

// Location returns the configured storage location, or "" if none.
func (t *Tracker) Location() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.location
}

// SetLocation binds the tracker to location for Flush and auto-save.
func (t *Tracker) SetLocation(location string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.location = location
}

// AutoSave reports whether every check persists the store.
func (t *Tracker) AutoSave() bool {
	return t.autoSave
}

// Digester returns the checksum function used by CheckChecksum.
func (t *Tracker) Digester() digest.Digester {
	return t.digester
}

// Persisted reports whether the backend holds a store at the configured
// location. It is false when no location is set.
func (t *Tracker) Persisted(ctx context.Context) (bool, error) {
	t.mu.Lock()
	location := t.location
	t.mu.Unlock()
	if location == "" {
		return false, nil
	}
	ok, err := t.backend.Exists(ctx, location)
	if err != nil {
		return false, errors.StorageReadError("failed to check store").
			WithCause(err).
			WithContext("location", location).
			Build()
	}
	return ok, nil
}

// Load replaces the store with the one persisted at location.
//
// A missing resource logs a warning and leaves the store as it is. On any
// other failure the store is also left untouched and a storage_read error
// carrying the location is returned.
func (t *Tracker) Load(ctx context.Context, location string) error {
	if location == "" {
		return errors.ValidationError("storage location must not be empty").Build()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err := t.loadLocked(ctx, location)
	return err
}

func (t *Tracker) loadLocked(ctx context.Context, location string) (bool, error) {
	start := t.clock.Now()
	defer func() { t.recorder.ObservePersistDuration(metrics.OpLoad, t.clock.Since(start)) }()

	data, err := t.backend.Read(ctx, location)
	if storage.IsNotFound(err) {
		t.recorder.IncPersist(metrics.OpLoad, metrics.ResultMissing)
		observability.WarnContext(ctx, t.logger, "No existing data found", logfields.Location(location))
		return false, nil
	}
	if err != nil {
		t.recorder.IncPersist(metrics.OpLoad, metrics.ResultFailure)
		return false, errors.StorageReadError("failed to load data").
			WithCause(err).
			WithContext("location", location).
			Build()
	}

	store, err := Decode(data)
	if err != nil {
		t.recorder.IncPersist(metrics.OpLoad, metrics.ResultFailure)
		return false, errors.StorageReadError("failed to parse stored data").
			WithCause(err).
			WithContext("location", location).
			Build()
	}

	t.store = store
	t.recorder.IncPersist(metrics.OpLoad, metrics.ResultSuccess)
	t.recorder.SetTrackedKeys(len(store))
	observability.DebugContext(ctx, t.logger, "Loaded store",
		logfields.Location(location),
		logfields.Records(len(store)))
	return true, nil
}

// Save writes the whole store to location.
// Failures are storage_write errors; the in-memory store is unaffected.
func (t *Tracker) Save(ctx context.Context, location string) error {
	if location == "" {
		return errors.ValidationError("storage location must not be empty").Build()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saveLocked(ctx, location)
}

// Flush saves to the configured location. It is a no-op without one.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.location == "" {
		return nil
	}
	return t.saveLocked(ctx, t.location)
}

func (t *Tracker) saveLocked(ctx context.Context, location string) error {
	start := t.clock.Now()
	defer func() { t.recorder.ObservePersistDuration(metrics.OpSave, t.clock.Since(start)) }()

	data, err := Encode(t.store)
	if err != nil {
		t.recorder.IncPersist(metrics.OpSave, metrics.ResultFailure)
		return errors.StorageWriteError("failed to encode data").
			WithCause(err).
			WithContext("location", location).
			Build()
	}
	if err := t.backend.Write(ctx, location, data); err != nil {
		t.recorder.IncPersist(metrics.OpSave, metrics.ResultFailure)
		return errors.StorageWriteError("failed to save data").
			WithCause(err).
			WithContext("location", location).
			Build()
	}

	t.recorder.IncPersist(metrics.OpSave, metrics.ResultSuccess)
	observability.DebugContext(ctx, t.logger, "Saved store",
		logfields.Location(location),
		logfields.Records(len(t.store)))
	return nil
}

// Check records value for key and reports whether it differs from the
// previously stored value. The first check of a key always reports a change.
//
// With auto-save the store is persisted before returning. If that fails the
// change is still applied and both changed and the storage_write error are
// returned.
func (t *Tracker) Check(ctx context.Context, key string, value Value) (bool, error) {
	if key == "" {
		return false, errors.ValidationError("key must not be empty").Build()
	}
	if err := value.validate(); err != nil {
		return false, errors.ValidationError("invalid value").
			WithCause(err).
			WithContext("key", key).
			Build()
	}

	start := t.clock.Now()
	t.mu.Lock()

	prev, exists := t.store[key]
	changed := !exists || !prev.Value.Equal(value)
	now := t.clock.Now().UTC()

	rec := Record{
		Value:        value,
		UpdatedAt:    prev.UpdatedAt,
		LastChecked:  &now,
		TimesChecked: prev.TimesChecked + 1,
		TimesUpdated: prev.TimesUpdated,
	}
	if changed {
		updated := now
		rec.UpdatedAt = &updated
		rec.TimesUpdated++
	}
	t.store[key] = rec
	t.recorder.SetTrackedKeys(len(t.store))

	var saveErr error
	if t.autoSave && t.location != "" {
		saveErr = t.saveLocked(ctx, t.location)
	}
	t.mu.Unlock()

	t.recorder.IncCheck(changed)
	t.recorder.ObserveCheckDuration(t.clock.Since(start))
	observability.DebugContext(ctx, t.logger, "Checked value",
		logfields.Key(key),
		logfields.Changed(changed))

	if changed {
		t.publish(ctx, key, rec)
	}
	return changed, saveErr
}

func (t *Tracker) publish(ctx context.Context, key string, rec Record) {
	event := notify.NewChangeEvent(key, rec.Value.Interface(), *rec.UpdatedAt, rec.TimesChecked, rec.TimesUpdated)
	if err := t.notifier.Notify(ctx, event); err != nil {
		t.recorder.IncNotify(false)
		observability.WarnContext(ctx, t.logger, "Change notification failed",
			logfields.Key(key),
			logfields.Error(err))
		return
	}
	t.recorder.IncNotify(true)
}

// CheckChecksum tracks the hex digest of content instead of content itself.
func (t *Tracker) CheckChecksum(ctx context.Context, key string, content []byte) (bool, error) {
	return t.Check(ctx, key, String(t.digester.Sum(content)))
}

// CheckReader is CheckChecksum for streamed content.
func (t *Tracker) CheckReader(ctx context.Context, key string, r io.Reader) (bool, error) {
	if key == "" {
		return false, errors.ValidationError("key must not be empty").Build()
	}
	sum, err := t.digester.SumReader(r)
	if err != nil {
		return false, errors.StorageReadError("failed to read content").
			WithCause(err).
			WithContext("key", key).
			Build()
	}
	return t.Check(ctx, key, String(sum))
}

// LastUpdate returns when the value of key last changed. It fails with a
// not_found error if key was never checked.
func (t *Tracker) LastUpdate(key string) (foundation.Option[time.Time], error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.store[key]
	if !ok {
		return foundation.None[time.Time](), errors.NotFoundError("no record found").
			WithContext("key", key).
			Build()
	}
	return rec.LastUpdate(), nil
}

// Record returns a copy of the record for key.
func (t *Tracker) Record(key string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.store[key]
	if !ok {
		return Record{}, false
	}
	return rec.clone(), true
}

// Snapshot returns a deep copy of the store.
func (t *Tracker) Snapshot() Store {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Clone()
}

// Keys returns the tracked keys in ascending order.
func (t *Tracker) Keys() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Keys()
}

// Len returns the number of tracked keys.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.store)
}

// Close releases the storage backend.
func (t *Tracker) Close() error {
	return t.backend.Close()
}
