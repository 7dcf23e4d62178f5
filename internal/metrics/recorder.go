package metrics

import "time"

// ResultLabel enumerates outcome categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailure ResultLabel = "failure"
	ResultMissing ResultLabel = "missing" // load found no stored resource
)

// PersistOp names a whole-store persistence operation.
type PersistOp string

const (
	OpLoad PersistOp = "load"
	OpSave PersistOp = "save"
)

// Recorder defines observability hooks for checks and persistence.
type Recorder interface {
	IncCheck(changed bool)
	ObserveCheckDuration(d time.Duration)
	IncPersist(op PersistOp, result ResultLabel)
	ObservePersistDuration(op PersistOp, d time.Duration)
	SetTrackedKeys(n int)
	IncNotify(success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncCheck(bool) {}
func (NoopRecorder) ObserveCheckDuration(time.Duration) {}
func (NoopRecorder) IncPersist(PersistOp, ResultLabel) {}
func (NoopRecorder) ObservePersistDuration(PersistOp, time.Duration) {}
func (NoopRecorder) SetTrackedKeys(int) {}
func (NoopRecorder) IncNotify(bool) {}
