package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyKey        = "key"
	KeyLocation   = "location"
	KeyBackend    = "backend"
	KeyChanged    = "changed"
	KeyDigest     = "digest"
	KeyRecords    = "records"
	KeyTarget     = "target"
	KeyTargetKind = "target_kind"
	KeyPath       = "path"
	KeySubject    = "subject"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Key(k string) slog.Attr           { return slog.String(KeyKey, k) }
func Location(l string) slog.Attr      { return slog.String(KeyLocation, l) }
func Backend(b string) slog.Attr       { return slog.String(KeyBackend, b) }
func Changed(c bool) slog.Attr         { return slog.Bool(KeyChanged, c) }
func Digest(alg string) slog.Attr      { return slog.String(KeyDigest, alg) }
func Records(n int) slog.Attr          { return slog.Int(KeyRecords, n) }
func Target(name string) slog.Attr     { return slog.String(KeyTarget, name) }
func TargetKind(kind string) slog.Attr { return slog.String(KeyTargetKind, kind) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func Subject(s string) slog.Attr       { return slog.String(KeySubject, s) }

// Duration records d in fractional milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d)/float64(time.Millisecond))
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
