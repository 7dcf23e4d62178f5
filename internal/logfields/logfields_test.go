package logfields

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Key", KeyKey, "readme", Key("readme")},
		{"Location", KeyLocation, "/tmp/s.json", Location("/tmp/s.json")},
		{"Backend", KeyBackend, "file", Backend("file")},
		{"Digest", KeyDigest, "sha256", Digest("sha256")},
		{"Target", KeyTarget, "docs", Target("docs")},
		{"TargetKind", KeyTargetKind, "git", TargetKind("git")},
		{"Path", KeyPath, "README.md", Path("README.md")},
		{"Subject", KeySubject, "checkem.changes", Subject("checkem.changes")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestTypedHelpers(t *testing.T) {
	if v := Changed(true); v.Key != KeyChanged || !v.Value.Bool() {
		t.Fatalf("Changed mismatch: %v", v)
	}
	if v := Records(3); v.Key != KeyRecords || v.Value.Int64() != 3 {
		t.Fatalf("Records mismatch: %v", v)
	}
	if v := Duration(1500 * time.Microsecond); v.Key != KeyDurationMS || v.Value.Float64() != 1.5 {
		t.Fatalf("Duration mismatch: %v", v)
	}
}

// TestErrorHelper ensures Error() handles nil and non-nil errors predictably.
func TestErrorHelper(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Fatalf("Error key mismatch: %s", attr.Key)
	}
	if attr.Value.String() != "" {
		t.Fatalf("Expected empty error string, got %s", attr.Value.String())
	}
	attr = Error(errors.New("err-test"))
	if attr.Value.String() != "err-test" {
		t.Fatalf("Expected 'err-test', got %s", attr.Value.String())
	}
}
