package errors

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("key must not be empty").Build(), 2},
		{"not found", NotFoundError("record not found").Build(), 3},
		{"storage read", StorageReadError("bad json").Build(), 4},
		{"storage write", StorageWriteError("disk full").Build(), 5},
		{"config", ConfigError("bad config").Build(), 7},
		{"notify", NotifyError("nats down").Build(), 8},
		{"internal", InternalError("boom").Build(), 10},
		{"unclassified", errors.New("unknown error"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adapter.ExitCodeFor(tt.err)
			if got != tt.expected {
				t.Errorf("ExitCodeFor() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	err := NotFoundError("record not found").WithContext("key", "readme").Build()

	quiet := NewCLIErrorAdapter(false, nil).FormatError(err)
	if quiet != `Error: record not found (key "readme")` {
		t.Errorf("unexpected quiet format: %q", quiet)
	}

	verbose := NewCLIErrorAdapter(true, nil).FormatError(err)
	if !strings.HasPrefix(verbose, "[not_found:error]") {
		t.Errorf("unexpected verbose format: %q", verbose)
	}

	internal := NewCLIErrorAdapter(false, nil).FormatError(InternalError("boom").Build())
	if !strings.Contains(internal, "use -v") {
		t.Errorf("expected internal errors to be hidden, got %q", internal)
	}

	if got := NewCLIErrorAdapter(false, nil).FormatError(errors.New("plain")); got != "Error: plain" {
		t.Errorf("unexpected plain format: %q", got)
	}
}
