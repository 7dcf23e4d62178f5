package normalization

import (
	"testing"
)

type backendKind string

const (
	kindFile   backendKind = "file"
	kindSQLite backendKind = "sqlite"
)

func newTestNormalizer() *Normalizer[backendKind] {
	return NewNormalizer(map[string]backendKind{
		"file":    kindFile,
		"fs":      kindFile,
		"sqlite":  kindSQLite,
		"SQLite3": kindSQLite,
	}, kindFile)
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name     string
		input    string
		expected backendKind
	}{
		{"exact match", "sqlite", kindSQLite},
		{"case insensitive", "SQLITE", kindSQLite},
		{"alias", "  sqlite3 ", kindSQLite},
		{"alias to default", "FS", kindFile},
		{"invalid input", "postgres", kindFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizer_NormalizeWithError(t *testing.T) {
	n := newTestNormalizer()

	if got, err := n.NormalizeWithError(""); err != nil || got != kindFile {
		t.Errorf("empty input: got %v, %v", got, err)
	}
	if got, err := n.NormalizeWithError("SQLite"); err != nil || got != kindSQLite {
		t.Errorf("SQLite: got %v, %v", got, err)
	}
	if _, err := n.NormalizeWithError("postgres"); err == nil {
		t.Error("expected error for unknown value")
	}

	keys := n.ValidKeys()
	want := []string{"file", "fs", "sqlite", "sqlite3"}
	if len(keys) != len(want) {
		t.Fatalf("ValidKeys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("ValidKeys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
