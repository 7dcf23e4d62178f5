package version

import (
	"strings"
	"testing"
)

func TestBuildInfo(t *testing.T) {
	if Version == "" || BuildTime == "" || GitCommit == "" {
		t.Fatal("build info variables should be initialized")
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "checkem ") {
		t.Errorf("String() = %q", s)
	}
	if !strings.Contains(s, Version) || !strings.Contains(s, GitCommit) {
		t.Errorf("String() = %q should include version and commit", s)
	}
}
