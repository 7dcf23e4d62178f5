package commands

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/checkem/internal/foundation/errors"
	"git.home.luguber.info/inful/checkem/internal/metrics"
	"git.home.luguber.info/inful/checkem/internal/tracker"
)

// testEnv runs CLI invocations against a private config and store.
type testEnv struct {
	t      *testing.T
	dir    string
	config string
	store  string
	// stderr holds what the last run wrote to standard error.
	stderr string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	return &testEnv{
		t:      t,
		dir:    dir,
		config: filepath.Join(dir, "checkem.yaml"),
		store:  filepath.Join(dir, "state.json"),
	}
}

func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var cli CLI
	var stdout, stderr bytes.Buffer
	defer func() { e.stderr = stderr.String() }()
	g := &Global{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Stdout:   &stdout,
		Stderr:   &stderr,
		Recorder: metrics.NoopRecorder{},
	}
	parser, err := kong.New(&cli,
		kong.Name("checkem"),
		kong.Bind(g),
		kong.Vars{"version": "test"},
		kong.Exit(func(code int) { e.t.Fatalf("unexpected exit %d", code) }),
	)
	require.NoError(e.t, err)

	full := append([]string{"--config", e.config, "--store", e.store}, args...)
	kctx, err := parser.Parse(full)
	if err != nil {
		return stdout.String(), err
	}
	err = kctx.Run(g, &cli)
	return stdout.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "checkem %s", strings.Join(args, " "))
	return strings.TrimSpace(out)
}

func TestCheckCommandSequence(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, "changed", env.mustRun("check", "a", "1"))
	assert.Equal(t, "unchanged", env.mustRun("check", "a", "1"))
	assert.Equal(t, "changed", env.mustRun("check", "a", "2"))
	assert.Equal(t, "unchanged", env.mustRun("check", "a", "2"))
	assert.Equal(t, "changed", env.mustRun("check", "--type", "string", "a", "2"), "string \"2\" differs from number 2")

	data, err := os.ReadFile(env.store)
	require.NoError(t, err)
	store, err := tracker.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 5, store["a"].TimesChecked)
	assert.Equal(t, 3, store["a"].TimesUpdated)
}

func TestCheckCommandKeepsNumberText(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, "changed", env.mustRun("check", "version", "1.10"))
	assert.Equal(t, "changed", env.mustRun("check", "version", "1.1"))
	assert.Equal(t, "changed", env.mustRun("check", "zip", "007"))
	assert.Equal(t, "unchanged", env.mustRun("check", "zip", "007"))
	assert.Equal(t, "changed", env.mustRun("check", "zip", "7"))

	data, err := os.ReadFile(env.store)
	require.NoError(t, err)
	store, err := tracker.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, tracker.KindNumber, store["zip"].Value.Kind())

	env.mustRun("check", "zip", "007")
	data, err = os.ReadFile(env.store)
	require.NoError(t, err)
	store, err = tracker.Decode(data)
	require.NoError(t, err)
	assert.True(t, store["zip"].Value.Equal(tracker.String("007")), "leading zeros are kept as text")
}

func TestCheckCommandRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("check", "--type", "number", "a", "abc")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	_, err = os.Stat(env.store)
	assert.True(t, os.IsNotExist(err), "invalid input must not touch the store")
}

func TestChecksumCommand(t *testing.T) {
	env := newTestEnv(t)
	file := filepath.Join(env.dir, "page.md")
	require.NoError(t, os.WriteFile(file, []byte("# Title\n"), 0o600))

	assert.Equal(t, "changed", env.mustRun("checksum", "page", file))
	assert.Equal(t, "unchanged", env.mustRun("checksum", "page", file))

	require.NoError(t, os.WriteFile(file, []byte("# Title\n\nMore.\n"), 0o600))
	assert.Equal(t, "changed", env.mustRun("checksum", "page", file))

	_, err := env.run("checksum", "page", filepath.Join(env.dir, "missing.md"))
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestLastUpdateCommand(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run("last-update", "a")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	env.mustRun("check", "a", "x")
	out := env.mustRun("last-update", "a")
	ts, err := time.Parse(time.RFC3339Nano, out)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestShowCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun("check", "b", "true")
	env.mustRun("check", "a", "hello")

	table := env.mustRun("show")
	lines := strings.Split(table, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "a "), "rows are sorted by key")
	assert.Contains(t, lines[2], "true")

	assert.Contains(t, env.stderr, env.store)
	assert.Contains(t, env.stderr, "saved, digest sha256, 2 records")

	out := env.mustRun("show", "--json", "b")
	store, err := tracker.Decode([]byte(out))
	require.NoError(t, err)
	require.Len(t, store, 1)
	assert.Equal(t, tracker.KindBool, store["b"].Value.Kind())

	_, err = env.run("show", "missing")
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))
}

func TestShowBeforeFirstSave(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun("--no-auto-save", "show")
	assert.True(t, strings.HasPrefix(out, "KEY"))
	assert.NotContains(t, out, "\n", "only the header is printed")
	assert.Contains(t, env.stderr, "not saved yet")
}

func TestNoAutoSaveStillSavesAtEnd(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, "changed", env.mustRun("--no-auto-save", "check", "k", "v"))
	assert.Equal(t, "unchanged", env.mustRun("--no-auto-save", "check", "k", "v"))
}

func TestMalformedStoreFails(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, os.WriteFile(env.store, []byte("{not json"), 0o600))

	_, err := env.run("check", "k", "v")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryStorageRead))
	assert.Equal(t, 4, errors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestInitAndWatchOnce(t *testing.T) {
	env := newTestEnv(t)
	notes := filepath.Join(env.dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("v1"), 0o600))

	out := env.mustRun("init")
	assert.Contains(t, out, "initialized successfully")

	_, err := env.run("init")
	require.Error(t, err, "init refuses to overwrite")

	cfg := "store:\n  backend: sqlite\n  dsn: " + filepath.Join(env.dir, "state.db") + "\n" +
		"watch:\n  targets:\n    - key: notes\n      path: " + notes + "\n"
	require.NoError(t, os.WriteFile(env.config, []byte(cfg), 0o600))

	assert.Equal(t, "notes\tchanged", env.mustRun("watch", "--once"))
	assert.Equal(t, "notes\tunchanged", env.mustRun("watch", "--once"))

	require.NoError(t, os.WriteFile(notes, []byte("v2"), 0o600))
	assert.Equal(t, "notes\tchanged", env.mustRun("watch", "--once"))

	require.NoError(t, os.Remove(notes))
	out, err = env.run("watch", "--once")
	require.Error(t, err)
	assert.Contains(t, out, "notes\terror")
	assert.True(t, errors.HasCategory(err, errors.CategoryWatch))
}

func TestWatchRequiresTargets(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.run("watch", "--once")
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}
