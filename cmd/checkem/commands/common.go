package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"git.home.luguber.info/inful/checkem/internal/config"
	"git.home.luguber.info/inful/checkem/internal/digest"
	"git.home.luguber.info/inful/checkem/internal/foundation/errors"
	"git.home.luguber.info/inful/checkem/internal/logfields"
	"git.home.luguber.info/inful/checkem/internal/metrics"
	"git.home.luguber.info/inful/checkem/internal/notify"
	"git.home.luguber.info/inful/checkem/internal/observability"
	"git.home.luguber.info/inful/checkem/internal/retry"
	"git.home.luguber.info/inful/checkem/internal/storage"
	"git.home.luguber.info/inful/checkem/internal/tracker"
)

// Global carries state shared by all commands.
type Global struct {
	Logger   *slog.Logger
	Config   *config.Config
	Stdout   io.Writer
	Stderr   io.Writer
	Recorder metrics.Recorder
}

// NewGlobal returns a Global writing to the process streams.
func NewGlobal() *Global {
	return &Global{
		Logger:   slog.Default(),
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Recorder: metrics.NoopRecorder{},
	}
}

// CLI definition & global flags.
type CLI struct {
	Config     string           `short:"c" help:"Configuration file path" default:"checkem.yaml" type:"path"`
	Verbose    bool             `short:"v" help:"Enable verbose logging"`
	Store      string           `help:"Override the store location (file path, or row key for sqlite)"`
	NoAutoSave bool             `name:"no-auto-save" help:"Save once at the end of the command instead of after every check"`
	Version    kong.VersionFlag `name:"version" help:"Show version and exit"`

	Check      CheckCmd      `cmd:"" help:"Check a value and print whether it changed"`
	Checksum   ChecksumCmd   `cmd:"" help:"Check the digest of a file or stdin and print whether it changed"`
	LastUpdate LastUpdateCmd `cmd:"" name:"last-update" help:"Print when the value of a key last changed"`
	Show       ShowCmd       `cmd:"" help:"Show tracked records"`
	Watch      WatchCmd      `cmd:"" help:"Check configured targets once, periodically or on file changes"`
	Init       InitCmd       `cmd:"" help:"Initialize a new configuration file"`
}

// AfterApply runs after flag parsing; loads configuration and sets up logging once.
func (c *CLI) AfterApply(g *Global) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	g.Config = cfg

	level := observability.ParseLevel(string(cfg.Logging.Level))
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = observability.NewLogger(g.Stderr, level, string(cfg.Logging.Format))
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig reads the configuration file, falling back to defaults when
// it does not exist.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.Config == "" {
		return config.Default(), nil
	}
	if _, err := os.Stat(c.Config); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(c.Config)
}

// commandContext returns a context tagged with a fresh run ID and the command name.
func commandContext(command string) context.Context {
	ctx := observability.WithRunID(context.Background(), uuid.NewString())
	return observability.WithCommand(ctx, command)
}

// session is an opened tracker plus everything that must be released with it.
type session struct {
	tracker  *tracker.Tracker
	notifier *notify.NATSNotifier
	logger   *slog.Logger
}

// openTracker builds a tracker from configuration and CLI overrides.
func openTracker(ctx context.Context, g *Global, root *CLI) (*session, error) {
	cfg := g.Config

	kind, err := storage.ParseKind(cfg.Store.Backend)
	if err != nil {
		return nil, errors.ConfigError("invalid store backend").WithCause(err).Build()
	}
	backend, err := storage.Open(kind, cfg.Store.DSN)
	if err != nil {
		return nil, errors.ConfigError("failed to open store backend").
			WithCause(err).
			WithContext("backend", string(kind)).
			Build()
	}

	algo, err := digest.ParseAlgorithm(cfg.Digest.Algorithm)
	if err != nil {
		_ = backend.Close()
		return nil, errors.ConfigError("invalid digest algorithm").WithCause(err).Build()
	}
	digester, err := digest.New(algo)
	if err != nil {
		_ = backend.Close()
		return nil, errors.ConfigError("invalid digest algorithm").WithCause(err).Build()
	}

	s := &session{logger: g.Logger}
	opts := []tracker.Option{
		tracker.WithBackend(backend),
		tracker.WithDigester(digester),
		tracker.WithAutoSave(cfg.Store.AutoSaveEnabled() && !root.NoAutoSave),
		tracker.WithLogger(g.Logger),
		tracker.WithRecorder(g.Recorder),
	}

	if cfg.Notify.NATSURL != "" {
		n, err := notify.NewNATSNotifier(notify.NATSOptions{
			URL:       cfg.Notify.NATSURL,
			Subject:   cfg.Notify.Subject,
			JetStream: cfg.Notify.JetStream,
			Retry:     retry.FromConfig(cfg.Notify.Retry),
			Logger:    g.Logger,
		})
		if err != nil {
			_ = backend.Close()
			return nil, err
		}
		s.notifier = n
		opts = append(opts, tracker.WithNotifier(n))
		observability.DebugContext(ctx, g.Logger, "Publishing change events", logfields.Subject(n.Subject()))
	}

	location := cfg.Store.Path
	if root.Store != "" {
		location = root.Store
	}

	tr, err := tracker.Open(ctx, location, opts...)
	if err != nil {
		s.closeNotifier()
		_ = backend.Close()
		return nil, err
	}
	s.tracker = tr

	observability.DebugContext(ctx, g.Logger, "Tracker opened",
		logfields.Location(location),
		logfields.Backend(string(kind)),
		logfields.Digest(string(algo)),
		logfields.Records(tr.Len()))
	return s, nil
}

// finish saves the store when auto-save is off and releases resources.
func (s *session) finish(ctx context.Context) error {
	var err error
	if !s.tracker.AutoSave() {
		err = s.tracker.Flush(ctx)
	}
	s.close()
	return err
}

// close releases resources without saving.
func (s *session) close() {
	s.closeNotifier()
	if err := s.tracker.Close(); err != nil {
		s.logger.Warn("Failed to close store backend", logfields.Error(err))
	}
}

func (s *session) closeNotifier() {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Close(); err != nil {
		s.logger.Warn("Failed to close notifier", logfields.Error(err))
	}
}

func changedWord(changed bool) string {
	if changed {
		return "changed"
	}
	return "unchanged"
}
