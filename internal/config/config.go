package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/checkem/internal/foundation/errors"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "checkem.yaml"

// Config represents the application configuration.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	Digest  DigestConfig  `yaml:"digest"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
	Notify  NotifyConfig  `yaml:"notify"`
	Watch   WatchConfig   `yaml:"watch"`
}

// StoreConfig selects where tracked state is persisted.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	// Path is a file path for the file backend and a row key for sqlite.
	Path     string `yaml:"path"`
	DSN      string `yaml:"dsn,omitempty"`
	AutoSave *bool  `yaml:"auto_save,omitempty"`
}

// AutoSaveEnabled reports the effective auto_save setting (default true).
func (s StoreConfig) AutoSaveEnabled() bool {
	return s.AutoSave == nil || *s.AutoSave
}

type DigestConfig struct {
	Algorithm string `yaml:"algorithm"`
}

type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen,omitempty"`
}

// NotifyConfig enables change events over NATS when NATSURL is set.
type NotifyConfig struct {
	NATSURL   string      `yaml:"nats_url,omitempty"`
	Subject   string      `yaml:"subject,omitempty"`
	JetStream bool        `yaml:"jetstream,omitempty"`
	Retry     RetryConfig `yaml:"retry,omitempty"`
}

// WatchConfig lists the targets checked by the watch command.
type WatchConfig struct {
	// Interval between full scans; zero disables periodic scanning.
	Interval Duration      `yaml:"interval,omitempty"`
	Targets  []WatchTarget `yaml:"targets"`
}

// WatchTarget is one tracked file or git repository.
type WatchTarget struct {
	Key  string     `yaml:"key"`
	Path string     `yaml:"path"`
	Kind TargetKind `yaml:"kind,omitempty"`
}

// Duration is a time.Duration written as a Go duration string in YAML.
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads configPath, expands ${VAR} references and applies defaults.
// Variables from .env files in the working directory are available for
// expansion but never override the process environment.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	// #nosec G304 - the path is supplied by the operator
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, errors.ConfigError("failed to read config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))))
	if err != nil {
		if errors.IsClassified(err) {
			return nil, err
		}
		return nil, errors.ConfigError("failed to parse config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return cfg, nil
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = applyDefaults(cfg)
	return cfg
}

// Init writes a starter configuration to configPath.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}

	autoSave := true
	example := Config{
		Store: StoreConfig{
			Backend:  "file",
			Path:     ".checkem.json",
			AutoSave: &autoSave,
		},
		Digest:  DigestConfig{Algorithm: "sha256"},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
		Metrics: MetricsConfig{Enabled: false, Listen: DefaultMetricsListen},
		Notify:  NotifyConfig{Subject: "checkem.changes"},
		Watch: WatchConfig{
			Interval: Duration(5 * time.Minute),
			Targets: []WatchTarget{
				{Key: "readme", Path: "README.md", Kind: TargetFile},
				{Key: "repo-head", Path: ".", Kind: TargetGit},
			},
		},
	}

	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// #nosec G306 - configuration is not secret
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return errors.ConfigError("failed to write config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}
