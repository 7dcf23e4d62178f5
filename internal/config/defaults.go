package config

import (
	"fmt"

	"git.home.luguber.info/inful/checkem/internal/digest"
	"git.home.luguber.info/inful/checkem/internal/storage"
)

// DefaultStorePath is the store location when none is configured.
const DefaultStorePath = ".checkem.json"

// DefaultMetricsListen is the metrics listen address when none is configured.
const DefaultMetricsListen = ":9464"

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

type StoreDefaultApplier struct{}

func (StoreDefaultApplier) Domain() string { return "store" }

func (StoreDefaultApplier) ApplyDefaults(cfg *Config) error {
	kind, err := storage.ParseKind(cfg.Store.Backend)
	if err != nil {
		return fieldError("store.backend", err)
	}
	cfg.Store.Backend = string(kind)
	if cfg.Store.Path == "" {
		if kind == storage.KindFile {
			cfg.Store.Path = DefaultStorePath
		} else {
			cfg.Store.Path = "default"
		}
	}
	if kind == storage.KindSQLite && cfg.Store.DSN == "" {
		cfg.Store.DSN = ".checkem.db"
	}
	return nil
}

type DigestDefaultApplier struct{}

func (DigestDefaultApplier) Domain() string { return "digest" }

func (DigestDefaultApplier) ApplyDefaults(cfg *Config) error {
	algo, err := digest.ParseAlgorithm(cfg.Digest.Algorithm)
	if err != nil {
		return fieldError("digest.algorithm", err)
	}
	cfg.Digest.Algorithm = string(algo)
	return nil
}

type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	return nil
}

type MetricsDefaultApplier struct{}

func (MetricsDefaultApplier) Domain() string { return "metrics" }

func (MetricsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = DefaultMetricsListen
	}
	return nil
}

type NotifyDefaultApplier struct{}

func (NotifyDefaultApplier) Domain() string { return "notify" }

func (NotifyDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Notify.Subject == "" {
		cfg.Notify.Subject = "checkem.changes"
	}
	mode, err := NormalizeRetryBackoff(string(cfg.Notify.Retry.Backoff))
	if err != nil {
		return fieldError("notify.retry.backoff", err)
	}
	cfg.Notify.Retry.Backoff = mode
	return nil
}

type WatchDefaultApplier struct{}

func (WatchDefaultApplier) Domain() string { return "watch" }

func (WatchDefaultApplier) ApplyDefaults(cfg *Config) error {
	for i := range cfg.Watch.Targets {
		kind, err := NormalizeTargetKind(string(cfg.Watch.Targets[i].Kind))
		if err != nil {
			return fieldError(fmt.Sprintf("watch.targets[%d].kind", i), err)
		}
		cfg.Watch.Targets[i].Kind = kind
	}
	if cfg.Watch.Interval < 0 {
		cfg.Watch.Interval = 0
	}
	return nil
}

func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		StoreDefaultApplier{},
		DigestDefaultApplier{},
		LoggingDefaultApplier{},
		MetricsDefaultApplier{},
		NotifyDefaultApplier{},
		WatchDefaultApplier{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers() {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return err
		}
	}
	return nil
}
