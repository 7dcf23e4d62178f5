package config

import (
	"git.home.luguber.info/inful/checkem/internal/foundation/normalization"
)

// LogLevel enumerates supported logging levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var logLevelNormalizer = normalization.NewNormalizer(map[string]LogLevel{
	"debug":   LogLevelDebug,
	"info":    LogLevelInfo,
	"warn":    LogLevelWarn,
	"warning": LogLevelWarn,
	"error":   LogLevelError,
}, LogLevelInfo)

func NormalizeLogLevel(raw string) LogLevel {
	return logLevelNormalizer.Normalize(raw)
}

// LogFormat enumerates supported log output formats.
type LogFormat string

const (
	LogFormatJSON LogFormat = "json"
	LogFormatText LogFormat = "text"
)

var logFormatNormalizer = normalization.NewNormalizer(map[string]LogFormat{
	"json": LogFormatJSON,
	"text": LogFormatText,
}, LogFormatText)

func NormalizeLogFormat(raw string) LogFormat {
	return logFormatNormalizer.Normalize(raw)
}

// TargetKind selects how a watch target is fingerprinted.
type TargetKind string

const (
	TargetFile TargetKind = "file"
	TargetGit  TargetKind = "git"
)

var targetKindNormalizer = normalization.NewNormalizer(map[string]TargetKind{
	"file":       TargetFile,
	"content":    TargetFile,
	"git":        TargetGit,
	"repository": TargetGit,
}, TargetFile)

// NormalizeTargetKind maps raw to a TargetKind. Empty selects TargetFile.
func NormalizeTargetKind(raw string) (TargetKind, error) {
	return targetKindNormalizer.NormalizeWithError(raw)
}
