package config

import (
	"git.home.luguber.info/inful/checkem/internal/foundation/normalization"
)

// RetryBackoffMode enumerates supported backoff strategies for retries.
type RetryBackoffMode string

const (
	RetryBackoffFixed       RetryBackoffMode = "fixed"
	RetryBackoffLinear      RetryBackoffMode = "linear"
	RetryBackoffExponential RetryBackoffMode = "exponential"
)

var retryBackoffNormalizer = normalization.NewNormalizer(map[string]RetryBackoffMode{
	"fixed":       RetryBackoffFixed,
	"constant":    RetryBackoffFixed,
	"linear":      RetryBackoffLinear,
	"exponential": RetryBackoffExponential,
	"exp":         RetryBackoffExponential,
}, RetryBackoffLinear)

// NormalizeRetryBackoff maps raw to a mode. Empty selects linear.
func NormalizeRetryBackoff(raw string) (RetryBackoffMode, error) {
	return retryBackoffNormalizer.NormalizeWithError(raw)
}

// RetryConfig configures how often a failed publish is retried.
type RetryConfig struct {
	Backoff RetryBackoffMode `yaml:"backoff,omitempty"`
	Initial Duration         `yaml:"initial,omitempty"`
	Max     Duration         `yaml:"max,omitempty"`
	// MaxRetries counts attempts after the first; nil keeps the default.
	MaxRetries *int `yaml:"max_retries,omitempty"`
}
