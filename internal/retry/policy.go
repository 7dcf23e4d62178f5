// Package retry computes backoff delays for transient publish failures.
package retry

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/checkem/internal/config"
)

// Policy describes how a failed operation is retried. It is immutable after
// construction.
type Policy struct {
	Mode       config.RetryBackoffMode
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int // attempts after the first failure
}

// DefaultPolicy is linear backoff starting at 200ms, capped at 5s, with two
// retries.
func DefaultPolicy() Policy {
	return Policy{
		Mode:       config.RetryBackoffLinear,
		Initial:    200 * time.Millisecond,
		Max:        5 * time.Second,
		MaxRetries: 2,
	}
}

// None never retries.
func None() Policy {
	p := DefaultPolicy()
	p.MaxRetries = 0
	return p
}

// FromConfig builds a policy from the notify.retry section. Zero fields keep
// the defaults.
func FromConfig(rc config.RetryConfig) Policy {
	retries := -1
	if rc.MaxRetries != nil {
		retries = *rc.MaxRetries
	}
	return NewPolicy(rc.Backoff, rc.Initial.Std(), rc.Max.Std(), retries)
}

// NewPolicy builds a policy from raw fields. Non-positive durations, a negative
// retry count and unknown modes fall back to the defaults.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if maxRetries >= 0 {
		p.MaxRetries = maxRetries
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	switch mode {
	case config.RetryBackoffFixed, config.RetryBackoffLinear, config.RetryBackoffExponential:
		p.Mode = mode
	}
	if p.Initial > p.Max {
		p.Initial = p.Max
	}
	return p
}

// Delay returns the wait before retry n (1-based).
func (p Policy) Delay(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case config.RetryBackoffFixed:
		return p.Initial
	case config.RetryBackoffExponential:
		if n > 30 {
			return p.Max
		}
		d = p.Initial * (1 << (n - 1))
	default:
		d = time.Duration(n) * p.Initial
	}
	if d > p.Max || d <= 0 {
		return p.Max
	}
	return d
}

// Validate reports a policy that cannot be applied.
func (p Policy) Validate() error {
	if p.Initial <= 0 {
		return fmt.Errorf("initial delay must be > 0")
	}
	if p.Max <= 0 {
		return fmt.Errorf("max delay must be > 0")
	}
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	return nil
}

// Do runs fn until it succeeds, returns an error retryable rejects, or the
// retry budget is spent. The last error is returned. A nil retryable treats
// every error as retryable. Waiting stops early when ctx is done.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error, retryable func(error) bool) error {
	var err error
	for attempt := 0; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt >= p.MaxRetries || (retryable != nil && !retryable(err)) {
			return err
		}
		timer := time.NewTimer(p.Delay(attempt + 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
