package config

import (
	"fmt"
	"net/url"
	"strings"

	"git.home.luguber.info/inful/checkem/internal/foundation/errors"
)

// Validate checks the configuration after defaults have been applied.
// The returned error is a validation error naming the offending field.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateStore,
		c.validateNotify,
		c.validateWatch,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateStore() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return fieldError("store.path", fmt.Errorf("must not be empty"))
	}
	return nil
}

func (c *Config) validateNotify() error {
	r := c.Notify.Retry
	if r.Initial < 0 || r.Max < 0 {
		return fieldError("notify.retry", fmt.Errorf("durations must not be negative"))
	}
	if r.MaxRetries != nil && *r.MaxRetries < 0 {
		return fieldError("notify.retry.max_retries", fmt.Errorf("must not be negative"))
	}
	if c.Notify.NATSURL == "" {
		return nil
	}
	u, err := url.Parse(c.Notify.NATSURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fieldError("notify.nats_url", fmt.Errorf("invalid url %q", c.Notify.NATSURL))
	}
	return nil
}

func (c *Config) validateWatch() error {
	seen := make(map[string]bool, len(c.Watch.Targets))
	for i, t := range c.Watch.Targets {
		if t.Key == "" {
			return fieldError(fmt.Sprintf("watch.targets[%d].key", i), fmt.Errorf("must not be empty"))
		}
		if seen[t.Key] {
			return fieldError(fmt.Sprintf("watch.targets[%d].key", i), fmt.Errorf("duplicate key %q", t.Key))
		}
		seen[t.Key] = true
		if t.Path == "" {
			return fieldError(fmt.Sprintf("watch.targets[%d].path", i), fmt.Errorf("must not be empty"))
		}
	}
	return nil
}

func fieldError(field string, cause error) error {
	return errors.ValidationError(fmt.Sprintf("invalid configuration field %s", field)).
		WithCause(cause).
		WithContext("field", field).
		Build()
}
