// Package notify publishes change events produced by a tracker.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ChangeEvent describes one value-changing check.
type ChangeEvent struct {
	ID           string    `json:"id"`
	Key          string    `json:"key"`
	Value        any       `json:"value"`
	UpdatedAt    time.Time `json:"updatedAt"`
	TimesChecked int       `json:"timesChecked"`
	TimesUpdated int       `json:"timesUpdated"`
}

// NewChangeEvent builds an event with a fresh random ID.
func NewChangeEvent(key string, value any, updatedAt time.Time, timesChecked, timesUpdated int) ChangeEvent {
	return ChangeEvent{
		ID:           uuid.NewString(),
		Key:          key,
		Value:        value,
		UpdatedAt:    updatedAt.UTC(),
		TimesChecked: timesChecked,
		TimesUpdated: timesUpdated,
	}
}

// Notifier delivers change events.
type Notifier interface {
	Notify(ctx context.Context, event ChangeEvent) error
}

// NoopNotifier drops every event.
type NoopNotifier struct{}

func (NoopNotifier) Notify(context.Context, ChangeEvent) error { return nil }

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, event ChangeEvent) error

func (f Func) Notify(ctx context.Context, event ChangeEvent) error { return f(ctx, event) }
