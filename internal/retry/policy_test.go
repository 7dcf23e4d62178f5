package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"git.home.luguber.info/inful/checkem/internal/config"
)

func TestDefaultPolicy(t *testing.T) {
	p := DefaultPolicy()
	if p.Mode != config.RetryBackoffLinear {
		t.Fatalf("mode = %s, want linear", p.Mode)
	}
	if p.Initial != 200*time.Millisecond || p.Max != 5*time.Second || p.MaxRetries != 2 {
		t.Fatalf("unexpected default policy %+v", p)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("default policy invalid: %v", err)
	}
}

// Initial larger than Max is clamped.
func TestNewPolicyOverrides(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, 5*time.Second, 2*time.Second, 5)
	if p.Initial != 2*time.Second || p.Max != 2*time.Second {
		t.Fatalf("expected 2s/2s, got %v/%v", p.Initial, p.Max)
	}
	if p.Mode != config.RetryBackoffFixed || p.MaxRetries != 5 {
		t.Fatalf("unexpected policy %+v", p)
	}
}

func TestNewPolicyUnknownModeFallsBack(t *testing.T) {
	p := NewPolicy("weird", 250*time.Millisecond, 500*time.Millisecond, 1)
	if p.Mode != config.RetryBackoffLinear {
		t.Fatalf("mode = %s, want linear", p.Mode)
	}
}

func TestFromConfig(t *testing.T) {
	zero := 0
	p := FromConfig(config.RetryConfig{
		Backoff:    config.RetryBackoffExponential,
		Initial:    config.Duration(10 * time.Millisecond),
		MaxRetries: &zero,
	})
	if p.Mode != config.RetryBackoffExponential || p.Initial != 10*time.Millisecond {
		t.Fatalf("unexpected policy %+v", p)
	}
	if p.Max != DefaultPolicy().Max {
		t.Errorf("max = %v, want default", p.Max)
	}
	if p.MaxRetries != 0 {
		t.Errorf("explicit zero retries lost: %d", p.MaxRetries)
	}

	if got := FromConfig(config.RetryConfig{}).MaxRetries; got != DefaultPolicy().MaxRetries {
		t.Errorf("nil max_retries = %d, want default", got)
	}
}

func TestDelayModes(t *testing.T) {
	ms := time.Millisecond
	tests := []struct {
		name   string
		policy Policy
		want   []time.Duration
	}{
		{"fixed", NewPolicy(config.RetryBackoffFixed, 100*ms, 500*ms, 3), []time.Duration{100 * ms, 100 * ms, 100 * ms}},
		{"linear", NewPolicy(config.RetryBackoffLinear, 100*ms, 250*ms, 5), []time.Duration{100 * ms, 200 * ms, 250 * ms, 250 * ms}},
		{"exponential", NewPolicy(config.RetryBackoffExponential, 50*ms, 160*ms, 5), []time.Duration{50 * ms, 100 * ms, 160 * ms, 160 * ms}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i, want := range tt.want {
				if got := tt.policy.Delay(i + 1); got != want {
					t.Errorf("retry %d: got %v, want %v", i+1, got, want)
				}
			}
		})
	}
}

func TestDelayEdgeCases(t *testing.T) {
	p := NewPolicy(config.RetryBackoffExponential, 10*time.Millisecond, time.Second, 1)
	if d := p.Delay(0); d != 0 {
		t.Fatalf("retry 0: got %v", d)
	}
	if d := p.Delay(-1); d != 0 {
		t.Fatalf("retry -1: got %v", d)
	}
	if d := p.Delay(200); d != time.Second {
		t.Fatalf("large retry count should cap at max, got %v", d)
	}
}

func TestValidate(t *testing.T) {
	bad := []Policy{
		{Initial: 0, Max: time.Second, MaxRetries: 1},
		{Initial: time.Second, Max: 0, MaxRetries: 1},
		{Initial: time.Second, Max: 2 * time.Second, MaxRetries: -1},
	}
	for i, p := range bad {
		if err := p.Validate(); err == nil {
			t.Errorf("policy %d: expected error", i)
		}
	}
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 3)
	calls := 0
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoStopsAfterBudget(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 2)
	calls := 0
	boom := errors.New("boom")
	err := p.Do(context.Background(), func(context.Context) error {
		calls++
		return boom
	}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoSkipsPermanentErrors(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, 5)
	calls := 0
	_ = p.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("permanent")
	}, func(error) bool { return false })
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDoHonorsCancellation(t *testing.T) {
	p := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 5)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- p.Do(ctx, func(context.Context) error {
			calls++
			return errors.New("transient")
		}, nil)
	}()
	cancel()
	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected last error after cancellation")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Do did not return after cancellation")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}
