package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewRetry_Defaults(t *testing.T) {
	r, err := NewRetry(RetryPolicy{})
	if err != nil {
		t.Fatalf("NewRetry() error = %v", err)
	}

	p := r.Policy()
	if p.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", p.MaxAttempts)
	}
	if p.BaseDelay != 100*time.Millisecond {
		t.Errorf("BaseDelay = %v, want 100ms", p.BaseDelay)
	}
	if p.MaxDelay != 30*time.Second {
		t.Errorf("MaxDelay = %v, want 30s", p.MaxDelay)
	}
	if p.Multiplier != 2.0 {
		t.Errorf("Multiplier = %f, want 2.0", p.Multiplier)
	}
}

func TestNewRetry_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		policy RetryPolicy
	}{
		{"negative attempts", RetryPolicy{MaxAttempts: -1}},
		{"negative base delay", RetryPolicy{BaseDelay: -time.Second}},
		{"max below base", RetryPolicy{BaseDelay: time.Second, MaxDelay: time.Millisecond}},
		{"multiplier below one", RetryPolicy{Multiplier: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRetry(tt.policy); !errors.Is(err, ErrInvalidPolicy) {
				t.Errorf("NewRetry() error = %v, want ErrInvalidPolicy", err)
			}
		})
	}
}

func TestRetry_SuccessFirstAttempt(t *testing.T) {
	r, _ := NewRetry(RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	}, nil)

	if err != nil {
		t.Errorf("Execute() error = %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("Calls = %d, want 1", calls)
	}
}

func TestRetry_SuccessAfterFailures(t *testing.T) {
	r, _ := NewRetry(RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	}, nil)

	if err != nil {
		t.Errorf("Execute() error = %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("Calls = %d, want 3", calls)
	}
}

func TestRetry_Exhausted(t *testing.T) {
	r, _ := NewRetry(RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	testErr := errors.New("persistent")
	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return testErr
	}, nil)

	if calls != 3 {
		t.Errorf("Calls = %d, want 3", calls)
	}
	if !errors.Is(err, ErrMaxRetriesExceeded) {
		t.Errorf("Execute() error = %v, want ErrMaxRetriesExceeded", err)
	}
	if !errors.Is(err, testErr) {
		t.Errorf("Execute() error = %v, want wrapped %v", err, testErr)
	}
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	r, _ := NewRetry(RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond})

	testErr := errors.New("validation failed")
	calls := 0
	err := r.Execute(context.Background(), func(ctx context.Context) error {
		calls++
		return testErr
	}, Retryable)

	if calls != 1 {
		t.Errorf("Calls = %d, want 1", calls)
	}
	if err != testErr {
		t.Errorf("Execute() error = %v, want %v unwrapped", err, testErr)
	}
}

func TestRetry_NoSleepAfterFinalAttempt(t *testing.T) {
	r, _ := NewRetry(RetryPolicy{MaxAttempts: 3, BaseDelay: 30 * time.Millisecond, Multiplier: 1.0, MaxDelay: 30 * time.Millisecond})

	start := time.Now()
	_ = r.Execute(context.Background(), func(ctx context.Context) error {
		return errors.New("persistent")
	}, nil)
	elapsed := time.Since(start)

	// 3 attempts mean exactly 2 sleeps of 30ms each.
	if elapsed < 55*time.Millisecond {
		t.Errorf("Elapsed = %v, want at least 2 backoff sleeps", elapsed)
	}
	if elapsed > 120*time.Millisecond {
		t.Errorf("Elapsed = %v, want no sleep after the final attempt", elapsed)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	r, _ := NewRetry(RetryPolicy{MaxAttempts: 5, BaseDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := r.Execute(ctx, func(ctx context.Context) error {
		calls++
		return errors.New("transient")
	}, nil)

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("Calls = %d, want 1", calls)
	}
}

func TestRetry_Delay(t *testing.T) {
	r, _ := NewRetry(RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    300 * time.Millisecond,
		Multiplier:  2.0,
	})

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 300 * time.Millisecond}, // capped at MaxDelay
		{4, 300 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := r.delay(tt.attempt); got != tt.want {
			t.Errorf("delay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRetry_DelayJitterBounds(t *testing.T) {
	r, _ := NewRetry(RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    time.Second,
		Multiplier:  2.0,
		Jitter:      true,
	})

	// Jitter keeps every delay within ±25% of the deterministic value.
	for i := 0; i < 100; i++ {
		got := r.delay(1)
		if got < 75*time.Millisecond || got > 125*time.Millisecond {
			t.Fatalf("delay(1) = %v, want within [75ms, 125ms]", got)
		}
	}
}
