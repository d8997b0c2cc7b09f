package resilience

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy is a value object describing bounded-attempt retry with
// exponential backoff.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts, including the initial
	// call. Default: 3
	MaxAttempts int

	// BaseDelay is the delay before the first retry.
	// Default: 100ms
	BaseDelay time.Duration

	// MaxDelay caps the delay between retries.
	// Default: 30s
	MaxDelay time.Duration

	// Multiplier is the exponential backoff base.
	// Default: 2.0
	Multiplier float64

	// Jitter randomizes each delay by up to ±25% to prevent retry storms.
	Jitter bool
}

// withDefaults fills in zero fields.
func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = 3
	}
	if p.BaseDelay == 0 {
		p.BaseDelay = 100 * time.Millisecond
	}
	if p.MaxDelay == 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.Multiplier == 0 {
		p.Multiplier = 2.0
	}
	return p
}

// Validate rejects out-of-range policy values.
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts must be at least 1, got %d", ErrInvalidPolicy, p.MaxAttempts)
	}
	if p.BaseDelay < 0 {
		return fmt.Errorf("%w: base delay must not be negative", ErrInvalidPolicy)
	}
	if p.MaxDelay < p.BaseDelay {
		return fmt.Errorf("%w: max delay %s below base delay %s", ErrInvalidPolicy, p.MaxDelay, p.BaseDelay)
	}
	if p.Multiplier < 1.0 {
		return fmt.Errorf("%w: multiplier must be at least 1.0, got %f", ErrInvalidPolicy, p.Multiplier)
	}
	return nil
}

// Retry executes operations with bounded attempts and backoff.
type Retry struct {
	policy RetryPolicy
}

// NewRetry creates a retry handler. Zero policy fields receive defaults;
// out-of-range values are rejected.
func NewRetry(policy RetryPolicy) (*Retry, error) {
	policy = policy.withDefaults()
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Retry{policy: policy}, nil
}

// Policy returns the retry policy.
func (r *Retry) Policy() RetryPolicy {
	return r.policy
}

// Execute runs the operation up to MaxAttempts times. Before each retry it
// sleeps min(BaseDelay*Multiplier^(attempt-1), MaxDelay), jittered when
// enabled. It stops immediately, re-raising the most recent failure, when
// retryable reports false; exhausting every attempt returns the last
// failure wrapped in ErrMaxRetriesExceeded. It never sleeps after the
// final attempt, and the sleep suspends only this call: concurrent
// operations proceed untouched. A nil retryable treats every error as
// retryable.
func (r *Retry) Execute(ctx context.Context, op func(context.Context) error, retryable func(error) bool) error {
	var lastErr error

	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if retryable != nil && !retryable(err) {
			return err
		}

		if attempt >= r.policy.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.delay(attempt)):
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, r.policy.MaxAttempts, lastErr)
}

// delay computes the backoff before the retry following the given attempt.
func (r *Retry) delay(attempt int) time.Duration {
	backoff := float64(r.policy.BaseDelay) * math.Pow(r.policy.Multiplier, float64(attempt-1))
	if backoff > float64(r.policy.MaxDelay) {
		backoff = float64(r.policy.MaxDelay)
	}

	if r.policy.Jitter && backoff > 0 {
		// ±25% uniform jitter.
		// #nosec G404 -- jitter is non-cryptographic timing variance.
		backoff += backoff * (rand.Float64()*0.5 - 0.25)
	}

	if backoff < 0 {
		backoff = 0
	}
	return time.Duration(backoff)
}
