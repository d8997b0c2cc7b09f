package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/gencache/resilience"
)

func ExampleCircuitBreaker() {
	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		FailureThreshold: 2,
		RecoveryTimeout:  time.Minute,
	})

	op := func(ctx context.Context) error {
		return errors.New("connection refused")
	}

	for i := 0; i < 3; i++ {
		err := cb.Execute(context.Background(), op)
		fmt.Println(err)
	}

	// Output:
	// connection refused
	// connection refused
	// resilience: circuit breaker is open
}

func ExampleRetry() {
	retry, err := resilience.NewRetry(resilience.RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
	})
	if err != nil {
		panic(err)
	}

	attempts := 0
	err = retry.Execute(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 2 {
			return errors.New("transient network error")
		}
		return nil
	}, resilience.Retryable)

	fmt.Println(err, attempts)
	// Output: <nil> 2
}

func ExampleClassify() {
	fmt.Println(resilience.Classify(errors.New("dial tcp: connection refused")))
	fmt.Println(resilience.Classify(errors.New("schema validation failed")))
	// Output:
	// network
	// validation
}
