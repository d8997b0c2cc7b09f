// Package resilience protects calls to degrading collaborators.
//
// This package implements the failure-handling patterns the cache
// orchestrator wraps around every generator call.
//
// # Patterns
//
//   - Circuit Breaker: per-component failure tracking that short-circuits
//     calls to a degrading collaborator until a recovery window elapses.
//     A Registry creates breakers lazily by component name.
//
//   - Retry: bounded-attempt retry with exponential backoff and optional
//     ±25% jitter, parameterized per operation class via RetryPolicy.
//
//   - Classification: a failure taxonomy (network, timeout, parsing,
//     validation, upstream-context, cache, analysis, generation, unknown)
//     with severity derivation and retryability rules.
//
//   - ErrorLog: a bounded, FIFO-trimmed in-memory record of classified
//     failures for operational dashboards.
//
// # Usage
//
//	reg := resilience.NewRegistry(resilience.CircuitBreakerConfig{
//	    FailureThreshold: 5,
//	    RecoveryTimeout:  30 * time.Second,
//	}, logger)
//
//	retry, _ := resilience.NewRetry(resilience.RetryPolicy{
//	    MaxAttempts: 3,
//	    BaseDelay:   100 * time.Millisecond,
//	    MaxDelay:    2 * time.Second,
//	    Multiplier:  2.0,
//	    Jitter:      true,
//	})
//
//	cb := reg.Get("insights-lookup")
//	err := cb.Execute(ctx, func(ctx context.Context) error {
//	    return retry.Execute(ctx, fetchInsights, resilience.Retryable)
//	})
package resilience
