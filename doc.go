// Package gencache is a resilient cache orchestrator for expensive,
// potentially unreliable generation operations.
//
// It fronts opaque generator functions (content generation, technology
// insight lookup, code analysis, validation) with content-addressed caches
// and a circuit-breaker/retry/fallback resilience layer, so repeated inputs
// never recompute and a degrading collaborator never cascades.
//
// # Architecture
//
// The package composes three subsystems:
//
//   - cache: size-bounded, time-expiring entry stores keyed by a
//     deterministic fingerprint of (operation kind, technology, input),
//     with threshold-based compression and versioned snapshots.
//
//   - resilience: per-component circuit breakers, bounded retry with
//     exponential backoff and jitter, failure classification, and a
//     bounded in-memory error log.
//
//   - analytics: hit/miss accounting, memory and compression estimates,
//     an hourly usage histogram, a coarse temperature signal, and
//     advisory tuning suggestions.
//
// # Usage
//
// Construct one Orchestrator per process and route every expensive call
// through Cached:
//
//	orch, err := gencache.New(gencache.Config{Logger: logger})
//	if err != nil {
//	    return err
//	}
//
//	result, err := orch.Cached(ctx, cache.KindAnalysis, "go", req,
//	    func(ctx context.Context) ([]byte, error) {
//	        return analyzer.Run(ctx, req)
//	    },
//	    gencache.WithFallback(func(ctx context.Context) ([]byte, error) {
//	        return staleAnalysis(req), nil
//	    }))
//
// A cache hit returns immediately and never touches the resilience layer.
// A miss runs the generator under the component's circuit breaker and the
// kind's retry policy; if every attempt fails the fallback result is
// returned instead and the failure is classified and logged.
package gencache
