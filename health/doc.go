// Package health surfaces the cache subsystem's operational condition as
// composable checks.
//
// A Checker observes one facet: breaker states, hit rate, memory footprint,
// or retained failures. The Aggregator runs registered checkers in parallel
// under a shared timeout and folds their results into one overall status.
// Checks read monitor snapshots and breaker states only; they never hold a
// store lock.
//
// Statuses grade service, not correctness: a degraded cache still answers
// every request, it just recomputes or falls back more than it should.
package health
