package gencache

import (
	"github.com/jonwraymond/gencache/analytics"
	"github.com/jonwraymond/gencache/health"
)

// Health builds an aggregator over the orchestrator's operational facets:
// circuit breakers, hit rate, estimated memory, and retained failures.
// Checks read counter snapshots only and never contend with cache traffic.
func (o *Orchestrator) Health() *health.Aggregator {
	agg := health.NewAggregator(health.AggregatorConfig{})

	agg.Register(health.NewBreakerChecker(o.breakers.States))
	agg.Register(health.NewHitRateChecker(func() analytics.Report {
		return o.monitor.Snapshot()
	}))
	agg.Register(health.NewMemoryChecker(o.config.MemoryLimitBytes, func() int64 {
		return o.Stats().EstimatedMemoryBytes
	}))
	agg.Register(health.NewErrorLogChecker(o.errorLog.Stats))

	return agg
}
