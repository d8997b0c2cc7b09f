package gencache

import (
	"github.com/jonwraymond/gencache/analytics"
	"github.com/jonwraymond/gencache/cache"
	"github.com/jonwraymond/gencache/resilience"
)

// StoreStats describes the current occupancy of one entry store.
type StoreStats struct {
	Name       string `json:"name"`
	Entries    int    `json:"entries"`
	MaxEntries int    `json:"max_entries"`
	SizeBytes  int64  `json:"size_bytes"`
}

// Stats is a point-in-time view across all stores and the analytics
// monitor. Counters are read without pausing cache traffic, so totals may
// be marginally inconsistent with each other under load.
type Stats struct {
	analytics.Report

	Stores []StoreStats `json:"stores"`
}

// Stats reports cache occupancy and the full analytics snapshot.
func (o *Orchestrator) Stats() Stats {
	stats := Stats{Report: o.monitor.Snapshot()}

	for _, kind := range cache.Kinds {
		store := o.stores[kind]
		stats.Stores = append(stats.Stores, StoreStats{
			Name:       store.Name(),
			Entries:    store.Len(),
			MaxEntries: o.config.Stores[kind].MaxEntries,
			SizeBytes:  store.SizeBytes(),
		})
	}
	if o.shared != nil {
		stats.Stores = append(stats.Stores, StoreStats{
			Name:       o.shared.Name(),
			Entries:    o.shared.Len(),
			MaxEntries: o.config.Shared.MaxEntries,
			SizeBytes:  o.shared.SizeBytes(),
		})
	}
	return stats
}

// ErrorStats aggregates the retained error records with the live state of
// every circuit breaker.
type ErrorStats struct {
	resilience.LogStats

	Breakers map[string]resilience.State `json:"breakers"`
	Recent   []resilience.Record         `json:"recent"`
}

// ErrorStats reports failure counts by kind, severity, and component, the
// most recent records, and each breaker's current state.
func (o *Orchestrator) ErrorStats() ErrorStats {
	return ErrorStats{
		LogStats: o.errorLog.Stats(),
		Breakers: o.breakers.States(),
		Recent:   o.errorLog.Snapshot(),
	}
}

// Suggestions returns the monitor's tuning advice for the current traffic
// pattern.
func (o *Orchestrator) Suggestions() []string {
	return o.monitor.Suggestions()
}
