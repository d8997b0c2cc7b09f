package analytics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/atomic"
)

// EntryOverheadBytes is the fixed per-entry bookkeeping overhead added to
// the memory estimate on top of each entry's stored size.
const EntryOverheadBytes = 96

// Temperature is the advisory classification of the current hit rate. It
// never gates correctness.
type Temperature string

// Temperatures.
const (
	TemperatureCold Temperature = "cold"
	TemperatureWarm Temperature = "warm"
	TemperatureHot  Temperature = "hot"
)

// Monitor aggregates cache behavior over the process lifetime.
//
// Contract:
// - Concurrency: all methods are safe for concurrent use; counters are
//   atomic and map updates hold a short monitor-local lock, never a store
//   lock.
type Monitor struct {
	requests atomic.Int64
	hits     atomic.Int64
	misses   atomic.Int64

	entries     atomic.Int64
	memoryBytes atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64

	originalBytes atomic.Int64
	savedBytes    atomic.Int64

	generateCalls atomic.Int64
	generateNanos atomic.Int64

	mu     sync.Mutex
	byKind map[string]int64
	byTech map[string]int64
	hourly [24]int64

	instruments *instruments
}

// NewMonitor creates a monitor. A nil meter disables instrument export.
func NewMonitor(meter metric.Meter) (*Monitor, error) {
	m := &Monitor{
		byKind: make(map[string]int64),
		byTech: make(map[string]int64),
	}

	if meter != nil {
		inst, err := newInstruments(meter)
		if err != nil {
			return nil, fmt.Errorf("analytics: failed to create instruments: %w", err)
		}
		m.instruments = inst
	}

	return m, nil
}

// RecordHit records a cache hit for the given kind and technology.
func (m *Monitor) RecordHit(ctx context.Context, kind, technology string) {
	m.hits.Inc()
	m.recordRequest(kind, technology)
	m.instruments.recordRequest(ctx, kind, "hit")
}

// RecordMiss records a cache miss for the given kind and technology.
func (m *Monitor) RecordMiss(ctx context.Context, kind, technology string) {
	m.misses.Inc()
	m.recordRequest(kind, technology)
	m.instruments.recordRequest(ctx, kind, "miss")
}

func (m *Monitor) recordRequest(kind, technology string) {
	m.requests.Inc()

	m.mu.Lock()
	m.byKind[kind]++
	if technology != "" {
		m.byTech[technology]++
	}
	m.hourly[time.Now().Hour()]++
	m.mu.Unlock()
}

// RecordGeneration records one protected generator call and its outcome.
func (m *Monitor) RecordGeneration(ctx context.Context, kind string, duration time.Duration, err error) {
	m.generateCalls.Inc()
	m.generateNanos.Add(int64(duration))
	m.instruments.recordGeneration(ctx, kind, duration, err)
}

// RecordStore records a stored entry: originalSize is the uncompressed
// serialized size, storedSize the size actually kept.
func (m *Monitor) RecordStore(originalSize, storedSize int) {
	m.entries.Inc()
	m.memoryBytes.Add(int64(storedSize) + EntryOverheadBytes)
	m.originalBytes.Add(int64(originalSize))
	if saved := originalSize - storedSize; saved > 0 {
		m.savedBytes.Add(int64(saved))
	}
}

// RecordRemoval records an entry leaving a store. Eviction distinguishes
// capacity evictions from lazy expiries.
func (m *Monitor) RecordRemoval(storedSize int, evicted bool) {
	m.entries.Dec()
	m.memoryBytes.Sub(int64(storedSize) + EntryOverheadBytes)
	if evicted {
		m.evictions.Inc()
	} else {
		m.expirations.Inc()
	}
}

// RecordClear records a bulk purge of one store: entries leave the count
// and their bytes (including per-entry overhead) leave the footprint.
func (m *Monitor) RecordClear(entries, bytes int64) {
	m.entries.Sub(entries)
	m.memoryBytes.Sub(bytes + entries*EntryOverheadBytes)
}

// HitRate returns the hit percentage in [0, 100]; 0 before any request.
func (m *Monitor) HitRate() float64 {
	hits := m.hits.Load()
	total := hits + m.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total) * 100
}

// Temperature derives the advisory signal from the hit rate: hot above
// 80%, warm above 60%, otherwise cold.
func (m *Monitor) Temperature() Temperature {
	rate := m.HitRate()
	switch {
	case rate > 80:
		return TemperatureHot
	case rate > 60:
		return TemperatureWarm
	default:
		return TemperatureCold
	}
}

// CompressionRatio returns stored bytes saved as a fraction of the
// original serialized bytes, in [0, 1].
func (m *Monitor) CompressionRatio() float64 {
	original := m.originalBytes.Load()
	if original == 0 {
		return 0
	}
	return float64(m.savedBytes.Load()) / float64(original)
}

// AverageGenerationTime returns the mean duration of protected generator
// calls, zero before any call.
func (m *Monitor) AverageGenerationTime() time.Duration {
	calls := m.generateCalls.Load()
	if calls == 0 {
		return 0
	}
	return time.Duration(m.generateNanos.Load() / calls)
}

// Suggestion thresholds. Advisory only, never applied automatically.
const (
	suggestionMinRequests    = 50
	lowHitRatePct            = 40.0
	lowCompressionRatio      = 0.10
	minCompressedBytes       = 64 * 1024
	slowGenerationDuration   = 2 * time.Second
	suggestionMinGenerations = 10
)

// Suggestions derives advisory optimization hints from simple threshold
// rules.
func (m *Monitor) Suggestions() []string {
	var out []string

	if m.requests.Load() >= suggestionMinRequests && m.HitRate() < lowHitRatePct {
		out = append(out, "hit rate is low: consider increasing store capacities or extending TTLs")
	}
	if m.originalBytes.Load() >= minCompressedBytes && m.CompressionRatio() < lowCompressionRatio {
		out = append(out, "compression ratio is low: consider lowering the compression threshold")
	}
	if m.generateCalls.Load() >= suggestionMinGenerations && m.AverageGenerationTime() > slowGenerationDuration {
		out = append(out, "average generation time is high: investigate the access pattern feeding misses")
	}

	return out
}

// Report is a point-in-time snapshot of the monitor.
type Report struct {
	Requests              int64
	Hits                  int64
	Misses                int64
	HitRate               float64
	Temperature           Temperature
	Entries               int64
	EstimatedMemoryBytes  int64
	Evictions             int64
	Expirations           int64
	CompressionSavedBytes int64
	CompressionRatio      float64
	AverageGenerationTime time.Duration
	UsageByKind           map[string]int64
	UsageByTechnology     map[string]int64
	HourlyUsage           [24]int64
	Suggestions           []string
}

// Snapshot builds a report from the current counters.
func (m *Monitor) Snapshot() Report {
	m.mu.Lock()
	byKind := make(map[string]int64, len(m.byKind))
	for k, v := range m.byKind {
		byKind[k] = v
	}
	byTech := make(map[string]int64, len(m.byTech))
	for k, v := range m.byTech {
		byTech[k] = v
	}
	hourly := m.hourly
	m.mu.Unlock()

	return Report{
		Requests:              m.requests.Load(),
		Hits:                  m.hits.Load(),
		Misses:                m.misses.Load(),
		HitRate:               m.HitRate(),
		Temperature:           m.Temperature(),
		Entries:               m.entries.Load(),
		EstimatedMemoryBytes:  m.memoryBytes.Load(),
		Evictions:             m.evictions.Load(),
		Expirations:           m.expirations.Load(),
		CompressionSavedBytes: m.savedBytes.Load(),
		CompressionRatio:      m.CompressionRatio(),
		AverageGenerationTime: m.AverageGenerationTime(),
		UsageByKind:           byKind,
		UsageByTechnology:     byTech,
		HourlyUsage:           hourly,
		Suggestions:           m.Suggestions(),
	}
}
