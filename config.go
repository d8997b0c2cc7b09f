package gencache

import (
	"compress/gzip"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/jonwraymond/gencache/cache"
	"github.com/jonwraymond/gencache/resilience"
)

// StoreSettings sizes one entry store.
type StoreSettings struct {
	// MaxEntries bounds the store. Must be positive.
	MaxEntries int

	// TTL is the absolute expiry window for entries. Must be positive.
	TTL time.Duration

	// RefreshOnRead extends an entry's deadline on every hit. Used for
	// longer-lived stores whose content ages by disuse rather than by
	// wall-clock staleness.
	RefreshOnRead bool
}

// Config configures an Orchestrator.
//
// Zero fields receive the documented defaults in New; out-of-range values
// are rejected there rather than at first use.
type Config struct {
	// Logger receives structured logs. Default: zap.NewNop()
	Logger *zap.Logger

	// Meter exports analytics counters through OpenTelemetry.
	// Default: nil (no export)
	Meter metric.Meter

	// Stores overrides the per-kind store sizing. Kinds absent from the
	// map use the defaults below.
	Stores map[cache.Kind]StoreSettings

	// Shared sizes the cross-kind shared store consulted before the
	// kind-specific store for shareable kinds. It is larger and
	// longer-lived than any kind-specific store.
	Shared StoreSettings

	// DisableSharedStore turns the shared store off entirely.
	DisableSharedStore bool

	// CompressionMinSize is the serialized-size threshold in bytes above
	// which stored values are compressed. Negative disables compression.
	// Default: 1024
	CompressionMinSize int

	// GzipLevel follows compress/gzip semantics. Default: gzip.DefaultCompression
	GzipLevel int

	// CircuitBreaker configures the breakers stamped out per component.
	CircuitBreaker resilience.CircuitBreakerConfig

	// Retry overrides the per-kind retry policies. Kinds absent from the
	// map use the defaults below.
	Retry map[cache.Kind]resilience.RetryPolicy

	// ErrorLogSize bounds the in-memory error log.
	// Default: resilience.DefaultErrorLogSize
	ErrorLogSize int

	// MemoryLimitBytes is the advisory budget the memory health check
	// grades the estimated cache footprint against. Zero disables the
	// check's thresholds.
	MemoryLimitBytes int64

	// DisableSingleFlight allows duplicate concurrent generation for the
	// same key instead of coalescing concurrent misses into one in-flight
	// call. Last writer wins either way.
	DisableSingleFlight bool
}

// Default per-kind store sizings. Kinds with larger, slower payloads get
// smaller capacity and longer TTLs; frequently-changing payloads get larger
// capacity and shorter TTLs.
var defaultStoreSettings = map[cache.Kind]StoreSettings{
	cache.KindGeneration: {MaxEntries: 500, TTL: 30 * time.Minute},
	cache.KindInsights:   {MaxEntries: 200, TTL: 2 * time.Hour, RefreshOnRead: true},
	cache.KindAnalysis:   {MaxEntries: 300, TTL: time.Hour},
	cache.KindValidation: {MaxEntries: 1000, TTL: 15 * time.Minute},
}

// defaultSharedSettings sizes the shared store above every kind-specific
// store.
var defaultSharedSettings = StoreSettings{MaxEntries: 2000, TTL: 4 * time.Hour}

// Default per-kind retry policies. External insight lookups fail fast and
// prefer their fallback; generation is expensive and close to
// deterministic, so it retries less often with longer spacing.
var defaultRetryPolicies = map[cache.Kind]resilience.RetryPolicy{
	cache.KindGeneration: {MaxAttempts: 2, BaseDelay: 500 * time.Millisecond, MaxDelay: 5 * time.Second, Multiplier: 2.0, Jitter: true},
	cache.KindInsights:   {MaxAttempts: 2, BaseDelay: 50 * time.Millisecond, MaxDelay: 500 * time.Millisecond, Multiplier: 2.0, Jitter: true},
	cache.KindAnalysis:   {MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: 2 * time.Second, Multiplier: 2.0, Jitter: true},
	cache.KindValidation: {MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, MaxDelay: 2 * time.Second, Multiplier: 2.0, Jitter: true},
}

// DefaultCompressionMinSize is the compression threshold used when none is
// configured.
const DefaultCompressionMinSize = 1024

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.CompressionMinSize == 0 {
		c.CompressionMinSize = DefaultCompressionMinSize
	}
	if c.GzipLevel == 0 {
		c.GzipLevel = gzip.DefaultCompression
	}
	if c.Shared == (StoreSettings{}) {
		c.Shared = defaultSharedSettings
	}

	stores := make(map[cache.Kind]StoreSettings, len(cache.Kinds))
	for _, kind := range cache.Kinds {
		if s, ok := c.Stores[kind]; ok {
			stores[kind] = s
		} else {
			stores[kind] = defaultStoreSettings[kind]
		}
	}
	c.Stores = stores

	retry := make(map[cache.Kind]resilience.RetryPolicy, len(cache.Kinds))
	for _, kind := range cache.Kinds {
		if p, ok := c.Retry[kind]; ok {
			retry[kind] = p
		} else {
			retry[kind] = defaultRetryPolicies[kind]
		}
	}
	c.Retry = retry

	return c
}

// validate rejects out-of-range values after defaults are applied.
func (c Config) validate() error {
	for _, kind := range cache.Kinds {
		s := c.Stores[kind]
		if s.MaxEntries <= 0 {
			return fmt.Errorf("%w: %s store max entries must be positive, got %d", cache.ErrInvalidConfig, kind, s.MaxEntries)
		}
		if s.TTL <= 0 {
			return fmt.Errorf("%w: %s store ttl must be positive, got %s", cache.ErrInvalidConfig, kind, s.TTL)
		}
	}
	if !c.DisableSharedStore {
		if c.Shared.MaxEntries <= 0 || c.Shared.TTL <= 0 {
			return fmt.Errorf("%w: shared store sizing must be positive", cache.ErrInvalidConfig)
		}
	}
	// Retry policies are validated by resilience.NewRetry in New.
	return nil
}
