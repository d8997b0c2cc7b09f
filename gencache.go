package gencache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jonwraymond/gencache/analytics"
	"github.com/jonwraymond/gencache/cache"
	"github.com/jonwraymond/gencache/resilience"
)

// Generator produces a serialized result for one cache request. Generators
// are opaque to the orchestrator: content generation, insight lookup,
// analysis, and validation all arrive through this signature.
type Generator func(ctx context.Context) ([]byte, error)

// Orchestrator composes the entry stores with circuit-breaker, retry, and
// fallback protection around every generator call.
//
// Construct one Orchestrator per process with New and pass it by reference
// to all consumers; it holds no hidden global state.
type Orchestrator struct {
	config Config
	logger *zap.Logger

	keyer  cache.Keyer
	codec  cache.Codec
	policy cache.CompressionPolicy

	stores map[cache.Kind]*cache.MemoryStore
	shared *cache.MemoryStore

	breakers *resilience.Registry
	retries  map[cache.Kind]*resilience.Retry
	errorLog *resilience.ErrorLog
	monitor  *analytics.Monitor

	sf singleflight.Group
}

// New creates an Orchestrator from the given configuration. Zero config
// fields receive documented defaults; out-of-range values are rejected
// here, not at first use.
func New(config Config) (*Orchestrator, error) {
	config = config.withDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}

	monitor, err := analytics.NewMonitor(config.Meter)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		config:   config,
		logger:   config.Logger,
		keyer:    cache.NewDefaultKeyer(),
		policy:   cache.CompressionPolicy{MinSize: config.CompressionMinSize},
		breakers: resilience.NewRegistry(config.CircuitBreaker, config.Logger),
		errorLog: resilience.NewErrorLog(config.ErrorLogSize),
		monitor:  monitor,
		retries:  make(map[cache.Kind]*resilience.Retry, len(cache.Kinds)),
		stores:   make(map[cache.Kind]*cache.MemoryStore, len(cache.Kinds)),
	}

	if config.CompressionMinSize > 0 {
		codec, cerr := cache.NewGzipCodec(config.GzipLevel)
		if cerr != nil {
			return nil, cerr
		}
		o.codec = codec
	} else {
		o.codec = cache.NewNoopCodec()
		o.policy = cache.CompressionPolicy{}
	}

	for _, kind := range cache.Kinds {
		store, serr := o.newStore(kind.String(), config.Stores[kind])
		if serr != nil {
			return nil, serr
		}
		o.stores[kind] = store

		retry, rerr := resilience.NewRetry(config.Retry[kind])
		if rerr != nil {
			return nil, fmt.Errorf("%s retry: %w", kind, rerr)
		}
		o.retries[kind] = retry
	}

	if !config.DisableSharedStore {
		shared, serr := o.newStore("shared", config.Shared)
		if serr != nil {
			return nil, serr
		}
		o.shared = shared
	}

	return o, nil
}

func (o *Orchestrator) newStore(name string, settings StoreSettings) (*cache.MemoryStore, error) {
	return cache.NewMemoryStore(cache.StoreConfig{
		Name:          name,
		MaxEntries:    settings.MaxEntries,
		TTL:           settings.TTL,
		RefreshOnRead: settings.RefreshOnRead,
		OnEvict: func(key string, entry *cache.Entry) {
			o.monitor.RecordRemoval(entry.SizeBytes, true)
		},
		OnExpire: func(key string, entry *cache.Entry) {
			o.monitor.RecordRemoval(entry.SizeBytes, false)
		},
		// A replacement displaces an entry already counted by RecordStore;
		// back it out so the next RecordStore nets to one entry.
		OnReplace: func(key string, old *cache.Entry) {
			o.monitor.RecordClear(1, int64(old.SizeBytes))
		},
	}, o.logger.Named(name))
}

// CallOption adjusts a single Cached call.
type CallOption func(*callOptions)

type callOptions struct {
	fallback Generator
	extra    map[string]string
}

// WithFallback supplies a degraded substitute result returned when the
// protected generator ultimately fails. Fallback results are not cached.
func WithFallback(fallback Generator) CallOption {
	return func(co *callOptions) { co.fallback = fallback }
}

// WithExtra adds key discriminators to the fingerprint, for requests whose
// identity is not fully captured by (kind, technology, input).
func WithExtra(extra map[string]string) CallOption {
	return func(co *callOptions) { co.extra = extra }
}

// generated carries one generation outcome through the single-flight group.
type generated struct {
	data         []byte
	fromFallback bool
}

// Cached is the single entry point combining fingerprinting, cache lookup,
// resilience-wrapped generation, storage, and analytics.
//
// A hit never touches the circuit breaker or retry machinery; a miss always
// runs the generator under both. A corrupted stored entry is treated as a
// miss and regenerated, never surfaced to the caller.
func (o *Orchestrator) Cached(ctx context.Context, kind cache.Kind, technology string, input any, generate Generator, opts ...CallOption) ([]byte, error) {
	if generate == nil {
		return nil, fmt.Errorf("gencache: generator is nil")
	}

	var co callOptions
	for _, opt := range opts {
		opt(&co)
	}

	fp, err := o.keyer.Fingerprint(kind, technology, input, co.extra)
	if err != nil {
		return nil, err
	}
	key := fp.StorageKey()

	if payload, ok := o.lookup(ctx, key, kind); ok {
		o.monitor.RecordHit(ctx, kind.String(), fp.Technology())
		return payload, nil
	}
	o.monitor.RecordMiss(ctx, kind.String(), fp.Technology())

	if o.config.DisableSingleFlight {
		res, err := o.generate(ctx, kind, fp, generate, co.fallback)
		if err != nil {
			return nil, err
		}
		return res.data, nil
	}

	v, err, _ := o.sf.Do(key, func() (any, error) {
		return o.generate(ctx, kind, fp, generate, co.fallback)
	})
	if err != nil {
		return nil, err
	}
	return v.(*generated).data, nil
}

// lookup consults the shared store first for shareable kinds, then the
// kind-specific store. Entries that fail to decode are dropped and
// reported as absent.
func (o *Orchestrator) lookup(ctx context.Context, key string, kind cache.Kind) ([]byte, bool) {
	stores := make([]*cache.MemoryStore, 0, 2)
	if kind.Shareable() && o.shared != nil {
		stores = append(stores, o.shared)
	}
	stores = append(stores, o.stores[kind])

	for _, store := range stores {
		entry, ok := store.Get(ctx, key)
		if !ok {
			continue
		}

		payload, err := cache.Decode(o.codec, entry.Data, entry.Compressed)
		if err == nil && entry.ContentHash != "" && cache.ContentHash(payload) != entry.ContentHash {
			err = cache.ErrEntryCorrupted
		}
		if err != nil {
			// Corrupted entry: drop it and regenerate instead of
			// surfacing a cache-internal error.
			o.logger.Warn("dropping undecodable cache entry",
				zap.String("store", store.Name()),
				zap.String("key", key),
				zap.Error(err))
			_ = store.Delete(ctx, key)
			o.monitor.RecordClear(1, int64(entry.SizeBytes))
			o.errorLog.Append(resilience.Record{
				Kind:      resilience.KindCache,
				Severity:  resilience.SeverityLow,
				Component: store.Name(),
				Message:   err.Error(),
				Retryable: false,
			})
			continue
		}

		return payload, true
	}
	return nil, false
}

// generate runs the generator under breaker+retry protection and stores a
// successful result.
func (o *Orchestrator) generate(ctx context.Context, kind cache.Kind, fp cache.Fingerprint, generate, fallback Generator) (*generated, error) {
	component := componentName(kind, fp.Technology())

	start := time.Now()
	data, usedFallback, err := o.protect(ctx, component, o.retries[kind], generate, fallback)
	o.monitor.RecordGeneration(ctx, kind.String(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if !usedFallback {
		o.store(ctx, kind, fp, data)
	}
	return &generated{data: data, fromFallback: usedFallback}, nil
}

// componentName derives the breaker name for one operation class, scoped
// by technology so one degrading collaborator does not trip unrelated ones.
func componentName(kind cache.Kind, technology string) string {
	if technology == "" {
		return kind.String()
	}
	return kind.String() + "-" + technology
}

// Protect runs an operation under the named component's circuit breaker
// and the given retry policy, recording any unrecovered failure. When a
// fallback is supplied its result resolves the call; a failing fallback is
// recorded and re-raised.
func (o *Orchestrator) Protect(ctx context.Context, component string, policy resilience.RetryPolicy, op, fallback Generator) ([]byte, error) {
	retry, err := resilience.NewRetry(policy)
	if err != nil {
		return nil, err
	}
	data, _, perr := o.protect(ctx, component, retry, op, fallback)
	return data, perr
}

func (o *Orchestrator) protect(ctx context.Context, component string, retry *resilience.Retry, op, fallback Generator) (data []byte, usedFallback bool, err error) {
	breaker := o.breakers.Get(component)

	cerr := breaker.Execute(ctx, func(ctx context.Context) error {
		return retry.Execute(ctx, func(ctx context.Context) error {
			var gerr error
			data, gerr = op(ctx)
			return gerr
		}, resilience.Retryable)
	})
	if cerr == nil {
		return data, false, nil
	}

	kind := resilience.Classify(cerr)
	rec := resilience.Record{
		Kind:      kind,
		Severity:  resilience.SeverityOf(kind, component),
		Component: component,
		Message:   cerr.Error(),
		Retryable: resilience.Retryable(cerr),
	}

	if fallback == nil {
		o.errorLog.Append(rec)
		o.logger.Warn("protected operation failed",
			zap.String("component", component),
			zap.String("kind", string(kind)),
			zap.Error(cerr))
		return nil, false, fmt.Errorf("%s: %w", component, cerr)
	}

	rec.FallbackUsed = true
	o.errorLog.Append(rec)

	fbData, fbErr := fallback(ctx)
	if fbErr != nil {
		fbKind := resilience.Classify(fbErr)
		o.errorLog.Append(resilience.Record{
			Kind:      fbKind,
			Severity:  resilience.SeverityOf(fbKind, component),
			Component: component,
			Message:   fbErr.Error(),
			Retryable: resilience.Retryable(fbErr),
		})
		return nil, false, fmt.Errorf("%s: fallback failed: %w", component, fbErr)
	}

	o.logger.Debug("returned fallback result",
		zap.String("component", component),
		zap.Error(cerr))
	return fbData, true, nil
}

// store size-checks, optionally compresses, and stores one generated
// payload with its metadata. Compression problems degrade to an
// uncompressed put and never fail the store.
func (o *Orchestrator) store(ctx context.Context, kind cache.Kind, fp cache.Fingerprint, data []byte) {
	stored, compressed, cerr := o.policy.Encode(o.codec, data)
	if cerr != nil {
		o.logger.Warn("compression failed, storing uncompressed",
			zap.String("kind", kind.String()),
			zap.Error(cerr))
		o.errorLog.Append(resilience.Record{
			Kind:      resilience.KindCache,
			Severity:  resilience.SeverityLow,
			Component: componentName(kind, fp.Technology()),
			Message:   cerr.Error(),
			Retryable: false,
		})
	}

	target := o.stores[kind]
	ttl := o.config.Stores[kind].TTL
	if kind.Shareable() && o.shared != nil {
		target = o.shared
		ttl = o.config.Shared.TTL
	}

	entry := cache.NewEntry(stored, kind, fp.Technology(), time.Now().Add(ttl))
	entry.ContentHash = cache.ContentHash(data)
	entry.Compressed = compressed

	if err := target.Put(ctx, fp.StorageKey(), entry); err != nil {
		o.logger.Warn("failed to store generated entry",
			zap.String("store", target.Name()),
			zap.Error(err))
		return
	}
	o.monitor.RecordStore(len(data), len(stored))
}

// ResetCircuitBreaker forces the named component's breaker back to closed.
func (o *Orchestrator) ResetCircuitBreaker(component string) {
	o.breakers.Reset(component)
}

// ResetAllCircuitBreakers forces every breaker back to closed.
func (o *Orchestrator) ResetAllCircuitBreakers() {
	o.breakers.ResetAll()
}

// ClearErrorLog discards all retained error records.
func (o *Orchestrator) ClearErrorLog() {
	o.errorLog.Clear()
}

// Clear purges every store.
func (o *Orchestrator) Clear() {
	for _, store := range o.allStores() {
		entries := int64(store.Len())
		bytes := store.SizeBytes()
		store.Purge()
		o.monitor.RecordClear(entries, bytes)
	}
	o.logger.Info("cleared all cache stores")
}

// allStores returns the kind stores plus the shared store when enabled.
func (o *Orchestrator) allStores() []*cache.MemoryStore {
	stores := make([]*cache.MemoryStore, 0, len(cache.Kinds)+1)
	for _, kind := range cache.Kinds {
		stores = append(stores, o.stores[kind])
	}
	if o.shared != nil {
		stores = append(stores, o.shared)
	}
	return stores
}
