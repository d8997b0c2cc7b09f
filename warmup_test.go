package gencache

import (
	"context"
	"testing"
	"time"

	"github.com/jonwraymond/gencache/cache"
)

func TestWarmCache(t *testing.T) {
	o := newTestOrchestrator(t, Config{})
	ctx := context.Background()

	warmed := o.WarmCache(ctx, []WarmupPattern{
		{Kind: cache.KindAnalysis, Technology: "go", Input: "common request", Payload: []byte("precomputed analysis")},
		{Kind: cache.KindValidation, Technology: "python", Input: "lint config"},
	})
	if warmed != 2 {
		t.Fatalf("WarmCache() = %d, want 2", warmed)
	}

	// The identical real request hits without running the generator.
	out, err := o.Cached(ctx, cache.KindAnalysis, "go", "common request", func(ctx context.Context) ([]byte, error) {
		t.Error("Generator should not run for a warmed input")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Cached() error = %v", err)
	}
	if string(out) != "precomputed analysis" {
		t.Errorf("Result = %q, want warmed payload", out)
	}

	// Warmed entries carry the fixed moderate quality score.
	fp, _ := o.keyer.Fingerprint(cache.KindAnalysis, "go", "common request", nil)
	entry, ok := o.stores[cache.KindAnalysis].Get(ctx, fp.StorageKey())
	if !ok {
		t.Fatal("Warmed entry missing from store")
	}
	if entry.Quality != WarmedQuality {
		t.Errorf("Quality = %d, want %d", entry.Quality, WarmedQuality)
	}
}

func TestWarmCache_DefaultPlaceholder(t *testing.T) {
	o := newTestOrchestrator(t, Config{})
	ctx := context.Background()

	warmed := o.WarmCache(ctx, []WarmupPattern{
		{Kind: cache.KindValidation, Technology: "go", Input: "check"},
	})
	if warmed != 1 {
		t.Fatalf("WarmCache() = %d, want 1", warmed)
	}

	out, err := o.Cached(ctx, cache.KindValidation, "go", "check", func(ctx context.Context) ([]byte, error) {
		t.Error("Generator should not run for a warmed input")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("Cached() error = %v", err)
	}
	if len(out) == 0 {
		t.Error("Placeholder payload is empty")
	}
}

func TestWarmCache_ShareableKindWarmsSharedStore(t *testing.T) {
	o := newTestOrchestrator(t, Config{})
	ctx := context.Background()

	o.WarmCache(ctx, []WarmupPattern{
		{Kind: cache.KindInsights, Technology: "react", Input: "hooks overview", Payload: []byte("insight")},
	})

	if got := o.shared.Len(); got != 1 {
		t.Errorf("Shared store Len() = %d, want 1", got)
	}
	if got := o.stores[cache.KindInsights].Len(); got != 0 {
		t.Errorf("Insights store Len() = %d, want 0", got)
	}
}

func TestWarmCache_SkipsInvalidPatterns(t *testing.T) {
	o := newTestOrchestrator(t, Config{})
	ctx := context.Background()

	warmed := o.WarmCache(ctx, []WarmupPattern{
		{Kind: cache.Kind(99), Technology: "go", Input: "bad kind"},
		{Kind: cache.KindAnalysis, Technology: "go", Input: "good", Payload: []byte("ok")},
	})

	if warmed != 1 {
		t.Errorf("WarmCache() = %d, want 1 with invalid pattern skipped", warmed)
	}
}

func TestWarmCache_EntryExpires(t *testing.T) {
	o := newTestOrchestrator(t, Config{
		Stores: map[cache.Kind]StoreSettings{
			cache.KindAnalysis: {MaxEntries: 10, TTL: 20 * time.Millisecond},
		},
	})
	ctx := context.Background()

	o.WarmCache(ctx, []WarmupPattern{
		{Kind: cache.KindAnalysis, Technology: "go", Input: "short lived", Payload: []byte("v")},
	})

	time.Sleep(30 * time.Millisecond)

	calls := 0
	_, err := o.Cached(ctx, cache.KindAnalysis, "go", "short lived", func(ctx context.Context) ([]byte, error) {
		calls++
		return []byte("fresh"), nil
	})
	if err != nil {
		t.Fatalf("Cached() error = %v", err)
	}
	if calls != 1 {
		t.Errorf("Generator calls = %d, want 1 after warmed entry expired", calls)
	}
}
