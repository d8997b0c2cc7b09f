package gencache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/jonwraymond/gencache/cache"
)

// WarmedQuality is the fixed moderate quality score assigned to warmed
// placeholder entries; generated entries carry zero until scored.
const WarmedQuality = 70

// WarmupPattern describes one anticipated request to pre-populate.
type WarmupPattern struct {
	// Kind selects the target store.
	Kind cache.Kind

	// Technology tags the pattern, folded to lower case like any request.
	Technology string

	// Input is the representative request input; it is fingerprinted
	// exactly like a live request so the identical real request hits.
	Input any

	// Payload is the placeholder result to serve until a real generation
	// replaces it. When nil a minimal placeholder document is stored.
	Payload []byte
}

// WarmCache pre-populates stores from anticipated request patterns so the
// first real occurrence of each hits immediately. Warmed entries carry a
// fixed moderate quality score and no processing time. Invalid patterns are
// skipped, not fatal; the number of entries actually stored is returned.
func (o *Orchestrator) WarmCache(ctx context.Context, patterns []WarmupPattern) int {
	warmed := 0
	for _, p := range patterns {
		if !p.Kind.Valid() {
			o.logger.Warn("skipping warmup pattern with unknown kind",
				zap.Int("kind", int(p.Kind)))
			continue
		}

		fp, err := o.keyer.Fingerprint(p.Kind, p.Technology, p.Input, nil)
		if err != nil {
			o.logger.Warn("skipping unfingerprintable warmup pattern",
				zap.String("kind", p.Kind.String()),
				zap.Error(err))
			continue
		}

		payload := p.Payload
		if payload == nil {
			payload = placeholderPayload(fp)
		}

		stored, compressed, cerr := o.policy.Encode(o.codec, payload)
		if cerr != nil {
			stored, compressed = payload, false
		}

		target := o.stores[p.Kind]
		ttl := o.config.Stores[p.Kind].TTL
		if p.Kind.Shareable() && o.shared != nil {
			target = o.shared
			ttl = o.config.Shared.TTL
		}

		entry := cache.NewEntry(stored, p.Kind, fp.Technology(), time.Now().Add(ttl))
		entry.ContentHash = cache.ContentHash(payload)
		entry.Compressed = compressed
		entry.Quality = WarmedQuality

		if err := target.Put(ctx, fp.StorageKey(), entry); err != nil {
			o.logger.Warn("failed to store warmup entry",
				zap.String("store", target.Name()),
				zap.Error(err))
			continue
		}
		o.monitor.RecordStore(len(payload), len(stored))
		warmed++
	}

	o.logger.Info("cache warmup complete",
		zap.Int("patterns", len(patterns)),
		zap.Int("warmed", warmed))
	return warmed
}

// placeholderPayload builds the stand-in document stored for a pattern
// without an explicit payload.
func placeholderPayload(fp cache.Fingerprint) []byte {
	out, _ := json.Marshal(map[string]any{
		"warmed":     true,
		"kind":       fp.Kind().String(),
		"technology": fp.Technology(),
		"digest":     fp.Digest(),
	})
	return out
}
