package gencache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jonwraymond/gencache/cache"
)

// CreateBackup serializes the full contents of every store into one
// versioned snapshot. Each store is copied under a single read pass; the
// snapshot is a point-in-time view, not a transaction across stores.
func (o *Orchestrator) CreateBackup() *cache.Snapshot {
	snap := &cache.Snapshot{
		Version:   cache.SnapshotVersion,
		CreatedAt: time.Now(),
	}
	for _, store := range o.allStores() {
		snap.Entries = append(snap.Entries, store.Export()...)
	}
	return snap
}

// RestoreFromBackup replays a snapshot into the stores, routing each entry
// by its kind the same way a live put would. Already-expired entries are
// skipped, as are compressed entries when this orchestrator has compression
// disabled: it carries no codec to decode them with, and importing them
// would only shed them as corrupted on first read. Restore is idempotent:
// replaying the same snapshot twice leaves the caches in the same
// observable state.
func (o *Orchestrator) RestoreFromBackup(ctx context.Context, snap *cache.Snapshot) (int, error) {
	if err := snap.Validate(); err != nil {
		return 0, err
	}

	skipped := 0
	byStore := make(map[*cache.MemoryStore][]cache.SnapshotEntry)
	for _, se := range snap.Entries {
		kind, err := cache.ParseKind(se.Kind)
		if err != nil {
			return 0, err
		}
		if se.Compressed && o.config.CompressionMinSize <= 0 {
			skipped++
			continue
		}
		target := o.stores[kind]
		if kind.Shareable() && o.shared != nil {
			target = o.shared
		}
		byStore[target] = append(byStore[target], se)
	}
	if skipped > 0 {
		o.logger.Warn("skipped compressed snapshot entries, compression is disabled",
			zap.Int("skipped", skipped))
	}

	restored := 0
	for store, entries := range byStore {
		beforeLen, beforeBytes := int64(store.Len()), store.SizeBytes()
		n, err := store.Import(ctx, entries)
		restored += n
		afterLen, afterBytes := int64(store.Len()), store.SizeBytes()
		// Import mutes the store hooks, so the occupancy delta is the whole
		// accounting: replacements and displaced entries included.
		o.monitor.RecordClear(beforeLen-afterLen, beforeBytes-afterBytes)
		if err != nil {
			return restored, err
		}
	}

	o.logger.Info("restored cache snapshot",
		zap.Time("created_at", snap.CreatedAt),
		zap.Int("entries", len(snap.Entries)),
		zap.Int("restored", restored))
	return restored, nil
}
