package cache

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/atomic"
)

// SnapshotVersion is the current snapshot format version. Restore rejects
// snapshots carrying any other version.
const SnapshotVersion = 1

// Snapshot is a self-describing, versioned copy of store contents.
type Snapshot struct {
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	Entries   []SnapshotEntry `json:"entries"`
}

// SnapshotEntry is one (store kind, key, entry) triple in flattened form.
type SnapshotEntry struct {
	Kind        string    `json:"kind"`
	Key         string    `json:"key"`
	Data        []byte    `json:"data"`
	ContentHash string    `json:"content_hash,omitempty"`
	Technology  string    `json:"technology,omitempty"`
	SizeBytes   int       `json:"size_bytes"`
	Compressed  bool      `json:"compressed"`
	Quality     int       `json:"quality"`
	Popularity  int       `json:"popularity"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	AccessCount int64     `json:"access_count"`
}

// ErrSnapshotVersion is reported when a snapshot's version tag does not
// match SnapshotVersion.
var ErrSnapshotVersion = fmt.Errorf("cache: unsupported snapshot version")

// Validate checks the snapshot's self-description.
func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("cache: snapshot is nil")
	}
	if s.Version != SnapshotVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrSnapshotVersion, s.Version, SnapshotVersion)
	}
	return nil
}

// Export copies the store's current entries into snapshot form. It holds
// the store lock for a single read pass.
func (s *MemoryStore) Export() []SnapshotEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := s.lru.Keys()
	out := make([]SnapshotEntry, 0, len(keys))
	for _, key := range keys {
		entry, ok := s.lru.Peek(key)
		if !ok {
			continue
		}
		out = append(out, SnapshotEntry{
			Kind:        entry.Kind.String(),
			Key:         key,
			Data:        entry.Data,
			ContentHash: entry.ContentHash,
			Technology:  entry.Technology,
			SizeBytes:   entry.SizeBytes,
			Compressed:  entry.Compressed,
			Quality:     entry.Quality,
			Popularity:  entry.Popularity,
			CreatedAt:   entry.CreatedAt,
			ExpiresAt:   entry.ExpiresAt,
			AccessCount: entry.AccessCount.Load(),
		})
	}
	return out
}

// Import replays snapshot entries into the store. Entries that are already
// expired are skipped. The OnEvict and OnReplace hooks stay quiet for the
// whole pass: the caller settles replay accounting from the store's
// before/after occupancy, and firing the hooks too would count the same
// displacement twice. Import is idempotent: replaying the same entries
// replaces identical keys and leaves the store in the same observable state.
func (s *MemoryStore) Import(_ context.Context, entries []SnapshotEntry) (restored int, err error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.muteHooks = true
	defer func() { s.muteHooks = false }()

	for _, se := range entries {
		if now.After(se.ExpiresAt) {
			continue
		}

		kind, perr := ParseKind(se.Kind)
		if perr != nil {
			return restored, perr
		}
		if perr := ValidateKey(se.Key); perr != nil {
			return restored, perr
		}

		entry := &Entry{
			Data:           se.Data,
			ContentHash:    se.ContentHash,
			Technology:     se.Technology,
			Kind:           kind,
			SizeBytes:      se.SizeBytes,
			Compressed:     se.Compressed,
			Quality:        se.Quality,
			Popularity:     se.Popularity,
			CreatedAt:      se.CreatedAt,
			ExpiresAt:      se.ExpiresAt,
			AccessCount:    atomic.NewInt64(se.AccessCount),
			LastAccessedAt: atomic.NewTime(now),
		}
		s.putLocked(se.Key, entry)
		restored++
	}
	return restored, nil
}
