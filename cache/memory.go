package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// StoreConfig configures a MemoryStore.
type StoreConfig struct {
	// Name labels the store in logs and stats, e.g. "generation".
	Name string

	// MaxEntries bounds the number of entries. Must be positive.
	MaxEntries int

	// TTL is the absolute expiry window applied to entries that carry no
	// deadline of their own. Must be positive.
	TTL time.Duration

	// RefreshOnRead extends an entry's deadline by TTL on every hit.
	// Off by default: TTL is absolute from insertion.
	RefreshOnRead bool

	// OnEvict is called when an entry is evicted to make room.
	OnEvict func(key string, entry *Entry)

	// OnExpire is called when an expired entry is removed lazily.
	OnExpire func(key string, entry *Entry)

	// OnReplace is called when Put overwrites an existing live key, with
	// the entry being displaced. Replacement is not an eviction; OnEvict
	// does not fire for it.
	OnReplace func(key string, old *Entry)
}

// MemoryStore is a bounded in-memory store with least-recently-used
// eviction and absolute per-entry expiry.
type MemoryStore struct {
	mu     sync.RWMutex
	lru    *lru.Cache[string, *Entry]
	config StoreConfig
	logger *zap.Logger

	sizeBytes int64

	// suppressEvict masks the LRU eviction callback during explicit
	// removals, which are not capacity evictions.
	suppressEvict bool

	// muteHooks masks OnEvict and OnReplace during a snapshot replay,
	// whose accounting the caller settles from occupancy deltas instead.
	muteHooks bool
}

// NewMemoryStore creates a store with the given configuration. The
// configuration is validated up front: non-positive capacities or TTLs are
// rejected here rather than at first use.
func NewMemoryStore(config StoreConfig, logger *zap.Logger) (*MemoryStore, error) {
	if config.MaxEntries <= 0 {
		return nil, fmt.Errorf("%w: max entries must be positive, got %d", ErrInvalidConfig, config.MaxEntries)
	}
	if config.TTL <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive, got %s", ErrInvalidConfig, config.TTL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &MemoryStore{
		config: config,
		logger: logger,
	}

	inner, err := lru.NewWithEvict[string, *Entry](config.MaxEntries, func(key string, entry *Entry) {
		if s.suppressEvict {
			return
		}
		s.sizeBytes -= int64(entry.SizeBytes)
		if config.OnEvict != nil && !s.muteHooks {
			config.OnEvict(key, entry)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("cache: failed to create lru: %w", err)
	}
	s.lru = inner

	return s, nil
}

// Name returns the store label.
func (s *MemoryStore) Name() string { return s.config.Name }

// Get retrieves an entry by key. A hit refreshes the entry's recency and
// access metadata; the expiry deadline moves only when RefreshOnRead is set.
// Expired entries are removed lazily and reported as absent.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.lru.Get(key)
	if !ok {
		return nil, false
	}

	now := time.Now()
	if entry.Expired(now) {
		s.removeLocked(key, entry)
		if s.config.OnExpire != nil {
			s.config.OnExpire(key, entry)
		}
		return nil, false
	}

	if s.config.RefreshOnRead {
		entry.ExpiresAt = now.Add(s.config.TTL)
	}

	entry.Touch()
	return entry, true
}

// Put stores an entry. When the store is at capacity the least-recently-used
// entry is evicted first. Replacing an existing key resets its recency and
// reports the displaced entry through OnReplace, not as an eviction.
func (s *MemoryStore) Put(_ context.Context, key string, entry *Entry) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if entry == nil {
		return ErrNilEntry
	}

	if entry.ExpiresAt.IsZero() {
		entry.ExpiresAt = time.Now().Add(s.config.TTL)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(key, entry)
	return nil
}

// putLocked stores an entry under the held lock, adjusting the byte count
// for a replaced key.
func (s *MemoryStore) putLocked(key string, entry *Entry) {
	if old, ok := s.lru.Peek(key); ok {
		s.sizeBytes -= int64(old.SizeBytes)
		if s.config.OnReplace != nil && !s.muteHooks {
			s.config.OnReplace(key, old)
		}
	}

	s.lru.Add(key, entry)
	s.sizeBytes += int64(entry.SizeBytes)
}

// Delete removes an entry. Idempotent - no error on miss.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.lru.Peek(key); ok {
		s.removeLocked(key, entry)
	}
	return nil
}

// Len returns the current number of entries, including any that have
// expired but not yet been removed lazily.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lru.Len()
}

// SizeBytes returns the total stored size of all entries.
func (s *MemoryStore) SizeBytes() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sizeBytes
}

// Keys returns all keys ordered from least to most recently used.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lru.Keys()
}

// Purge removes all entries.
func (s *MemoryStore) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.suppressEvict = true
	s.lru.Purge()
	s.suppressEvict = false
	s.sizeBytes = 0
}

// CleanupExpired removes all expired entries in a single pass and returns
// the number removed. It holds the store lock for one scan only.
func (s *MemoryStore) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	removed := 0
	for _, key := range s.lru.Keys() {
		entry, ok := s.lru.Peek(key)
		if !ok || !entry.Expired(now) {
			continue
		}
		s.removeLocked(key, entry)
		if s.config.OnExpire != nil {
			s.config.OnExpire(key, entry)
		}
		removed++
	}

	if removed > 0 {
		s.logger.Debug("removed expired entries",
			zap.String("store", s.config.Name),
			zap.Int("removed", removed))
	}
	return removed
}

// removeLocked removes a key without reporting a capacity eviction.
func (s *MemoryStore) removeLocked(key string, entry *Entry) {
	s.suppressEvict = true
	s.lru.Remove(key)
	s.suppressEvict = false
	s.sizeBytes -= int64(entry.SizeBytes)
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
