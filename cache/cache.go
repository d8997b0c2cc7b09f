package cache

import (
	"context"
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a storage key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilStore       = errors.New("cache: store is nil")
	ErrNilEntry       = errors.New("cache: entry is nil")
	ErrInvalidKey     = errors.New("cache: key is invalid")
	ErrKeyTooLong     = errors.New("cache: key exceeds max length")
	ErrInvalidConfig  = errors.New("cache: invalid store configuration")
	ErrEntryCorrupted = errors.New("cache: entry is corrupted")
)

// Store is the interface for a bounded, time-expiring entry store.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use; operations
//   on different keys must not serialize beyond a short critical section.
// - Errors: Get never errors; it returns (nil, false) on miss or expiry.
type Store interface {
	// Get retrieves an entry, refreshing its recency. Expired entries are
	// removed lazily and reported as absent.
	Get(ctx context.Context, key string) (*Entry, bool)

	// Put stores an entry, evicting the least-recently-used entry first
	// when the store is at capacity.
	Put(ctx context.Context, key string, entry *Entry) error

	// Delete removes an entry. Idempotent - no error on miss.
	Delete(ctx context.Context, key string) error

	// Len returns the current number of entries.
	Len() int
}

// ValidateKey checks whether a key is usable as a storage key.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
