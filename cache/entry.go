package cache

import (
	"time"

	"go.uber.org/atomic"
)

// Entry is a metadata-enriched cache entry.
//
// Contract:
// - Ownership: each store exclusively owns its entries; an entry is never
//   shared between two stores.
// - Data holds the stored representation, which is the compressed form when
//   Compressed is true. Decoding Data through the inverse transform yields
//   the original serialized value for the lifetime of the entry.
type Entry struct {
	// Data is the stored payload, possibly compressed.
	Data []byte

	// ContentHash is the full hex digest of the uncompressed serialized
	// value. Used for duplicate-content detection, never for key derivation.
	ContentHash string

	// Technology and Kind classify the entry for analytics and
	// index-based invalidation.
	Technology string
	Kind       Kind

	// SizeBytes is the size of the stored (possibly compressed) form.
	SizeBytes int

	// Compressed reports whether Data holds the compressed form.
	Compressed bool

	// Quality and Popularity are advisory scores in [0, 100] used for
	// analytics and warmup ranking only.
	Quality    int
	Popularity int

	CreatedAt time.Time
	ExpiresAt time.Time

	// AccessCount and LastAccessedAt are updated on every hit.
	AccessCount    *atomic.Int64
	LastAccessedAt *atomic.Time
}

// NewEntry creates an entry expiring at the given absolute deadline.
func NewEntry(data []byte, kind Kind, technology string, expiresAt time.Time) *Entry {
	now := time.Now()
	return &Entry{
		Data:           data,
		Kind:           kind,
		Technology:     technology,
		SizeBytes:      len(data),
		CreatedAt:      now,
		ExpiresAt:      expiresAt,
		AccessCount:    atomic.NewInt64(0),
		LastAccessedAt: atomic.NewTime(now),
	}
}

// Expired reports whether the entry has passed its absolute deadline.
func (e *Entry) Expired(now time.Time) bool {
	return now.After(e.ExpiresAt)
}

// Touch records a hit: increments the access count and refreshes the
// last-accessed time. It never extends the expiry deadline.
func (e *Entry) Touch() {
	e.AccessCount.Inc()
	e.LastAccessedAt.Store(time.Now())
}
