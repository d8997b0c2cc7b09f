// Package cache provides bounded, time-expiring stores for generated
// content.
//
// It provides a Store interface with an LRU memory implementation,
// SHA-256-based fingerprint derivation over canonical serializations,
// threshold-based payload compression, and versioned snapshots for
// backup and restore.
package cache
