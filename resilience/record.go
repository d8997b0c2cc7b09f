package resilience

import (
	"sync"
	"time"
)

// DefaultErrorLogSize bounds the in-memory error log when no size is given.
const DefaultErrorLogSize = 256

// Record captures one classified failure for reporting. Records are
// append-only and never persisted.
type Record struct {
	Kind         FailureKind
	Severity     Severity
	Component    string
	Message      string
	Timestamp    time.Time
	Retryable    bool
	FallbackUsed bool
}

// ErrorLog is a bounded, FIFO-trimmed in-memory failure log.
type ErrorLog struct {
	mu      sync.Mutex
	max     int
	records []Record
}

// NewErrorLog creates a log bounded to max records. Non-positive bounds
// fall back to DefaultErrorLogSize.
func NewErrorLog(max int) *ErrorLog {
	if max <= 0 {
		max = DefaultErrorLogSize
	}
	return &ErrorLog{max: max}
}

// Append adds a record, trimming the oldest when the bound is exceeded.
func (l *ErrorLog) Append(rec Record) {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, rec)
	if len(l.records) > l.max {
		l.records = l.records[len(l.records)-l.max:]
	}
}

// Len returns the number of retained records.
func (l *ErrorLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Snapshot returns a copy of the retained records, oldest first.
func (l *ErrorLog) Snapshot() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)
	return out
}

// Clear discards all retained records.
func (l *ErrorLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
}

// LogStats aggregates the retained records for reporting.
type LogStats struct {
	Total       int
	ByKind      map[FailureKind]int
	BySeverity  map[Severity]int
	ByComponent map[string]int
}

// Stats aggregates the retained records by kind, severity, and component.
func (l *ErrorLog) Stats() LogStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	stats := LogStats{
		Total:       len(l.records),
		ByKind:      make(map[FailureKind]int),
		BySeverity:  make(map[Severity]int),
		ByComponent: make(map[string]int),
	}
	for _, rec := range l.records {
		stats.ByKind[rec.Kind]++
		stats.BySeverity[rec.Severity]++
		stats.ByComponent[rec.Component]++
	}
	return stats
}
