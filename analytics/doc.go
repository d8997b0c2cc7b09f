// Package analytics observes cache behavior.
//
// A Monitor aggregates hit/miss counts, per-kind and per-technology usage,
// compression savings, a memory estimate, and a wrapping hourly histogram,
// and derives an advisory temperature signal plus threshold-based
// optimization suggestions. Counters can additionally be exported through
// an OpenTelemetry meter.
package analytics
