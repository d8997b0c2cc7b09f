package health

import (
	"context"
	"fmt"

	"github.com/jonwraymond/gencache/analytics"
	"github.com/jonwraymond/gencache/resilience"
)

// NewBreakerChecker reports on the circuit breakers feeding the cache.
// Any open breaker degrades the subsystem: requests still resolve through
// cached entries and fallbacks, but a collaborator is down.
func NewBreakerChecker(states func() map[string]resilience.State) *CheckerFunc {
	return NewCheckerFunc("circuit-breakers", func(ctx context.Context) Result {
		current := states()

		open := make([]string, 0)
		details := make(map[string]any, len(current))
		for name, state := range current {
			details[name] = state.String()
			if state == resilience.StateOpen {
				open = append(open, name)
			}
		}

		if len(open) > 0 {
			return Degraded(fmt.Sprintf("%d of %d breakers open", len(open), len(current))).WithDetails(details)
		}
		return Healthy(fmt.Sprintf("all %d breakers closed", len(current))).WithDetails(details)
	})
}

// hitRateMinRequests is the request floor below which the hit rate carries
// no signal.
const hitRateMinRequests = 50

// NewHitRateChecker reports on cache effectiveness. A cold cache under
// meaningful traffic is degraded; it serves correctly but recomputes too
// much.
func NewHitRateChecker(snapshot func() analytics.Report) *CheckerFunc {
	return NewCheckerFunc("hit-rate", func(ctx context.Context) Result {
		report := snapshot()

		details := map[string]any{
			"requests":    report.Requests,
			"hit_rate":    report.HitRate,
			"temperature": string(report.Temperature),
		}

		if report.Requests >= hitRateMinRequests && report.Temperature == analytics.TemperatureCold {
			return Degraded(fmt.Sprintf("cache is cold at %.1f%% hit rate", report.HitRate)).WithDetails(details)
		}
		return Healthy(fmt.Sprintf("cache is %s at %.1f%% hit rate", report.Temperature, report.HitRate)).WithDetails(details)
	})
}

// NewMemoryChecker reports on the estimated cache memory footprint against
// a byte budget. Zero limit disables the check's thresholds.
func NewMemoryChecker(limitBytes int64, estimate func() int64) *CheckerFunc {
	return NewCheckerFunc("memory", func(ctx context.Context) Result {
		used := estimate()

		details := map[string]any{
			"estimated_bytes": used,
			"limit_bytes":     limitBytes,
		}

		switch {
		case limitBytes <= 0:
			return Healthy(fmt.Sprintf("estimated %d bytes cached", used)).WithDetails(details)
		case used > limitBytes:
			return Unhealthy(fmt.Sprintf("estimated %d bytes exceeds limit %d", used, limitBytes), nil).WithDetails(details)
		case used*10 > limitBytes*8:
			return Degraded(fmt.Sprintf("estimated %d bytes above 80%% of limit %d", used, limitBytes)).WithDetails(details)
		default:
			return Healthy(fmt.Sprintf("estimated %d of %d bytes used", used, limitBytes)).WithDetails(details)
		}
	})
}

// NewErrorLogChecker reports on retained failure records. Critical records
// degrade the subsystem.
func NewErrorLogChecker(stats func() resilience.LogStats) *CheckerFunc {
	return NewCheckerFunc("error-log", func(ctx context.Context) Result {
		current := stats()

		details := map[string]any{
			"total": current.Total,
		}
		for sev, n := range current.BySeverity {
			details[string(sev)] = n
		}

		if critical := current.BySeverity[resilience.SeverityCritical]; critical > 0 {
			return Degraded(fmt.Sprintf("%d critical failures retained", critical)).WithDetails(details)
		}
		return Healthy(fmt.Sprintf("%d failures retained, none critical", current.Total)).WithDetails(details)
	})
}
