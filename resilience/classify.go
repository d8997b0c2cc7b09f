package resilience

import (
	"context"
	"errors"
	"strings"
)

// FailureKind is the coarse taxonomy a failure is classified into.
type FailureKind string

// Failure kinds.
const (
	KindNetwork    FailureKind = "network"
	KindTimeout    FailureKind = "timeout"
	KindParsing    FailureKind = "parsing"
	KindValidation FailureKind = "validation"
	KindUpstream   FailureKind = "upstream-context"
	KindCache      FailureKind = "cache"
	KindAnalysis   FailureKind = "analysis"
	KindGeneration FailureKind = "generation"
	KindUnknown    FailureKind = "unknown"
)

// Severity grades how serious a classified failure is.
type Severity string

// Severity levels.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// kindKeywords maps failure kinds to the message keywords that indicate
// them. Rules are checked in taxonomy order; the first match wins and
// ambiguous failures fall through to KindUnknown.
var kindKeywords = []struct {
	kind     FailureKind
	keywords []string
}{
	{KindTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{KindNetwork, []string{"network", "connection", "dial", "refused", "unreachable", "broken pipe"}},
	{KindParsing, []string{"parse", "parsing", "unmarshal", "decode", "syntax", "malformed"}},
	{KindValidation, []string{"validation", "invalid", "schema"}},
	{KindUpstream, []string{"context service", "upstream", "context lookup"}},
	{KindCache, []string{"cache"}},
	{KindAnalysis, []string{"analysis", "analyze"}},
	{KindGeneration, []string{"generation", "generate"}},
}

// nonRetryableKeywords flag failures that will not recover on retry:
// caller mistakes and permission/existence problems.
var nonRetryableKeywords = []string{
	"unauthorized", "forbidden", "not found", "permission denied",
}

// Classify maps a failure to its kind by inspecting the error chain and
// message against keyword rules. Ambiguous failures are KindUnknown.
func Classify(err error) FailureKind {
	if err == nil {
		return KindUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	if errors.Is(err, ErrCircuitOpen) {
		return KindUpstream
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range kindKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(msg, kw) {
				return rule.kind
			}
		}
	}
	return KindUnknown
}

// SeverityOf derives a severity from a failure kind and the failing
// component's name. Generation components are always critical: a failure
// there means the primary output path is down.
func SeverityOf(kind FailureKind, component string) Severity {
	if strings.HasPrefix(component, "generation") {
		return SeverityCritical
	}

	switch kind {
	case KindValidation, KindCache:
		return SeverityLow
	case KindParsing, KindNetwork, KindTimeout, KindAnalysis:
		return SeverityMedium
	case KindUpstream:
		return SeverityHigh
	case KindGeneration:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}

// Retryable reports whether a failure may recover on retry. Validation and
// parsing failures are deterministic and never retried; auth and not-found
// style failures likewise. Everything else is considered transient.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) {
		return false
	}

	switch Classify(err) {
	case KindValidation, KindParsing:
		return false
	}

	msg := strings.ToLower(err.Error())
	for _, kw := range nonRetryableKeywords {
		if strings.Contains(msg, kw) {
			return false
		}
	}
	return true
}
