package cache

import "fmt"

// Kind identifies the class of generated content a store holds.
type Kind int

const (
	// KindGeneration holds generated content payloads.
	KindGeneration Kind = iota
	// KindInsights holds technology-insight lookup results.
	KindInsights
	// KindAnalysis holds code-analysis results.
	KindAnalysis
	// KindValidation holds validation results.
	KindValidation
)

// Kinds lists every valid kind in declaration order.
var Kinds = []Kind{KindGeneration, KindInsights, KindAnalysis, KindValidation}

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindGeneration:
		return "generation"
	case KindInsights:
		return "insights"
	case KindAnalysis:
		return "analysis"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k >= KindGeneration && k <= KindValidation
}

// Shareable reports whether content of this kind may be reused across
// categories and therefore participates in the cross-kind shared store.
// Insight payloads are technology-scoped rather than request-scoped, so
// they are the only shareable kind.
func (k Kind) Shareable() bool {
	return k == KindInsights
}

// ParseKind parses a kind from its string form.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "generation":
		return KindGeneration, nil
	case "insights":
		return KindInsights, nil
	case "analysis":
		return KindAnalysis, nil
	case "validation":
		return KindValidation, nil
	default:
		return 0, fmt.Errorf("cache: unknown kind %q", s)
	}
}
