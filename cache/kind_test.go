package cache

import "testing"

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindGeneration, "generation"},
		{KindInsights, "insights"},
		{KindAnalysis, "analysis"},
		{KindValidation, "validation"},
		{Kind(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", int(tt.kind), got, tt.want)
		}
	}
}

func TestParseKind_RoundTrip(t *testing.T) {
	for _, kind := range Kinds {
		parsed, err := ParseKind(kind.String())
		if err != nil {
			t.Errorf("ParseKind(%q) error = %v", kind, err)
		}
		if parsed != kind {
			t.Errorf("ParseKind(%q) = %v, want %v", kind, parsed, kind)
		}
	}

	if _, err := ParseKind("mystery"); err == nil {
		t.Error("ParseKind of unknown string should error")
	}
}

func TestKind_Valid(t *testing.T) {
	for _, kind := range Kinds {
		if !kind.Valid() {
			t.Errorf("Kind %v should be valid", kind)
		}
	}
	if Kind(-1).Valid() || Kind(99).Valid() {
		t.Error("Out-of-range kinds should be invalid")
	}
}

func TestKind_Shareable(t *testing.T) {
	// Insight payloads are technology-scoped, so only they cross stores.
	for _, kind := range Kinds {
		want := kind == KindInsights
		if got := kind.Shareable(); got != want {
			t.Errorf("%v.Shareable() = %v, want %v", kind, got, want)
		}
	}
}
