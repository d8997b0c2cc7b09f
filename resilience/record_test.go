package resilience

import (
	"fmt"
	"testing"
	"time"
)

func TestErrorLog_Append(t *testing.T) {
	log := NewErrorLog(10)

	log.Append(Record{Kind: KindNetwork, Component: "insights"})

	if log.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", log.Len())
	}

	recs := log.Snapshot()
	if recs[0].Timestamp.IsZero() {
		t.Error("Append should stamp records without a timestamp")
	}
}

func TestErrorLog_FIFOTrim(t *testing.T) {
	log := NewErrorLog(3)

	for i := 0; i < 5; i++ {
		log.Append(Record{
			Kind:    KindNetwork,
			Message: fmt.Sprintf("failure %d", i),
		})
	}

	if log.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", log.Len())
	}

	// Oldest records are trimmed first.
	recs := log.Snapshot()
	for i, rec := range recs {
		want := fmt.Sprintf("failure %d", i+2)
		if rec.Message != want {
			t.Errorf("Record %d message = %q, want %q", i, rec.Message, want)
		}
	}
}

func TestErrorLog_DefaultSize(t *testing.T) {
	log := NewErrorLog(0)

	for i := 0; i < DefaultErrorLogSize+10; i++ {
		log.Append(Record{Kind: KindUnknown})
	}

	if log.Len() != DefaultErrorLogSize {
		t.Errorf("Len() = %d, want %d", log.Len(), DefaultErrorLogSize)
	}
}

func TestErrorLog_Clear(t *testing.T) {
	log := NewErrorLog(10)
	log.Append(Record{Kind: KindNetwork})

	log.Clear()

	if log.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", log.Len())
	}
}

func TestErrorLog_SnapshotIsCopy(t *testing.T) {
	log := NewErrorLog(10)
	log.Append(Record{Message: "original"})

	recs := log.Snapshot()
	recs[0].Message = "mutated"

	if got := log.Snapshot()[0].Message; got != "original" {
		t.Errorf("Message = %q, want %q", got, "original")
	}
}

func TestErrorLog_Stats(t *testing.T) {
	log := NewErrorLog(10)
	now := time.Now()

	log.Append(Record{Kind: KindNetwork, Severity: SeverityMedium, Component: "insights-go", Timestamp: now})
	log.Append(Record{Kind: KindNetwork, Severity: SeverityMedium, Component: "insights-go", Timestamp: now})
	log.Append(Record{Kind: KindValidation, Severity: SeverityLow, Component: "validation", Timestamp: now})

	stats := log.Stats()

	if stats.Total != 3 {
		t.Errorf("Total = %d, want 3", stats.Total)
	}
	if stats.ByKind[KindNetwork] != 2 {
		t.Errorf("ByKind[network] = %d, want 2", stats.ByKind[KindNetwork])
	}
	if stats.BySeverity[SeverityLow] != 1 {
		t.Errorf("BySeverity[low] = %d, want 1", stats.BySeverity[SeverityLow])
	}
	if stats.ByComponent["insights-go"] != 2 {
		t.Errorf("ByComponent[insights-go] = %d, want 2", stats.ByComponent["insights-go"])
	}
}
