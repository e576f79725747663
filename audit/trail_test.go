package audit

import (
	"testing"
	"time"
)

func TestNewTrailSeedsCreationEntry(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	trail := NewTrail("Canvasser", "homeowner created", at)

	if trail.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", trail.Len())
	}
	first := trail.Entries()[0]
	if first.Action != "homeowner created" {
		t.Fatalf("expected creation action, got %q", first.Action)
	}
	if first.ChangedBy != "Canvasser" || !first.At.Equal(at) {
		t.Fatalf("unexpected creation entry: %+v", first)
	}
}

func TestAppendChangePreservesOrder(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	trail := NewTrail("Canvasser", "homeowner created", at)

	trail.AppendChange("Confirmation Team", "verified", false, true, at.Add(time.Hour))
	trail.AppendChange("Admin User", "notes", "", "called back", at.Add(2*time.Hour))

	entries := trail.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[1].Field != "verified" || entries[1].NewValue != true {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
	last, ok := trail.Last()
	if !ok || last.Field != "notes" || last.NewValue != "called back" {
		t.Fatalf("unexpected last entry: %+v", last)
	}
}

func TestEntriesReturnsCopy(t *testing.T) {
	trail := NewTrail("Canvasser", "homeowner created", time.Now())

	entries := trail.Entries()
	entries[0].Action = "tampered"

	if trail.Entries()[0].Action != "homeowner created" {
		t.Fatal("mutating the returned slice must not change the trail")
	}
}
