package task

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"leadflow/lead"
)

func newTestDispatcher() *Dispatcher {
	seq := 0
	base := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	return NewDispatcher(nil).
		WithIDGenerator(func() string { seq++; return fmt.Sprintf("task-%d", seq) }).
		WithClock(func() time.Time { return base })
}

func sampleLead() lead.Lead {
	return lead.Lead{ID: "lead-1", Name: "Pat Homeowner", CreatedBy: "Jo"}
}

func TestOnLeadCreatedSpawnsVerificationTask(t *testing.T) {
	dispatcher := newTestDispatcher()

	created, err := dispatcher.OnLeadCreated(context.Background(), sampleLead())
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if created.Type != TypeVerification {
		t.Fatalf("expected verification task, got %s", created.Type)
	}
	if created.AssignedTo != "confirmation" {
		t.Fatalf("expected confirmation assignee, got %q", created.AssignedTo)
	}
	if created.Completed {
		t.Fatal("new task must start open")
	}
	if created.Priority != PriorityHigh {
		t.Fatalf("expected high priority, got %s", created.Priority)
	}
	if created.Description != "Verify and schedule inspection for Pat Homeowner" {
		t.Fatalf("unexpected description: %q", created.Description)
	}
	if got := created.DueDate.Sub(created.CreatedAt); got != 24*time.Hour {
		t.Fatalf("expected 24h due window, got %s", got)
	}
	if created.CustomerID != "lead-1" || created.CustomerName != "Pat Homeowner" {
		t.Fatalf("unexpected lead linkage: %+v", created)
	}

	if open := dispatcher.List(context.Background(), true); len(open) != 1 {
		t.Fatalf("expected exactly one open task, got %d", len(open))
	}
}

func TestCustomerNameIsASnapshot(t *testing.T) {
	dispatcher := newTestDispatcher()
	ctx := context.Background()

	created, _ := dispatcher.OnLeadCreated(ctx, sampleLead())

	// Rename the lead; the task keeps the name it saw at creation.
	got, err := dispatcher.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CustomerName != "Pat Homeowner" {
		t.Fatalf("snapshot name must not track the lead, got %q", got.CustomerName)
	}
}

func TestCompleteIsIdempotent(t *testing.T) {
	dispatcher := newTestDispatcher()
	ctx := context.Background()
	created, _ := dispatcher.OnLeadCreated(ctx, sampleLead())

	first, err := dispatcher.Complete(ctx, created.ID, "Confirmation Team")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !first.Completed || first.CompletedAt == nil || first.CompletedBy != "Confirmation Team" {
		t.Fatalf("unexpected completion state: %+v", first)
	}

	second, err := dispatcher.Complete(ctx, created.ID, "Admin User")
	if err != nil {
		t.Fatalf("re-complete must not error: %v", err)
	}
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatal("re-completion must not restamp completedAt")
	}
	if second.CompletedBy != "Confirmation Team" {
		t.Fatal("re-completion must not change completedBy")
	}
}

func TestCompleteUnknownTask(t *testing.T) {
	dispatcher := newTestDispatcher()

	if _, err := dispatcher.Complete(context.Background(), "no-such-task", "Admin User"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
