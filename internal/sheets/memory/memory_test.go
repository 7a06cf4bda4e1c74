package memory

import (
	"context"
	"testing"

	"budgetrip/internal/core"
)

func testEvent(id string) core.Event {
	return core.Event{
		ID:          id,
		Name:        "Dinner out",
		Category:    "Dining",
		Date:        1700000000,
		Amount:      core.Money{Cents: -4500},
		LineItemIDs: []string{"line_item_1"},
	}
}

func TestAppendAndEvents(t *testing.T) {
	s := New()
	ctx := context.Background()

	ref, err := s.Append(ctx, testEvent("event_1"))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	if got := len(s.Events()); got != 1 {
		t.Fatalf("got %d events, want 1", got)
	}
}

func TestAppendInvalid(t *testing.T) {
	s := New()

	if _, err := s.Append(context.Background(), core.Event{ID: "event_x"}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDelete(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.Append(ctx, testEvent("event_1"))
	s.Append(ctx, testEvent("event_2"))

	if err := s.Delete(ctx, "event_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	events := s.Events()
	if len(events) != 1 || events[0].ID != "event_2" {
		t.Fatalf("unexpected events after delete: %+v", events)
	}

	// Unknown ID is a no-op.
	if err := s.Delete(ctx, "event_missing"); err != nil {
		t.Fatalf("delete unknown: %v", err)
	}

	if err := s.Delete(ctx, ""); err == nil {
		t.Fatal("expected error for empty ID")
	}
}
