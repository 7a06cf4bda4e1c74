package worker

import (
	"context"
	"path/filepath"
	"testing"

	"budgetrip/internal/amqp"
	"budgetrip/internal/core"
	"budgetrip/internal/sheets/memory"
	"budgetrip/internal/storage"
)

func newTestRepo(t *testing.T) *storage.SQLiteRepository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedEvent(t *testing.T, repo *storage.SQLiteRepository, eventID string) {
	t.Helper()
	ctx := context.Background()

	li := core.LineItem{
		ID:            "li_for_" + eventID,
		Date:          1700000000,
		PaymentMethod: "Visa",
		Description:   "seed item",
		Amount:        core.Money{Cents: -500},
	}
	if _, err := repo.CreateLineItem(ctx, li, core.ProviderCash, ""); err != nil {
		t.Fatalf("seed line item: %v", err)
	}

	e := core.Event{
		ID:          eventID,
		Name:        "Seeded event",
		Category:    "Dining",
		Date:        1700000000,
		Amount:      core.Money{Cents: -500},
		LineItemIDs: []string{li.ID},
	}
	if err := repo.CreateEvent(ctx, e); err != nil {
		t.Fatalf("seed event: %v", err)
	}
}

func TestHandleExportMessage(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	w := NewExportWorker(repo, store, store, 10)
	ctx := context.Background()

	seedEvent(t, repo, "event_1")

	if err := w.HandleExportMessage(ctx, amqp.NewEventExportMessage("event_1")); err != nil {
		t.Fatalf("handle export: %v", err)
	}

	exported := store.Events()
	if len(exported) != 1 || exported[0].ID != "event_1" {
		t.Fatalf("unexpected exported events: %+v", exported)
	}

	// The event no longer shows up in the pending sweep.
	pending, err := repo.ListUnexportedEvents(ctx, 10)
	if err != nil {
		t.Fatalf("list unexported: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("got %d unexported events, want 0", len(pending))
	}
}

func TestHandleExportMessageMissingEvent(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	w := NewExportWorker(repo, store, store, 10)

	// Event deleted before the worker consumed the message: skip, no error.
	msg := amqp.NewEventExportMessage("event_gone")
	if err := w.HandleExportMessage(context.Background(), msg); err != nil {
		t.Fatalf("expected missing event to be skipped, got %v", err)
	}
	if len(store.Events()) != 0 {
		t.Fatal("nothing should have been exported")
	}
}

func TestHandleDeleteMessage(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	w := NewExportWorker(repo, store, store, 10)
	ctx := context.Background()

	seedEvent(t, repo, "event_1")
	if err := w.HandleExportMessage(ctx, amqp.NewEventExportMessage("event_1")); err != nil {
		t.Fatalf("handle export: %v", err)
	}

	err := w.HandleDeleteMessage(ctx, &amqp.EventDeleteMessage{ID: "event_1", Name: "Seeded event"})
	if err != nil {
		t.Fatalf("handle delete: %v", err)
	}
	if len(store.Events()) != 0 {
		t.Fatal("exported event should be gone after delete")
	}
}

func TestHandleDeleteMessageNoDeleter(t *testing.T) {
	repo := newTestRepo(t)
	w := NewExportWorker(repo, memory.New(), nil, 10)

	err := w.HandleDeleteMessage(context.Background(), &amqp.EventDeleteMessage{ID: "event_1"})
	if err != nil {
		t.Fatalf("delete without deleter should be a no-op, got %v", err)
	}
}

func TestProcessUnexportedEvents(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	w := NewExportWorker(repo, store, store, 10)
	ctx := context.Background()

	seedEvent(t, repo, "event_1")
	seedEvent(t, repo, "event_2")

	if err := w.ProcessUnexportedEvents(ctx); err != nil {
		t.Fatalf("process unexported: %v", err)
	}

	if got := len(store.Events()); got != 2 {
		t.Fatalf("exported %d events, want 2", got)
	}

	// Second sweep finds nothing new.
	if err := w.ProcessUnexportedEvents(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if got := len(store.Events()); got != 2 {
		t.Fatalf("exported %d events after rerun, want 2", got)
	}
}

func TestStartupExportCheck(t *testing.T) {
	repo := newTestRepo(t)
	store := memory.New()
	w := NewExportWorker(repo, store, store, 1)
	ctx := context.Background()

	// Batch size 1, startup check uses a 5x batch.
	seedEvent(t, repo, "event_1")
	seedEvent(t, repo, "event_2")
	seedEvent(t, repo, "event_3")

	if err := w.StartupExportCheck(ctx); err != nil {
		t.Fatalf("startup check: %v", err)
	}
	if got := len(store.Events()); got != 3 {
		t.Fatalf("exported %d events, want 3", got)
	}
}
