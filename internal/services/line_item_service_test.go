package services

import (
	"context"
	"path/filepath"
	"testing"

	"budgetrip/internal/core"
	"budgetrip/internal/integrations"
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

func testLineItem(id string, cents int64) core.LineItem {
	return core.LineItem{
		ID:            id,
		Date:          1700000000,
		PaymentMethod: "Visa",
		Description:   "desc " + id,
		Amount:        core.Money{Cents: cents},
	}
}

func TestLineItemServiceCreate(t *testing.T) {
	svc := NewLineItemService(newTestRepo(t))
	ctx := context.Background()

	id, err := svc.Create(ctx, core.LineItem{
		Date:          1700000000,
		PaymentMethod: "cash",
		Description:   "Farmers market",
		Amount:        core.Money{Cents: -1500},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated ID")
	}

	got, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Description != "Farmers market" {
		t.Errorf("Description = %q", got.Description)
	}
}

func TestLineItemServiceCreateInvalid(t *testing.T) {
	svc := NewLineItemService(newTestRepo(t))

	_, err := svc.Create(context.Background(), core.LineItem{
		Date:          1700000000,
		PaymentMethod: "cash",
		Description:   "no amount",
	})
	if err == nil {
		t.Fatal("expected validation error for zero amount")
	}
}

func TestLineItemServiceIngestDedupes(t *testing.T) {
	svc := NewLineItemService(newTestRepo(t))
	ctx := context.Background()

	txns := []integrations.Transaction{
		{ProviderRef: "txn_1", LineItem: testLineItem(core.NewLineItemID(), -100)},
		{ProviderRef: "txn_2", LineItem: testLineItem(core.NewLineItemID(), -200)},
	}

	inserted, err := svc.Ingest(ctx, core.ProviderStripe, txns)
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("first ingest inserted %d, want 2", inserted)
	}

	// Same provider refs again, fresh line item IDs: nothing new.
	again := []integrations.Transaction{
		{ProviderRef: "txn_1", LineItem: testLineItem(core.NewLineItemID(), -100)},
		{ProviderRef: "txn_2", LineItem: testLineItem(core.NewLineItemID(), -200)},
		{ProviderRef: "txn_3", LineItem: testLineItem(core.NewLineItemID(), -300)},
	}
	inserted, err = svc.Ingest(ctx, core.ProviderStripe, again)
	if err != nil {
		t.Fatalf("second ingest: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("second ingest inserted %d, want 1", inserted)
	}

	items, err := svc.List(ctx, storage.LineItemFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d line items, want 3", len(items))
	}
}

func TestLineItemServiceIngestSkipsInvalid(t *testing.T) {
	svc := NewLineItemService(newTestRepo(t))

	txns := []integrations.Transaction{
		{ProviderRef: "ok", LineItem: testLineItem(core.NewLineItemID(), -100)},
		{ProviderRef: "bad", LineItem: core.LineItem{ID: core.NewLineItemID(), Date: 1700000000}},
	}

	inserted, err := svc.Ingest(context.Background(), core.ProviderVenmo, txns)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if inserted != 1 {
		t.Fatalf("inserted %d, want 1 (invalid skipped)", inserted)
	}
}
