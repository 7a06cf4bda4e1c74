package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"budgetrip/internal/core"
	"budgetrip/internal/integrations"
	"budgetrip/internal/storage"
)

type fakeSource struct {
	provider core.Provider
	txns     []integrations.Transaction
	err      error
	calls    atomic.Int64
	lastWith atomic.Int64 // since passed to the last fetch, unix seconds
}

func (f *fakeSource) Provider() core.Provider { return f.provider }

func (f *fakeSource) FetchTransactions(ctx context.Context, since time.Time) ([]integrations.Transaction, error) {
	f.calls.Add(1)
	f.lastWith.Store(since.Unix())
	return f.txns, f.err
}

func TestRefreshAllIngestsAndAdvancesCursor(t *testing.T) {
	repo := newTestRepo(t)
	lineItems := NewLineItemService(repo)
	ctx := context.Background()

	source := &fakeSource{
		provider: core.ProviderStripe,
		txns: []integrations.Transaction{
			{ProviderRef: "txn_1", LineItem: testLineItem(core.NewLineItemID(), -100)},
		},
	}

	p := NewRefreshProcessor(repo, lineItems, []integrations.TransactionSource{source}, DefaultRefreshProcessorConfig())

	p.RefreshAll(ctx)

	items, err := lineItems.List(ctx, storage.LineItemFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d line items, want 1", len(items))
	}

	synced, err := repo.AccountLastSynced(ctx, core.ProviderStripe)
	if err != nil {
		t.Fatalf("last synced: %v", err)
	}
	if synced == 0 {
		t.Fatal("cursor did not advance")
	}

	// Second cycle fetches from the stored cursor and dedupes.
	p.RefreshAll(ctx)
	if got := source.lastWith.Load(); got != synced {
		t.Errorf("second fetch since = %d, want cursor %d", got, synced)
	}
	items, _ = lineItems.List(ctx, storage.LineItemFilter{})
	if len(items) != 1 {
		t.Fatalf("got %d line items after rerun, want 1", len(items))
	}
}

func TestRefreshAllFailingSourceDoesNotBlockOthers(t *testing.T) {
	repo := newTestRepo(t)
	lineItems := NewLineItemService(repo)
	ctx := context.Background()

	broken := &fakeSource{provider: core.ProviderVenmo, err: errors.New("api down")}
	healthy := &fakeSource{
		provider: core.ProviderSplitwise,
		txns: []integrations.Transaction{
			{ProviderRef: "exp_1", LineItem: testLineItem(core.NewLineItemID(), -250)},
		},
	}

	p := NewRefreshProcessor(repo, lineItems,
		[]integrations.TransactionSource{broken, healthy}, DefaultRefreshProcessorConfig())

	p.RefreshAll(ctx)

	items, err := lineItems.List(ctx, storage.LineItemFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d line items, want 1 from healthy source", len(items))
	}

	// Failed provider keeps its cursor at zero for retry.
	synced, err := repo.AccountLastSynced(ctx, core.ProviderVenmo)
	if err != nil {
		t.Fatalf("last synced: %v", err)
	}
	if synced != 0 {
		t.Errorf("broken provider cursor = %d, want 0", synced)
	}
}

func TestRefreshOneUnknownProvider(t *testing.T) {
	p := NewRefreshProcessor(newTestRepo(t), nil, nil, DefaultRefreshProcessorConfig())

	err := p.RefreshOne(context.Background(), core.ProviderCash)
	if !errors.Is(err, core.ErrUnknownProvider) {
		t.Fatalf("expected ErrUnknownProvider, got %v", err)
	}
}

func TestRefreshProcessorLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	lineItems := NewLineItemService(repo)
	source := &fakeSource{provider: core.ProviderStripe}

	config := DefaultRefreshProcessorConfig()
	config.Interval = time.Hour

	p := NewRefreshProcessor(repo, lineItems, []integrations.TransactionSource{source}, config)
	ctx := context.Background()

	if p.IsRunning() {
		t.Fatal("should not be running before Start")
	}
	if err := p.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := p.Start(ctx); err == nil {
		t.Fatal("second Start should fail")
	}
	if !p.IsRunning() {
		t.Fatal("should be running after Start")
	}

	stopCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if p.IsRunning() {
		t.Fatal("should not be running after Stop")
	}

	// The startup refresh ran exactly once.
	if got := source.calls.Load(); got != 1 {
		t.Errorf("fetch calls = %d, want 1", got)
	}
}
