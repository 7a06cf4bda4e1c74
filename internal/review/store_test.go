package review

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeFetcher struct {
	items []LineItem
	err   error
	calls int
	// block makes the fetch wait for context cancellation
	block bool
}

func (f *fakeFetcher) FetchLineItemsToReview(ctx context.Context) ([]LineItem, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func TestStoreSeedPopulates(t *testing.T) {
	fetcher := &fakeFetcher{items: []LineItem{item("1", false), item("2", false)}}
	store := NewStore(fetcher, nil)
	defer store.Close()

	store.Seed(context.Background())

	state := store.State()
	if len(state) != 2 {
		t.Fatalf("expected 2 items, got %d", len(state))
	}
	for _, li := range state {
		if li.IsSelected {
			t.Fatalf("seeded item %q must not be selected", li.ID)
		}
	}
}

func TestStoreSeedFetchesOnce(t *testing.T) {
	fetcher := &fakeFetcher{items: []LineItem{item("1", false)}}
	store := NewStore(fetcher, nil)
	defer store.Close()

	store.Seed(context.Background())
	store.Seed(context.Background())

	if fetcher.calls != 1 {
		t.Fatalf("expected exactly one fetch, got %d", fetcher.calls)
	}
}

func TestStoreSeedFailureLeavesCollectionEmpty(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("connection refused")}
	store := NewStore(fetcher, nil)
	defer store.Close()

	store.Seed(context.Background())

	if state := store.State(); len(state) != 0 {
		t.Fatalf("expected empty collection after fetch failure, got %v", state)
	}
	if fetcher.calls != 1 {
		t.Fatalf("failed seed must not retry, got %d calls", fetcher.calls)
	}
}

func TestStoreCloseCancelsInFlightSeed(t *testing.T) {
	fetcher := &fakeFetcher{block: true}
	store := NewStore(fetcher, nil)

	done := make(chan struct{})
	go func() {
		store.Seed(context.Background())
		close(done)
	}()

	// Give the seed goroutine a moment to start the fetch.
	time.Sleep(10 * time.Millisecond)
	store.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("seed did not return after Close")
	}
	if state := store.State(); len(state) != 0 {
		t.Fatalf("cancelled seed must not populate, got %v", state)
	}
}

func TestStoreDispatchAndSelected(t *testing.T) {
	store := NewStore(nil, nil)
	defer store.Close()

	store.Dispatch(PopulateLineItems{Items: []LineItem{item("1", false), item("2", false), item("3", false)}})
	store.Dispatch(ToggleLineItemSelect{ID: "1"})
	store.Dispatch(ToggleLineItemSelect{ID: "3"})

	selected := store.Selected()
	want := []string{"1", "3"}
	if len(selected) != len(want) || selected[0] != want[0] || selected[1] != want[1] {
		t.Fatalf("expected %v selected, got %v", want, selected)
	}

	store.Dispatch(RemoveLineItems{IDs: selected})
	if state := store.State(); len(state) != 1 || state[0].ID != "2" {
		t.Fatalf("expected only item 2 to survive, got %v", state)
	}
}

func TestStoreStateReturnsCopy(t *testing.T) {
	store := NewStore(nil, nil)
	defer store.Close()

	store.Dispatch(PopulateLineItems{Items: []LineItem{item("1", false)}})

	state := store.State()
	state[0].IsSelected = true

	if store.State()[0].IsSelected {
		t.Fatalf("mutating a State snapshot must not affect the store")
	}
}

func TestStoreSubscribe(t *testing.T) {
	store := NewStore(nil, nil)
	defer store.Close()

	var notified [][]LineItem
	cancel := store.Subscribe(func(state []LineItem) {
		notified = append(notified, state)
	})

	store.Dispatch(PopulateLineItems{Items: []LineItem{item("1", false)}})
	store.Dispatch(ToggleLineItemSelect{ID: "1"})

	if len(notified) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notified))
	}
	if !notified[1][0].IsSelected {
		t.Fatalf("second notification must carry the toggled state")
	}

	cancel()
	store.Dispatch(RemoveLineItems{IDs: []string{"1"}})
	if len(notified) != 2 {
		t.Fatalf("cancelled subscriber must not be notified")
	}
}
