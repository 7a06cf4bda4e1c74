package review

import (
	"context"
	"sync"

	"budgetrip/internal/log"
)

// LineItemFetcher retrieves the line items pending review from the API.
type LineItemFetcher interface {
	FetchLineItemsToReview(ctx context.Context) ([]LineItem, error)
}

// Store is the single source of truth for the review working set.
// All mutation goes through Dispatch; dispatches are serialized and
// run to completion, so State is always consistent. The store starts
// empty and is seeded once via Seed.
type Store struct {
	fetcher LineItemFetcher
	logger  *log.Logger

	mu      sync.Mutex
	state   []LineItem
	subs    map[int]func([]LineItem)
	nextSub int

	seedOnce sync.Once

	// lifetime is cancelled by Close; an in-flight seed fetch is
	// aborted with it instead of being silently discarded.
	lifetime context.Context
	cancel   context.CancelFunc
}

// NewStore creates an empty store. The fetcher may be nil when the
// store is driven purely by dispatched actions (as in tests).
func NewStore(fetcher LineItemFetcher, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent("review")
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Store{
		fetcher:  fetcher,
		logger:   logger,
		subs:     make(map[int]func([]LineItem)),
		lifetime: ctx,
		cancel:   cancel,
	}
}

// Seed performs the one-shot fetch of items pending review and
// populates the collection. Only the first call fetches; later calls
// are no-ops. On failure the error is logged and the collection is
// left at its prior value (empty on first load); there is no retry.
func (s *Store) Seed(ctx context.Context) {
	s.seedOnce.Do(func() {
		if s.fetcher == nil {
			return
		}

		fetchCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(s.lifetime, cancel)
		defer stop()

		items, err := s.fetcher.FetchLineItemsToReview(fetchCtx)
		if err != nil {
			s.logger.Error("Seed fetch failed", "error", err)
			return
		}
		s.Dispatch(PopulateLineItems{Items: items})
		s.logger.Info("Review store seeded", "line_items", len(items))
	})
}

// Dispatch applies one action to the collection. It never fails for a
// well-typed action and processes each action to completion before the
// next begins.
func (s *Store) Dispatch(action Action) {
	s.mu.Lock()
	s.state = Reduce(s.state, action)
	snapshot := copyState(s.state)
	subs := make([]func([]LineItem), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}

// State returns a copy of the current collection.
func (s *Store) State() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyState(s.state)
}

// Subscribe registers fn to be called with a snapshot of the
// collection after every dispatch. The returned function cancels the
// subscription.
func (s *Store) Subscribe(fn func([]LineItem)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Selected returns the IDs of the currently selected line items, in
// collection order.
func (s *Store) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for _, li := range s.state {
		if li.IsSelected {
			ids = append(ids, li.ID)
		}
	}
	return ids
}

// Close tears the store down, cancelling an in-flight seed fetch.
func (s *Store) Close() {
	s.cancel()
}

func copyState(state []LineItem) []LineItem {
	out := make([]LineItem, len(state))
	copy(out, state)
	return out
}
