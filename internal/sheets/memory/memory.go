// Package memory is an in-process export backend used in tests and as the
// default when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"budgetrip/internal/core"
)

type Store struct {
	mu     sync.Mutex
	events []core.Event
}

func New() *Store {
	return &Store{}
}

// Append stores the event and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Event) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return fmt.Sprintf("mem:%d", len(s.events)), nil
}

// Delete removes the event with the given ID. Deleting an unknown ID is
// a no-op, matching the sheets adapter.
func (s *Store) Delete(_ context.Context, eventID string) error {
	if eventID == "" {
		return core.ErrEmptyID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.events {
		if e.ID == eventID {
			s.events = append(s.events[:i], s.events[i+1:]...)
			return nil
		}
	}
	return nil
}

// Events returns a snapshot of everything exported so far.
func (s *Store) Events() []core.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Event(nil), s.events...)
}
