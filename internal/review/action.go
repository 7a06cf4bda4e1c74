// Package review holds the in-memory working set of line items a user
// is currently reviewing. The collection is seeded once from the API
// and mutated only through dispatched actions; consumers never touch
// the slice directly.
package review

import "budgetrip/internal/core"

// LineItem is the review view of a core line item. IsSelected is
// transient UI state: it defaults to false for freshly fetched items
// and is never sent back to the API.
type LineItem struct {
	core.LineItem
	IsSelected bool
}

// Action is the closed set of transitions the store accepts. The
// unexported marker method seals the set: every action the reducer can
// see is declared in this package, so the switch in Reduce is
// exhaustive by construction.
type Action interface {
	isAction()
}

// PopulateLineItems replaces the whole collection with Items,
// preserving their order. Dispatched exactly once, after the seed
// fetch resolves.
type PopulateLineItems struct {
	Items []LineItem
}

// ToggleLineItemSelect flips IsSelected on the line item whose ID
// matches. An unknown ID is a no-op, not an error.
type ToggleLineItemSelect struct {
	ID string
}

// RemoveLineItems drops the named line items from the working set.
// This is purely local: the remote records are untouched, review
// submission is a separate API call.
type RemoveLineItems struct {
	IDs []string
}

func (PopulateLineItems) isAction()    {}
func (ToggleLineItemSelect) isAction() {}
func (RemoveLineItems) isAction()      {}
