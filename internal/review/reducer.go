package review

// Reduce computes the next collection from the current one and a
// single action. It is pure: the input slice is never mutated, no I/O
// happens here, and the same (state, action) pair always produces the
// same result.
func Reduce(state []LineItem, action Action) []LineItem {
	switch a := action.(type) {
	case PopulateLineItems:
		next := make([]LineItem, len(a.Items))
		copy(next, a.Items)
		return next

	case ToggleLineItemSelect:
		next := make([]LineItem, len(state))
		copy(next, state)
		for i := range next {
			if next[i].ID == a.ID {
				next[i].IsSelected = !next[i].IsSelected
				break // IDs are unique within the collection
			}
		}
		return next

	case RemoveLineItems:
		drop := make(map[string]struct{}, len(a.IDs))
		for _, id := range a.IDs {
			drop[id] = struct{}{}
		}
		next := make([]LineItem, 0, len(state))
		for _, li := range state {
			if _, ok := drop[li.ID]; !ok {
				next = append(next, li)
			}
		}
		return next
	}

	// Unreachable: Action is sealed to the three cases above.
	return state
}
