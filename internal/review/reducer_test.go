package review

import (
	"reflect"
	"testing"

	"budgetrip/internal/core"
)

func item(id string, selected bool) LineItem {
	return LineItem{
		LineItem: core.LineItem{
			ID:               id,
			Date:             1700000000,
			PaymentMethod:    "Visa",
			Description:      "desc " + id,
			ResponsibleParty: "Alice",
			Amount:           core.Money{Cents: -450},
		},
		IsSelected: selected,
	}
}

func ids(state []LineItem) []string {
	out := make([]string, 0, len(state))
	for _, li := range state {
		out = append(out, li.ID)
	}
	return out
}

func TestPopulateReplacesCollection(t *testing.T) {
	state := []LineItem{item("old", true)}
	items := []LineItem{item("1", false), item("2", false)}

	next := Reduce(state, PopulateLineItems{Items: items})

	if !reflect.DeepEqual(ids(next), []string{"1", "2"}) {
		t.Fatalf("expected [1 2], got %v", ids(next))
	}
}

func TestPopulateIsIdempotent(t *testing.T) {
	items := []LineItem{item("1", false), item("2", false)}

	once := Reduce(nil, PopulateLineItems{Items: items})
	twice := Reduce(once, PopulateLineItems{Items: items})

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("populate twice diverged: %v vs %v", once, twice)
	}
}

func TestToggleFlipsOnlyTheMatch(t *testing.T) {
	state := []LineItem{item("1", false), item("2", true)}

	next := Reduce(state, ToggleLineItemSelect{ID: "1"})

	if !next[0].IsSelected {
		t.Fatalf("expected item 1 selected")
	}
	if !next[1].IsSelected {
		t.Fatalf("item 2 must be unchanged")
	}
	if state[0].IsSelected {
		t.Fatalf("input state was mutated")
	}
}

func TestToggleIsInvolution(t *testing.T) {
	state := []LineItem{item("1", false), item("2", true)}
	for _, id := range []string{"1", "2"} {
		next := Reduce(Reduce(state, ToggleLineItemSelect{ID: id}), ToggleLineItemSelect{ID: id})
		if !reflect.DeepEqual(next, state) {
			t.Fatalf("double toggle of %q changed state: %v vs %v", id, next, state)
		}
	}
}

func TestToggleUnknownIDIsNoOp(t *testing.T) {
	state := []LineItem{item("1", false), item("2", true)}

	next := Reduce(state, ToggleLineItemSelect{ID: "nonexistent"})

	if !reflect.DeepEqual(next, state) {
		t.Fatalf("unknown id must leave collection unchanged")
	}
}

func TestRemoveIsSetDifference(t *testing.T) {
	state := []LineItem{item("1", false), item("2", true), item("3", false), item("4", false)}

	cases := []struct {
		remove []string
		want   []string
	}{
		{[]string{"2", "4"}, []string{"1", "3"}},
		{[]string{"1", "2", "3", "4"}, []string{}},
		{[]string{"nonexistent"}, []string{"1", "2", "3", "4"}},
		{nil, []string{"1", "2", "3", "4"}},
	}
	for i, tc := range cases {
		next := Reduce(state, RemoveLineItems{IDs: tc.remove})
		if !reflect.DeepEqual(ids(next), tc.want) {
			t.Fatalf("case %d expected %v, got %v", i, tc.want, ids(next))
		}
	}
}

func TestReviewLifecycle(t *testing.T) {
	// Populate a single fetched item into an empty collection.
	fetched := LineItem{
		LineItem: core.LineItem{
			ID:               "1",
			Date:             1700000000,
			PaymentMethod:    "Visa",
			Description:      "Coffee",
			ResponsibleParty: "Alice",
			Amount:           core.Money{Cents: -450},
		},
	}
	state := Reduce(nil, PopulateLineItems{Items: []LineItem{fetched}})
	if len(state) != 1 {
		t.Fatalf("expected one item, got %d", len(state))
	}
	if state[0].IsSelected {
		t.Fatalf("freshly fetched item must not be selected")
	}

	// Toggling selects it.
	state = Reduce(state, ToggleLineItemSelect{ID: "1"})
	if !state[0].IsSelected {
		t.Fatalf("expected item selected after toggle")
	}

	// Removing empties the collection.
	state = Reduce(state, RemoveLineItems{IDs: []string{"1"}})
	if len(state) != 0 {
		t.Fatalf("expected empty collection, got %v", state)
	}
}
