package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchLineItemsToReview(t *testing.T) {
	var gotPath, gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":[
			{"id":"line_item_1","date":1700000000,"payment_method":"Visa","description":"Coffee","responsible_party":"Alice","amount":-4.5},
			{"id":"line_item_2","date":1700000100,"payment_method":"Venmo","description":"Rent split","responsible_party":"Bob","amount":850}
		]}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	items, err := client.FetchLineItemsToReview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/api/line_items" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotQuery != "only_line_items_to_review=true" {
		t.Fatalf("unexpected query %q", gotQuery)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "line_item_1" || items[0].Amount.Cents != -450 {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if items[1].Amount.Cents != 85000 {
		t.Fatalf("expected 85000 cents, got %d", items[1].Amount.Cents)
	}
	for _, li := range items {
		if li.IsSelected {
			t.Fatalf("fetched item %q must not be selected", li.ID)
		}
	}
}

func TestFetchLineItemsToReviewSkipsMalformedAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[
			{"id":"line_item_1","date":1700000000,"payment_method":"Visa","description":"Coffee","responsible_party":"Alice","amount":-4.5},
			{"id":"line_item_bad","date":1700000100,"payment_method":"Visa","description":"Broken","responsible_party":"Alice"}
		]}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	items, err := client.FetchLineItemsToReview(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "line_item_1" {
		t.Fatalf("expected only the well-formed item, got %+v", items)
	}
}

func TestFetchLineItemsToReviewNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, nil)
	if _, err := client.FetchLineItemsToReview(context.Background()); err == nil {
		t.Fatalf("expected error for 500 response")
	}
}

func TestSubmitReview(t *testing.T) {
	var gotBody submitReviewRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/events" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"event_42"}}`))
	}))
	defer server.Close()

	client := New(server.URL, nil)
	id, err := client.SubmitReview(context.Background(), "Coffee run", "Dining", []string{"line_item_1", "line_item_2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "event_42" {
		t.Fatalf("expected event_42, got %q", id)
	}
	if gotBody.Name != "Coffee run" || gotBody.Category != "Dining" || len(gotBody.LineItemIDs) != 2 {
		t.Fatalf("unexpected request body: %+v", gotBody)
	}
}
