package venmo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"budgetrip/internal/core"
)

func TestFetchTransactions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("Authorization = %q, want Bearer token-123", got)
		}
		if r.URL.Path != "/v1/payments" {
			t.Errorf("path = %q, want /v1/payments", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "settled" {
			t.Errorf("status = %q, want settled", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"id": "3919", "date_completed": "2025-07-01T12:00:00Z", "note": "Dinner split", "amount": 24.50, "action": "pay", "actor": {"display_name": "Sam"}},
			{"id": "3920", "date_completed": "2025-07-02T09:30:00Z", "note": "Rent share", "amount": 800, "action": "charge", "actor": {"display_name": "Alex"}},
			{"id": "3918", "date_completed": "2025-06-01T12:00:00Z", "note": "Old payment", "amount": 5, "action": "pay", "actor": {"display_name": "Sam"}}
		]}`))
	}))
	defer server.Close()

	client := New(server.URL, "token-123", nil)
	since := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	txns, err := client.FetchTransactions(context.Background(), since)
	if err != nil {
		t.Fatalf("FetchTransactions failed: %v", err)
	}

	if len(txns) != 2 {
		t.Fatalf("got %d transactions, want 2 (old payment filtered)", len(txns))
	}

	if txns[0].ProviderRef != "3919" {
		t.Errorf("ProviderRef = %q, want 3919", txns[0].ProviderRef)
	}
	if txns[0].LineItem.Amount.Cents != -2450 {
		t.Errorf("pay amount = %d cents, want -2450", txns[0].LineItem.Amount.Cents)
	}
	if txns[0].LineItem.ResponsibleParty != "Sam" {
		t.Errorf("ResponsibleParty = %q, want Sam", txns[0].LineItem.ResponsibleParty)
	}
	if txns[1].LineItem.Amount.Cents != 80000 {
		t.Errorf("charge amount = %d cents, want 80000", txns[1].LineItem.Amount.Cents)
	}
	if txns[1].LineItem.PaymentMethod != string(core.ProviderVenmo) {
		t.Errorf("PaymentMethod = %q, want venmo", txns[1].LineItem.PaymentMethod)
	}
}

func TestFetchTransactionsSkipsBadAmount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [
			{"id": "1", "date_completed": "2025-07-01T12:00:00Z", "note": "ok", "amount": 10, "action": "pay"},
			{"id": "2", "date_completed": "2025-07-01T13:00:00Z", "note": "missing amount", "action": "pay"}
		]}`))
	}))
	defer server.Close()

	client := New(server.URL, "t", nil)

	txns, err := client.FetchTransactions(context.Background(), time.Time{})
	if err != nil {
		t.Fatalf("FetchTransactions failed: %v", err)
	}
	if len(txns) != 1 {
		t.Fatalf("got %d transactions, want 1 (bad amount skipped)", len(txns))
	}
	if txns[0].ProviderRef != "1" {
		t.Errorf("kept ProviderRef = %q, want 1", txns[0].ProviderRef)
	}
}

func TestFetchTransactionsServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := New(server.URL, "bad-token", nil)

	if _, err := client.FetchTransactions(context.Background(), time.Time{}); err == nil {
		t.Fatal("expected error for 401 response")
	}
}
