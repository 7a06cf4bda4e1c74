package stripe

import (
	"strings"
	"testing"

	"github.com/stripe/stripe-go/v82"

	"budgetrip/internal/core"
)

func TestTransactionFromBalance(t *testing.T) {
	bt := &stripe.BalanceTransaction{
		ID:          "txn_1abc",
		Amount:      -1250,
		Created:     1700000000,
		Description: "Coffee subscription",
		Type:        stripe.BalanceTransactionTypeCharge,
	}

	txn := transactionFromBalance(bt)

	if txn.ProviderRef != "txn_1abc" {
		t.Errorf("ProviderRef = %q, want txn_1abc", txn.ProviderRef)
	}
	if txn.LineItem.Amount.Cents != -1250 {
		t.Errorf("Amount.Cents = %d, want -1250", txn.LineItem.Amount.Cents)
	}
	if txn.LineItem.Date != 1700000000 {
		t.Errorf("Date = %d, want 1700000000", txn.LineItem.Date)
	}
	if txn.LineItem.Description != "Coffee subscription" {
		t.Errorf("Description = %q", txn.LineItem.Description)
	}
	if txn.LineItem.PaymentMethod != string(core.ProviderStripe) {
		t.Errorf("PaymentMethod = %q, want stripe", txn.LineItem.PaymentMethod)
	}
	if !strings.HasPrefix(txn.LineItem.ID, "line_item_") {
		t.Errorf("ID = %q, want line_item_ prefix", txn.LineItem.ID)
	}
}

func TestTransactionFromBalanceEmptyDescription(t *testing.T) {
	bt := &stripe.BalanceTransaction{
		ID:      "txn_2def",
		Amount:  500,
		Created: 1700000100,
		Type:    stripe.BalanceTransactionTypePayout,
	}

	txn := transactionFromBalance(bt)

	if txn.LineItem.Description != string(stripe.BalanceTransactionTypePayout) {
		t.Errorf("Description = %q, want transaction type fallback", txn.LineItem.Description)
	}
}

func TestClientProvider(t *testing.T) {
	c := New("sk_test_123", nil)
	if c.Provider() != core.ProviderStripe {
		t.Errorf("Provider() = %q, want stripe", c.Provider())
	}
}
