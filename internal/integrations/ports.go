// Package integrations defines the port for pulling transactions from
// connected payment providers, with one adapter package per provider.
package integrations

import (
	"context"
	"time"

	"budgetrip/internal/core"
)

// Transaction is a provider transaction mapped into a line item, carrying
// the provider's own reference so repeated pulls deduplicate.
type Transaction struct {
	ProviderRef string
	LineItem    core.LineItem
}

// TransactionSource pulls new transactions from a payment provider.
type TransactionSource interface {
	// Provider identifies which connected account this source serves.
	Provider() core.Provider

	// FetchTransactions returns transactions completed after since.
	FetchTransactions(ctx context.Context, since time.Time) ([]Transaction, error)
}
