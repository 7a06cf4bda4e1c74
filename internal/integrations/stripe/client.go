// Package stripe pulls balance transactions from the Stripe API and maps
// them into line items.
package stripe

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"

	"budgetrip/internal/core"
	"budgetrip/internal/integrations"
	"budgetrip/internal/log"
)

// Client lists Stripe balance transactions for a connected account.
type Client struct {
	api    *stripe.Client
	logger *log.Logger
}

func New(apiKey string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent("stripe")
	}
	return &Client{
		api:    stripe.NewClient(apiKey, nil),
		logger: logger,
	}
}

var _ integrations.TransactionSource = (*Client)(nil)

func (c *Client) Provider() core.Provider {
	return core.ProviderStripe
}

// FetchTransactions lists balance transactions created after since.
// Stripe amounts are already signed cents, so they map straight onto Money.
func (c *Client) FetchTransactions(ctx context.Context, since time.Time) ([]integrations.Transaction, error) {
	params := &stripe.BalanceTransactionListParams{}
	if !since.IsZero() {
		params.CreatedRange = &stripe.RangeQueryParams{
			GreaterThan: since.Unix(),
		}
	}

	var txns []integrations.Transaction
	for bt, err := range c.api.V1BalanceTransactions.List(ctx, params) {
		if err != nil {
			return nil, fmt.Errorf("list balance transactions: %w", err)
		}
		txns = append(txns, transactionFromBalance(bt))
	}

	c.logger.DebugContext(ctx, "Fetched Stripe balance transactions",
		log.FieldProvider, core.ProviderStripe, "count", len(txns))

	return txns, nil
}

func transactionFromBalance(bt *stripe.BalanceTransaction) integrations.Transaction {
	description := bt.Description
	if description == "" {
		description = string(bt.Type)
	}
	return integrations.Transaction{
		ProviderRef: bt.ID,
		LineItem: core.LineItem{
			ID:            core.NewLineItemID(),
			Date:          bt.Created,
			PaymentMethod: string(core.ProviderStripe),
			Description:   description,
			Amount:        core.Money{Cents: bt.Amount},
		},
	}
}
