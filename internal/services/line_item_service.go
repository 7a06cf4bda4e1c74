package services

import (
	"context"
	"fmt"
	"log/slog"

	"budgetrip/internal/core"
	"budgetrip/internal/integrations"
	"budgetrip/internal/storage"
)

// LineItemService orchestrates line item operations over SQLite. Manual
// entries go through Create; provider pulls go through Ingest, which
// deduplicates on the provider's own transaction reference.
type LineItemService struct {
	storage *storage.SQLiteRepository
}

func NewLineItemService(storage *storage.SQLiteRepository) *LineItemService {
	return &LineItemService{storage: storage}
}

// Create validates and saves a manually entered line item.
func (s *LineItemService) Create(ctx context.Context, li core.LineItem) (string, error) {
	if li.ID == "" {
		li.ID = core.NewLineItemID()
	}
	if err := li.Validate(); err != nil {
		return "", fmt.Errorf("validate line item: %w", err)
	}

	// Manual entries have no provider reference, so every save inserts.
	if _, err := s.storage.CreateLineItem(ctx, li, core.ProviderCash, ""); err != nil {
		return "", fmt.Errorf("save line item: %w", err)
	}

	return li.ID, nil
}

// Ingest saves provider transactions, skipping ones already seen. Returns
// the number of newly inserted line items.
func (s *LineItemService) Ingest(ctx context.Context, provider core.Provider, txns []integrations.Transaction) (int, error) {
	inserted := 0
	for _, txn := range txns {
		if err := txn.LineItem.Validate(); err != nil {
			slog.WarnContext(ctx, "Skipping invalid provider transaction",
				"provider", provider, "provider_ref", txn.ProviderRef, "error", err)
			continue
		}

		ok, err := s.storage.CreateLineItem(ctx, txn.LineItem, provider, txn.ProviderRef)
		if err != nil {
			return inserted, fmt.Errorf("save line item %s/%s: %w", provider, txn.ProviderRef, err)
		}
		if ok {
			inserted++
		}
	}

	return inserted, nil
}

// Get returns a single line item by ID.
func (s *LineItemService) Get(ctx context.Context, id string) (core.LineItem, error) {
	return s.storage.GetLineItem(ctx, id)
}

// List returns line items matching the filter, ordered by date.
func (s *LineItemService) List(ctx context.Context, filter storage.LineItemFilter) ([]core.LineItem, error) {
	return s.storage.ListLineItems(ctx, filter)
}

// Accounts returns the sync state of every connected account.
func (s *LineItemService) Accounts(ctx context.Context) ([]core.ConnectedAccount, error) {
	return s.storage.ListAccounts(ctx)
}

// Delete removes a line item that is not attached to any event.
func (s *LineItemService) Delete(ctx context.Context, id string) error {
	if err := s.storage.DeleteLineItem(ctx, id); err != nil {
		return fmt.Errorf("delete line item: %w", err)
	}
	return nil
}
