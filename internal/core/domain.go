package core

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

const (
	ProviderStripe    Provider = "stripe"
	ProviderVenmo     Provider = "venmo"
	ProviderSplitwise Provider = "splitwise"
	ProviderCash      Provider = "cash"
)

type (
	// Provider identifies a connected payment account source.
	Provider string

	// LineItem is a single financial transaction surfaced for review.
	// Date is a unix timestamp in seconds; Amount is signed cents
	// (negative for charges, positive for credits).
	LineItem struct {
		ID               string
		Date             int64
		PaymentMethod    string
		Description      string
		ResponsibleParty string
		Amount           Money
	}

	// Event is a user-confirmed grouping of reviewed line items.
	Event struct {
		ID          string
		Name        string
		Category    string
		Date        int64
		Amount      Money
		LineItemIDs []string
	}

	// ConnectedAccount tracks the sync cursor of a payment provider.
	ConnectedAccount struct {
		Provider   Provider
		LastSynced int64 // unix seconds of the last successful pull, 0 if never
	}
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyID          = errors.New("empty id")
	ErrEmptyDescription = errors.New("empty description")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyCategory    = errors.New("empty category")
	ErrNoLineItems      = errors.New("event has no line items")
	ErrUnknownProvider  = errors.New("unknown provider")
)

// NewLineItemID returns a fresh prefixed identifier for a line item.
func NewLineItemID() string {
	return "line_item_" + uuid.NewString()
}

// NewEventID returns a fresh prefixed identifier for an event.
func NewEventID() string {
	return "event_" + uuid.NewString()
}

func (p Provider) Validate() error {
	switch p {
	case ProviderStripe, ProviderVenmo, ProviderSplitwise, ProviderCash:
		return nil
	default:
		return ErrUnknownProvider
	}
}

func (li LineItem) Validate() error {
	if strings.TrimSpace(li.ID) == "" {
		return ErrEmptyID
	}
	if li.Date <= 0 {
		return ErrInvalidDate
	}
	if len(strings.TrimSpace(li.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(li.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if strings.TrimSpace(li.PaymentMethod) == "" {
		return errors.New("empty payment method")
	}
	if li.Amount.Cents == 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (e Event) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return ErrEmptyID
	}
	if len(strings.TrimSpace(e.Name)) == 0 {
		return ErrEmptyName
	}
	if len(e.Name) > 200 {
		return errors.New("name too long (max 200 characters)")
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.Date <= 0 {
		return ErrInvalidDate
	}
	if len(e.LineItemIDs) == 0 {
		return ErrNoLineItems
	}
	return nil
}
