// Package splitwise pulls shared expenses from the Splitwise REST API
// using an OAuth bearer token.
package splitwise

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"budgetrip/internal/core"
	"budgetrip/internal/integrations"
	"budgetrip/internal/log"
)

const DefaultBaseURL = "https://secure.splitwise.com"

// Client fetches the authenticated user's share of Splitwise expenses.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *log.Logger
}

func New(baseURL, apiKey string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent("splitwise")
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

var _ integrations.TransactionSource = (*Client)(nil)

func (c *Client) Provider() core.Provider {
	return core.ProviderSplitwise
}

// expensePayload mirrors the wire shape of a Splitwise expense. Splitwise
// serializes money as decimal strings.
type expensePayload struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	DeletedAt   *string   `json:"deleted_at"`
	Users       []struct {
		User struct {
			FirstName string `json:"first_name"`
			LastName  string `json:"last_name"`
		} `json:"user"`
		OwedShare string `json:"owed_share"`
	} `json:"users"`
}

// FetchTransactions returns the user's owed share of expenses dated after
// since, one line item per expense.
func (c *Client) FetchTransactions(ctx context.Context, since time.Time) ([]integrations.Transaction, error) {
	query := url.Values{"limit": {"0"}}
	if !since.IsZero() {
		query.Set("dated_after", since.UTC().Format(time.RFC3339))
	}
	endpoint := fmt.Sprintf("%s/api/v3.0/get_expenses?%s", c.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch expenses: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("splitwise returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Expenses []expensePayload `json:"expenses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode expenses: %w", err)
	}

	var txns []integrations.Transaction
	for _, e := range parsed.Expenses {
		if e.DeletedAt != nil {
			continue
		}
		txn, err := c.transactionFromExpense(e)
		if err != nil {
			c.logger.WarnContext(ctx, "Skipping unparseable Splitwise expense",
				"expense_id", e.ID, log.FieldError, err)
			continue
		}
		txns = append(txns, txn)
	}

	c.logger.DebugContext(ctx, "Fetched Splitwise expenses",
		log.FieldProvider, core.ProviderSplitwise, "count", len(txns))

	return txns, nil
}

func (c *Client) transactionFromExpense(e expensePayload) (integrations.Transaction, error) {
	if len(e.Users) == 0 {
		return integrations.Transaction{}, fmt.Errorf("expense %d has no users", e.ID)
	}

	// The first user entry is the authenticated user's share.
	share := e.Users[0]
	amount, err := core.ParseAmount(share.OwedShare)
	if err != nil {
		return integrations.Transaction{}, fmt.Errorf("parse owed share %q: %w", share.OwedShare, err)
	}
	// An owed share is money the user spent.
	if amount.Cents > 0 {
		amount.Cents = -amount.Cents
	}

	party := strings.TrimSpace(share.User.FirstName + " " + share.User.LastName)

	return integrations.Transaction{
		ProviderRef: fmt.Sprintf("%d", e.ID),
		LineItem: core.LineItem{
			ID:               core.NewLineItemID(),
			Date:             e.Date.Unix(),
			PaymentMethod:    string(core.ProviderSplitwise),
			Description:      e.Description,
			ResponsibleParty: party,
			Amount:           amount,
		},
	}, nil
}
