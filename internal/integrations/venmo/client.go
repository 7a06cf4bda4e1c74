// Package venmo pulls completed payments from the Venmo API. Venmo has no
// supported Go SDK, so this is a plain HTTP client against the v1 endpoints.
package venmo

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

const DefaultBaseURL = "https://api.venmo.com"

// Client fetches completed payments for the authenticated Venmo user.
type Client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
	logger      *log.Logger
}

func New(baseURL, accessToken string, logger *log.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent("venmo")
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
		logger:      logger,
	}
}

var _ integrations.TransactionSource = (*Client)(nil)

func (c *Client) Provider() core.Provider {
	return core.ProviderVenmo
}

// paymentPayload mirrors the wire shape of a Venmo payment. Amounts are
// decoded as json.Number to keep decimal amounts exact.
type paymentPayload struct {
	ID            string      `json:"id"`
	DateCompleted time.Time   `json:"date_completed"`
	Note          string      `json:"note"`
	Amount        json.Number `json:"amount"`
	Action        string      `json:"action"`
	Actor         struct {
		DisplayName string `json:"display_name"`
	} `json:"actor"`
}

// FetchTransactions returns payments completed after since. Payments the
// user made are recorded as charges (negative cents), payments received as
// credits.
func (c *Client) FetchTransactions(ctx context.Context, since time.Time) ([]integrations.Transaction, error) {
	endpoint := fmt.Sprintf("%s/v1/payments?%s", c.baseURL, url.Values{
		"status": {"settled"},
		"limit":  {"100"},
	}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch payments: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("venmo returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed struct {
		Data []paymentPayload `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode payments: %w", err)
	}

	var txns []integrations.Transaction
	for _, p := range parsed.Data {
		if !p.DateCompleted.After(since) {
			continue
		}
		txn, err := c.transactionFromPayment(p)
		if err != nil {
			c.logger.WarnContext(ctx, "Skipping unparseable Venmo payment",
				"payment_id", p.ID, log.FieldError, err)
			continue
		}
		txns = append(txns, txn)
	}

	c.logger.DebugContext(ctx, "Fetched Venmo payments",
		log.FieldProvider, core.ProviderVenmo, "count", len(txns))

	return txns, nil
}

func (c *Client) transactionFromPayment(p paymentPayload) (integrations.Transaction, error) {
	amount, err := core.ParseAmount(p.Amount.String())
	if err != nil {
		return integrations.Transaction{}, fmt.Errorf("parse amount %q: %w", p.Amount, err)
	}
	// The API reports magnitudes; an outgoing payment is a charge.
	if p.Action == "pay" && amount.Cents > 0 {
		amount.Cents = -amount.Cents
	}

	description := p.Note
	if description == "" {
		description = "Venmo payment"
	}

	return integrations.Transaction{
		ProviderRef: p.ID,
		LineItem: core.LineItem{
			ID:               core.NewLineItemID(),
			Date:             p.DateCompleted.Unix(),
			PaymentMethod:    string(core.ProviderVenmo),
			Description:      description,
			ResponsibleParty: p.Actor.DisplayName,
			Amount:           amount,
		},
	}, nil
}
