// Package apiclient is a typed HTTP client of the budgetrip API, used
// by the review store to seed its working set and to submit reviews.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"budgetrip/internal/core"
	"budgetrip/internal/log"
	"budgetrip/internal/review"
)

// Client talks to the budgetrip API over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// Compile-time check: the client is the review store's fetch boundary.
var _ review.LineItemFetcher = (*Client)(nil)

// New creates a client for the API at baseURL.
func New(baseURL string, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentClient)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// lineItemPayload is the wire shape of a line item. Amount is a signed
// decimal; json.Number keeps it exact until it is converted to cents.
type lineItemPayload struct {
	ID               string      `json:"id"`
	Date             int64       `json:"date"`
	PaymentMethod    string      `json:"payment_method"`
	Description      string      `json:"description"`
	ResponsibleParty string      `json:"responsible_party"`
	Amount           json.Number `json:"amount"`
}

type lineItemsResponse struct {
	Data []lineItemPayload `json:"data"`
}

// FetchLineItemsToReview retrieves the line items pending review.
// It issues a single GET with the fixed review-only flag and no other
// filters; any non-2xx status or transport failure is returned as an
// error for the caller to log.
func (c *Client) FetchLineItemsToReview(ctx context.Context) ([]review.LineItem, error) {
	url := c.baseURL + "/api/line_items?only_line_items_to_review=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch line items: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("fetch line items: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed lineItemsResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode line items: %w", err)
	}

	items := make([]review.LineItem, 0, len(parsed.Data))
	for _, p := range parsed.Data {
		amount, err := core.ParseAmount(p.Amount.String())
		if err != nil {
			// Malformed amounts are skipped rather than failing the
			// whole fetch; the record is useless without one.
			c.logger.Warn("Skipping line item with malformed amount",
				log.FieldLineItemID, p.ID, "amount", p.Amount.String())
			continue
		}
		items = append(items, review.LineItem{
			LineItem: core.LineItem{
				ID:               p.ID,
				Date:             p.Date,
				PaymentMethod:    p.PaymentMethod,
				Description:      p.Description,
				ResponsibleParty: p.ResponsibleParty,
				Amount:           amount,
			},
		})
	}

	return items, nil
}

type submitReviewRequest struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	LineItemIDs []string `json:"line_item_ids"`
}

type submitReviewResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// SubmitReview creates an event from the given line items, marking
// them reviewed on the server. This is the explicit remote counterpart
// of the local RemoveLineItems action, never triggered implicitly.
func (c *Client) SubmitReview(ctx context.Context, name, category string, lineItemIDs []string) (string, error) {
	payload, err := json.Marshal(submitReviewRequest{
		Name:        name,
		Category:    category,
		LineItemIDs: lineItemIDs,
	})
	if err != nil {
		return "", fmt.Errorf("marshal review: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/events", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit review: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("submit review: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed submitReviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode review response: %w", err)
	}

	c.logger.InfoContext(ctx, "Review submitted",
		log.FieldEventID, parsed.Data.ID, "line_items", len(lineItemIDs))
	return parsed.Data.ID, nil
}
