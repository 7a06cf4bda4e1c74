// Package google exports reviewed events to a Google Sheets spreadsheet.
// Rows are laid out as Date, Name, Category, Amount, Event ID; the ID
// column is what lets a later delete find its row.
package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	googleauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"budgetrip/internal/core"
	ports "budgetrip/internal/sheets"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

// Ensure interface conformance
var (
	_ ports.EventWriter  = (*Client)(nil)
	_ ports.EventDeleter = (*Client)(nil)
)

// Config carries the OAuth client and token material. Either the JSON
// blob or the file path may be set for each; the blob wins.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenJSON  string
	OAuthTokenFile  string
}

// New creates a Sheets client authenticated with a stored OAuth token.
// Tokens are minted once with the oauth-init command and refreshed
// automatically by the token source.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	sheetName := strings.TrimSpace(cfg.SheetName)
	if sheetName == "" {
		sheetName = "Events"
	}

	clientJSON, err := loadJSON(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("load oauth client: %w", err)
	}
	tokenJSON, err := loadJSON(cfg.OAuthTokenJSON, cfg.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("load oauth token: %w", err)
	}

	oauthCfg, err := googleauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithHTTPClient(oauthCfg.Client(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func loadJSON(inline, file string) ([]byte, error) {
	switch {
	case strings.TrimSpace(inline) != "":
		return []byte(inline), nil
	case strings.TrimSpace(file) != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		return b, nil
	default:
		return nil, errors.New("no JSON or file path configured")
	}
}

// Append writes the event to the next empty row and returns its range.
func (c *Client) Append(ctx context.Context, e core.Event) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Find the next empty row by getting the sheet dimensions first
	rng := fmt.Sprintf("%s!A:A", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", c.sheetName, err)
	}
	nextRow := len(resp.Values) + 1

	date := time.Unix(e.Date, 0).UTC().Format("2006-01-02")
	dollars := float64(e.Amount.Cents) / 100.0

	dataRange := fmt.Sprintf("%s!A%d:E%d", c.sheetName, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{date, e.Name, e.Category, dollars, e.ID}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", dataRange, err)
	}

	return dataRange, nil
}

// Delete locates the event's row by its ID column and clears it. Clearing
// rather than removing the row keeps later row references stable.
func (c *Client) Delete(ctx context.Context, eventID string) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if strings.TrimSpace(eventID) == "" {
		return core.ErrEmptyID
	}

	rng := fmt.Sprintf("%s!E:E", c.sheetName)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	row := -1
	for i, cells := range resp.Values {
		if len(cells) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(cells[0])) == eventID {
			row = i + 1
			break
		}
	}
	if row == -1 {
		// Already gone; delete is idempotent.
		return nil
	}

	clearRange := fmt.Sprintf("%s!A%d:E%d", c.sheetName, row, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("clear %s: %w", clearRange, err)
	}

	return nil
}
