package backend

import (
	"context"
	"fmt"
	"log/slog"

	"budgetrip/internal/config"
	"budgetrip/internal/sheets/google"
	"budgetrip/internal/sheets/memory"
)

// New constructs the export backend named by the config.
func New(ctx context.Context, cfg Config) (Backend, error) {
	if !cfg.Type.IsValid() {
		return nil, fmt.Errorf("invalid export backend: %q", cfg.Type)
	}

	switch cfg.Type {
	case MemoryBackend:
		slog.Info("Using in-memory export backend")
		return memory.New(), nil

	case SheetsBackend:
		client, err := google.New(ctx, google.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			OAuthClientFile: cfg.GoogleOAuthClientFile,
			OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
			OAuthClientJSON: cfg.GoogleOAuthClientJSON,
			OAuthTokenJSON:  cfg.GoogleOAuthTokenJSON,
		})
		if err != nil {
			return nil, fmt.Errorf("init sheets backend: %w", err)
		}
		slog.Info("Using Google Sheets export backend",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
		return client, nil

	default:
		return nil, fmt.Errorf("unsupported export backend: %q", cfg.Type)
	}
}

// ConfigFromApp maps application configuration onto a backend config.
func ConfigFromApp(cfg *config.Config) Config {
	return Config{
		Type:                  Type(cfg.ExportBackend),
		GoogleSpreadsheetID:   cfg.GoogleSpreadsheetID,
		GoogleSheetName:       cfg.GoogleSheetName,
		GoogleOAuthClientFile: cfg.GoogleOAuthClientFile,
		GoogleOAuthTokenFile:  cfg.GoogleOAuthTokenFile,
		GoogleOAuthClientJSON: cfg.GoogleOAuthClientJSON,
		GoogleOAuthTokenJSON:  cfg.GoogleOAuthTokenJSON,
	}
}
