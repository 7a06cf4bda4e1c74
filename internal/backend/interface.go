// Package backend selects the export destination for reviewed events.
package backend

import (
	"budgetrip/internal/sheets"
)

// Backend is an export destination: somewhere reviewed events can be
// appended to and withdrawn from.
type Backend interface {
	sheets.EventWriter
	sheets.EventDeleter
}

// Type names a supported export backend.
type Type string

const (
	// MemoryBackend keeps exported events in process memory. Useful for
	// development and tests.
	MemoryBackend Type = "memory"

	// SheetsBackend appends exported events to a Google Sheets
	// spreadsheet.
	SheetsBackend Type = "sheets"
)

// IsValid reports whether the backend type is supported.
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SheetsBackend:
		return true
	default:
		return false
	}
}

// Config holds everything needed to construct a backend.
type Config struct {
	Type Type

	// Google Sheets specific.
	GoogleSpreadsheetID   string
	GoogleSheetName       string
	GoogleOAuthClientFile string
	GoogleOAuthTokenFile  string
	GoogleOAuthClientJSON string
	GoogleOAuthTokenJSON  string
}
