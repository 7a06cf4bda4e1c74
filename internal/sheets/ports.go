package sheets

import (
	"context"

	"budgetrip/internal/core"
)

// Ports for outbound export adapters.
type (
	// EventWriter appends a reviewed event to the export destination.
	EventWriter interface {
		Append(ctx context.Context, e core.Event) (rowRef string, err error)
	}

	// EventDeleter withdraws a previously exported event.
	EventDeleter interface {
		Delete(ctx context.Context, eventID string) error
	}
)
