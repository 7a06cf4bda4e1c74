package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"budgetrip/internal/amqp"
	"budgetrip/internal/sheets"
	"budgetrip/internal/storage"
)

// ExportWorker moves reviewed events from SQLite to the export backend.
// AMQP messages drive the normal path; the pending sweep is a backup for
// messages lost while the worker was down.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	writer    sheets.EventWriter
	deleter   sheets.EventDeleter
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, writer sheets.EventWriter, deleter sheets.EventDeleter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single event export message from AMQP
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.EventExportMessage) error {
	slog.InfoContext(ctx, "Processing export message", "event_id", msg.ID)

	event, err := w.storage.GetEvent(ctx, msg.ID)
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted before the worker got to it; nothing to export.
		slog.WarnContext(ctx, "Event gone before export, skipping", "event_id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get event from storage: %w", err)
	}

	if err := w.exportEvent(ctx, event.ID); err != nil {
		return fmt.Errorf("export event: %w", err)
	}

	return nil
}

// HandleDeleteMessage processes a single event delete message from AMQP
func (w *ExportWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.EventDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "event_id", msg.ID)

	if w.deleter == nil {
		slog.WarnContext(ctx, "No event deleter configured, skipping export deletion",
			"event_id", msg.ID)
		return nil
	}

	if err := w.deleter.Delete(ctx, msg.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to delete exported event",
			"event_id", msg.ID,
			"error", err,
			"timestamp", msg.Timestamp)
		return fmt.Errorf("delete exported event: %w", err)
	}

	slog.InfoContext(ctx, "Deleted exported event",
		"event_id", msg.ID,
		"name", msg.Name,
		"timestamp", msg.Timestamp)

	return nil
}

// ProcessUnexportedEvents sweeps events that haven't reached the export
// destination yet. This is a backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessUnexportedEvents(ctx context.Context) error {
	pending, err := w.storage.ListUnexportedEvents(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unexported events: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing unexported events", "count", len(pending))

	for _, event := range pending {
		if err := w.exportEvent(ctx, event.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export event", "event_id", event.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupExportCheck drains any backlog left from worker downtime.
func (w *ExportWorker) StartupExportCheck(ctx context.Context) error {
	// Get a larger batch for startup check
	pending, err := w.storage.ListUnexportedEvents(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list unexported events for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No unexported events found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found unexported events on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, event := range pending {
		if err := w.exportEvent(ctx, event.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export event during startup",
				"event_id", event.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

func (w *ExportWorker) exportEvent(ctx context.Context, eventID string) error {
	event, err := w.storage.GetEvent(ctx, eventID)
	if err != nil {
		return fmt.Errorf("get event %s: %w", eventID, err)
	}

	ref, err := w.writer.Append(ctx, event)
	if err != nil {
		return fmt.Errorf("append to export backend: %w", err)
	}

	if err := w.storage.MarkEventExported(ctx, eventID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark event as exported", "event_id", eventID, "error", err)
		// Don't return error here - the export actually worked
	}

	slog.InfoContext(ctx, "Exported event",
		"event_id", eventID,
		"sheets_ref", ref,
		"name", event.Name,
		"amount_cents", event.Amount.Cents)

	return nil
}
