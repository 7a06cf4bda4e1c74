package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgetrip/internal/amqp"
	"budgetrip/internal/core"
	"budgetrip/internal/storage"
)

// EventService orchestrates review submissions across SQLite and AMQP.
// Creating an event marks its line items reviewed in the same transaction,
// then hands the event to the export worker via RabbitMQ.
type EventService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewEventService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *EventService {
	return &EventService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// Create saves an event and publishes an export message. The save is the
// source of truth; a publish failure is logged but does not fail the
// request, since the export worker also sweeps unexported events.
func (s *EventService) Create(ctx context.Context, e core.Event) (string, error) {
	if e.ID == "" {
		e.ID = core.NewEventID()
	}
	if e.Date == 0 {
		e.Date = time.Now().Unix()
	}
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validate event: %w", err)
	}

	if e.Amount.Cents == 0 {
		total, err := s.sumLineItems(ctx, e.LineItemIDs)
		if err != nil {
			return "", err
		}
		e.Amount = total
	}

	if err := s.storage.CreateEvent(ctx, e); err != nil {
		return "", fmt.Errorf("save event: %w", err)
	}

	if err := s.publishExportMessage(ctx, e.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"event_id", e.ID, "error", err)
		// Don't fail the request - event is saved locally
	}

	return e.ID, nil
}

// Get returns a single event with its line item IDs.
func (s *EventService) Get(ctx context.Context, id string) (core.Event, error) {
	return s.storage.GetEvent(ctx, id)
}

// List returns all events, newest first.
func (s *EventService) List(ctx context.Context) ([]core.Event, error) {
	return s.storage.ListEvents(ctx)
}

// Delete removes an event locally, returning its line items to the review
// pool, and publishes a delete message so the export is withdrawn.
func (s *EventService) Delete(ctx context.Context, id string) error {
	e, err := s.storage.GetEvent(ctx, id)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}

	if err := s.storage.DeleteEvent(ctx, id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	if err := s.publishDeleteMessage(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"event_id", id, "error", err)
		// Don't fail the request - event is deleted locally
	}

	return nil
}

// Categories returns the known event categories.
func (s *EventService) Categories(ctx context.Context) ([]string, error) {
	return s.storage.ListCategories(ctx)
}

// AddCategory registers a new event category.
func (s *EventService) AddCategory(ctx context.Context, name string) error {
	if name == "" {
		return core.ErrEmptyCategory
	}
	return s.storage.CreateCategory(ctx, name)
}

// Summary aggregates event amounts by category for one month.
func (s *EventService) Summary(ctx context.Context, year, month int) (core.MonthSummary, error) {
	return s.storage.MonthSummary(ctx, year, month)
}

// sumLineItems totals the amounts of the named line items. Used when an
// event is submitted without an explicit amount.
func (s *EventService) sumLineItems(ctx context.Context, ids []string) (core.Money, error) {
	var total core.Money
	for _, id := range ids {
		li, err := s.storage.GetLineItem(ctx, id)
		if err != nil {
			return core.Money{}, fmt.Errorf("get line item %s: %w", id, err)
		}
		total = total.Add(li.Amount)
	}
	return total, nil
}

func (s *EventService) publishExportMessage(ctx context.Context, eventID string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping export message")
		return nil
	}

	return s.amqpClient.PublishEventExport(ctx, eventID)
}

func (s *EventService) publishDeleteMessage(ctx context.Context, e core.Event) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}

	return s.amqpClient.PublishEventDelete(ctx, &amqp.EventDeleteMessage{
		ID:          e.ID,
		Name:        e.Name,
		Category:    e.Category,
		Date:        e.Date,
		AmountCents: e.Amount.Cents,
		Timestamp:   time.Now(),
	})
}

// Close closes both storage and AMQP connections.
func (s *EventService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close event service: %v", errs)
	}

	return nil
}
