package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message types carried on the export queue.
const (
	TypeEventExport = "event_export"
	TypeEventDelete = "event_delete"
)

// EventExportMessage asks the worker to export one event to the sheets
// backend. It carries only the ID; the worker fetches the full event
// from the database.
type EventExportMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// EventDeleteMessage asks the worker to remove an exported event. The
// event row is already gone locally, so the message carries the fields
// needed to locate it in the sheet.
type EventDeleteMessage struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Date        int64     `json:"date"`
	AmountCents int64     `json:"amount_cents"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewEventExportMessage creates an export message for the given event.
func NewEventExportMessage(id string) *EventExportMessage {
	return &EventExportMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

// envelope wraps a payload with its type tag for queue transport.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func wrap(msgType string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(envelope{Type: msgType, Payload: body})
}

// ToJSON converts the message to JSON bytes
func (m *EventExportMessage) ToJSON() ([]byte, error) {
	return wrap(TypeEventExport, m)
}

// ToJSON converts the message to JSON bytes
func (m *EventDeleteMessage) ToJSON() ([]byte, error) {
	return wrap(TypeEventDelete, m)
}

// EventExportMessageFromJSON creates a message from payload bytes
func EventExportMessageFromJSON(data []byte) (*EventExportMessage, error) {
	var msg EventExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("event export message missing id")
	}
	return &msg, nil
}

// EventDeleteMessageFromJSON creates a message from payload bytes
func EventDeleteMessageFromJSON(data []byte) (*EventDeleteMessage, error) {
	var msg EventDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("event delete message missing id")
	}
	return &msg, nil
}
