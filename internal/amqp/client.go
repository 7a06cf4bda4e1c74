package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states.
const (
	StateClosed int32 = iota
	StateHalfOpen
	StateOpen
)

const (
	maxFailures = 5
	openTimeout = 60 * time.Second
	maxDialTry  = 3
)

// Client publishes and consumes export messages on a durable direct
// exchange. Publishing is guarded by a small circuit breaker so a
// broker outage degrades to skipped messages instead of blocking
// request handling.
type Client struct {
	mu           sync.Mutex
	url          string
	exchangeName string
	queueName    string
	conn         *amqp091.Connection
	channel      *amqp091.Channel

	failureCount int64
	state        int32
	failMu       sync.Mutex
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.connect(); err != nil {
		return nil, err
	}

	return client, nil
}

func (c *Client) connect() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.conn = conn
	c.channel = channel

	if err := c.setup(); err != nil {
		c.closeLocked()
		return fmt.Errorf("setup exchange and queue: %w", err)
	}

	return nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	// Routing key matches the queue name on a direct exchange.
	err = c.channel.QueueBind(c.queueName, c.queueName, c.exchangeName, false, nil)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// exponentialBackoff returns the wait before reconnect attempt n,
// capped at 30 seconds.
func exponentialBackoff(attempt int) time.Duration {
	d := time.Second << uint(attempt)
	if d > 30*time.Second || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// isConnectionError reports whether err looks like a broken transport
// rather than a protocol or validation failure.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"EOF",
		"broken pipe",
		"use of closed network connection",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) isCircuitOpen() bool {
	switch atomic.LoadInt32(&c.state) {
	case StateOpen:
		c.failMu.Lock()
		last := c.lastFailure
		c.failMu.Unlock()
		if time.Since(last) > openTimeout {
			atomic.StoreInt32(&c.state, StateHalfOpen)
			return false
		}
		return true
	default:
		return false
	}
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	failures := atomic.AddInt64(&c.failureCount, 1)
	c.failMu.Lock()
	c.lastFailure = time.Now()
	c.failMu.Unlock()
	if failures >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

// reconnect re-establishes the connection with backoff. Returns the
// first nil error or the last failure.
func (c *Client) reconnect() error {
	var err error
	for attempt := 0; attempt < maxDialTry; attempt++ {
		if attempt > 0 {
			time.Sleep(exponentialBackoff(attempt - 1))
		}
		if err = c.connect(); err == nil {
			return nil
		}
		slog.Warn("AMQP reconnect failed", "attempt", attempt, "error", err)
	}
	return err
}

func (c *Client) publish(ctx context.Context, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open, dropping message")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.channel == nil || c.conn == nil || c.conn.IsClosed() {
		if err := c.reconnect(); err != nil {
			c.recordFailure()
			return fmt.Errorf("connect before publish: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		c.recordFailure()
		return fmt.Errorf("publish message: %w", err)
	}

	c.recordSuccess()
	return nil
}

// PublishEventExport publishes an export message for the given event.
func (c *Client) PublishEventExport(ctx context.Context, eventID string) error {
	body, err := NewEventExportMessage(eventID).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published event export message",
		"event_id", eventID,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// PublishEventDelete publishes a delete message for an exported event.
func (c *Client) PublishEventDelete(ctx context.Context, msg *EventDeleteMessage) error {
	msg.Timestamp = time.Now()
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	if err := c.publish(ctx, body); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Published event delete message",
		"event_id", msg.ID,
		"exchange", c.exchangeName,
		"queue", c.queueName)
	return nil
}

// ConsumeMessages consumes export and delete messages until ctx is
// cancelled. Handler errors requeue the delivery; undecodable messages
// are dropped.
func (c *Client) ConsumeMessages(
	ctx context.Context,
	exportHandler func(context.Context, *EventExportMessage) error,
	deleteHandler func(context.Context, *EventDeleteMessage) error,
) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming export messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			var env envelope
			if err := json.Unmarshal(delivery.Body, &env); err != nil {
				slog.ErrorContext(ctx, "Failed to unmarshal envelope", "error", err)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			var handleErr error
			switch env.Type {
			case TypeEventExport:
				msg, err := EventExportMessageFromJSON(env.Payload)
				if err != nil {
					slog.ErrorContext(ctx, "Failed to unmarshal export message", "error", err)
					delivery.Nack(false, false)
					continue
				}
				handleErr = exportHandler(ctx, msg)
			case TypeEventDelete:
				msg, err := EventDeleteMessageFromJSON(env.Payload)
				if err != nil {
					slog.ErrorContext(ctx, "Failed to unmarshal delete message", "error", err)
					delivery.Nack(false, false)
					continue
				}
				handleErr = deleteHandler(ctx, msg)
			default:
				slog.WarnContext(ctx, "Unknown message type", "type", env.Type)
				delivery.Nack(false, false)
				continue
			}

			if handleErr != nil {
				slog.ErrorContext(ctx, "Failed to handle message",
					"error", handleErr, "type", env.Type)
				if isConnectionError(handleErr) {
					delivery.Nack(false, true) // transient, requeue
				} else {
					delivery.Nack(false, false)
				}
				continue
			}

			delivery.Ack(false)
		}
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		err := c.conn.Close()
		c.conn = nil
		return err
	}
	return nil
}
