package amqp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures = 5
	openTimeout = 30 * time.Second
	maxBackoff  = 30 * time.Second
)

type Client struct {
	url          string
	exchangeName string
	queueName    string
	logger       *slog.Logger

	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel

	state        int32
	failureCount int64
	lastFailure  time.Time
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	client := &Client{
		url:          url,
		exchangeName: exchangeName,
		queueName:    queueName,
		logger:       slog.Default(),
	}

	if err := client.connect(); err != nil {
		return nil, err
	}
	return client, nil
}

// WithLogger sets the logger used for delivery logs.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	if logger != nil {
		c.logger = logger
	}
	return c
}

func (c *Client) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

func (c *Client) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

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
		channel.Close()
		conn.Close()
		c.conn, c.channel = nil, nil
		return fmt.Errorf("setup exchange and queue: %w", err)
	}
	return nil
}

func (c *Client) setup() error {
	// Declare exchange
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

	// Declare queue
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

	// Routing key equals the queue name on a direct exchange
	err = c.channel.QueueBind(
		c.queueName,
		c.queueName,
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// ensureChannel reconnects when the channel is missing or closed.
func (c *Client) ensureChannel() (*amqp091.Channel, error) {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch != nil && !ch.IsClosed() {
		return ch, nil
	}

	c.closeConn()
	if err := c.connect(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel, nil
}

// PublishLedgerChanged publishes a ledger change notification
func (c *Client) PublishLedgerChanged(ctx context.Context, msg *LedgerChangedMessage) error {
	if c.isCircuitOpen() {
		return fmt.Errorf("circuit breaker is open, not publishing ledger change")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch, err := c.ensureChannel()
	if err != nil {
		c.recordFailure()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = ch.PublishWithContext(
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

	c.log().InfoContext(ctx, "Published ledger change message",
		"ledger_key", msg.Key,
		"operation", msg.Operation,
		"invoice_id", msg.InvoiceID,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

// ConsumeLedgerChanged consumes ledger change messages until ctx ends, reconnecting
// with exponential backoff when the broker connection drops.
func (c *Client) ConsumeLedgerChanged(ctx context.Context, handler func(context.Context, *LedgerChangedMessage) error) error {
	attempt := 0
	for {
		err := c.consumeOnce(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil && !isConnectionError(err) {
			return err
		}

		wait := exponentialBackoff(attempt)
		attempt++
		c.log().WarnContext(ctx, "AMQP consumer disconnected, retrying",
			"error", err,
			"attempt", attempt,
			"backoff", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		c.closeConn()
		if err := c.connect(); err != nil {
			c.log().WarnContext(ctx, "AMQP reconnect failed", "error", err)
			continue
		}
		attempt = 0
	}
}

func (c *Client) consumeOnce(ctx context.Context, handler func(context.Context, *LedgerChangedMessage) error) error {
	ch, err := c.ensureChannel()
	if err != nil {
		return err
	}

	msgs, err := ch.Consume(
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

	c.log().InfoContext(ctx, "Started consuming ledger change messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.log().InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return amqp091.ErrClosed
			}

			msg, err := LedgerChangedMessageFromJSON(delivery.Body)
			if err != nil {
				c.log().ErrorContext(ctx, "Failed to unmarshal message", "error", err)
				delivery.Nack(false, false) // reject and don't requeue
				continue
			}

			if err := handler(ctx, msg); err != nil {
				c.log().ErrorContext(ctx, "Failed to handle message",
					"error", err,
					"ledger_key", msg.Key,
					"operation", msg.Operation)
				delivery.Nack(false, true) // reject and requeue
				continue
			}

			delivery.Ack(false)
			c.log().DebugContext(ctx, "Processed ledger change message",
				"ledger_key", msg.Key,
				"operation", msg.Operation)
		}
	}
}

func (c *Client) isCircuitOpen() bool {
	if atomic.LoadInt32(&c.state) != StateOpen {
		return false
	}
	c.mu.Lock()
	last := c.lastFailure
	c.mu.Unlock()
	if time.Since(last) > openTimeout {
		atomic.StoreInt32(&c.state, StateHalfOpen)
		return false
	}
	return true
}

func (c *Client) recordSuccess() {
	atomic.StoreInt64(&c.failureCount, 0)
	atomic.StoreInt32(&c.state, StateClosed)
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.lastFailure = time.Now()
	c.mu.Unlock()
	if atomic.AddInt64(&c.failureCount, 1) >= maxFailures {
		atomic.StoreInt32(&c.state, StateOpen)
	}
}

func exponentialBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := err.Error()
	for _, s := range []string{
		"connection refused",
		"connection closed",
		"EOF",
		"broken pipe",
		"use of closed network connection",
		"channel/connection is not open",
	} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

func (c *Client) closeConn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != nil {
		c.channel.Close()
		c.channel = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
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
