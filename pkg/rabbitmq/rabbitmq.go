// Package rabbitmq publishes and consumes contact change events.
package rabbitmq

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"agenda/internal/models"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// ContactQueue is the queue contact events are delivered to.
const ContactQueue = "contact_events"

// ErrChannelClosed is returned once the client has been closed.
var ErrChannelClosed = errors.New("rabbitmq channel is not available")

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	logger  *zap.Logger

	// amqp channels are not safe for concurrent publishing.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL    string
	Logger *zap.Logger
}

// NewClient connects to RabbitMQ and declares the contact queue.
func NewClient(cfg Config) (*Client, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareQueue(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("rabbitmq client connected", zap.String("queue", ContactQueue))

	return &Client{
		conn:    conn,
		channel: ch,
		logger:  logger,
	}, nil
}

func declareQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		ContactQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return q, fmt.Errorf("failed to declare %s: %w", ContactQueue, err)
	}
	return q, nil
}

// Close closes the RabbitMQ channel and connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
		c.channel = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
		c.conn = nil
	}
	return errors.Join(errs...)
}

// EncodeContactEvent returns the message published for event.
func EncodeContactEvent(event models.ContactEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal contact event: %w", err)
	}
	ts := event.OccurredAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Type:         event.Type,
		DeliveryMode: amqp.Persistent,
		Timestamp:    ts,
		Body:         body,
	}, nil
}

// DecodeContactEvent parses a delivered contact event.
func DecodeContactEvent(msg amqp.Delivery) (models.ContactEvent, error) {
	var event models.ContactEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		return event, fmt.Errorf("failed to decode contact event: %w", err)
	}
	if event.Type == "" {
		event.Type = msg.Type
	}
	return event, nil
}

// PublishContactEvent publishes event to the contact queue.
func (c *Client) PublishContactEvent(event models.ContactEvent) error {
	msg, err := EncodeContactEvent(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel == nil {
		return ErrChannelClosed
	}

	// default exchange, routed by queue name
	if err := c.channel.Publish("", ContactQueue, false, false, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}

	c.logger.Debug("contact event published",
		zap.String("type", event.Type),
		zap.Uint("contact_id", event.ContactID),
	)
	return nil
}

// ConsumeContactEvents delivers queued contact events to handler in a
// background goroutine. Events the handler fails on are requeued; messages
// that cannot be decoded are dropped.
func (c *Client) ConsumeContactEvents(handler func(models.ContactEvent) error) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil {
		return ErrChannelClosed
	}

	msgs, err := ch.Consume(
		ContactQueue,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("waiting for contact events", zap.String("queue", ContactQueue))

	go func() {
		for msg := range msgs {
			c.handle(msg, handler)
		}
		c.logger.Info("contact event consumer stopped")
	}()
	return nil
}

func (c *Client) handle(msg amqp.Delivery, handler func(models.ContactEvent) error) {
	event, err := DecodeContactEvent(msg)
	if err != nil {
		c.logger.Warn("dropping malformed message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.logger.Error("failed to nack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
		}
		return
	}

	if err := handler(event); err != nil {
		c.logger.Error("failed to process contact event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		if nackErr := msg.Nack(false, true); nackErr != nil {
			c.logger.Error("failed to nack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		c.logger.Error("failed to ack message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
	}
}
