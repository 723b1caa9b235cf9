package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"

	"inventory/internal/models"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	logger  *zap.Logger
	// amqp channels are not safe for concurrent publishes.
	mu sync.Mutex
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL   string
	Queue string
}

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ, opens a channel and declares the event queue.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Queue == "" {
		cfg.Queue = "order_queue"
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

	if err := declareQueue(ch, cfg.Queue); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("RabbitMQ client connected", zap.String("queue", cfg.Queue))

	return &Client{
		conn:    conn,
		channel: ch,
		queue:   cfg.Queue,
		logger:  logger,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) error {
	_, err := ch.QueueDeclare(
		name,  // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s: %w", name, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	return errors.Join(errs...)
}

// PublishOrderPlaced publishes an order event to the queue as persistent JSON.
func (c *Client) PublishOrderPlaced(ctx context.Context, event models.OrderPlacedEvent) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := encode(event)
	if err != nil {
		return err
	}

	c.mu.Lock()
	err = c.channel.Publish(
		"",      // exchange: default exchange
		c.queue, // routing key: the queue name
		false,   // mandatory
		false,   // immediate
		msg)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Debug("Sent order event", zap.String("event_id", event.EventID), zap.Uint("order_id", event.OrderID))
	return nil
}

func encode(event models.OrderPlacedEvent) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal order event to JSON: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		MessageId:    event.EventID,
		Type:         "order.placed",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}, nil
}

// OrderEventHandler processes one decoded order event.
type OrderEventHandler func(ctx context.Context, event models.OrderPlacedEvent) error

// ConsumeOrderEvents starts a goroutine that feeds queued order events to handler
// until ctx is cancelled or the channel closes.
func (c *Client) ConsumeOrderEvents(ctx context.Context, handler OrderEventHandler) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		c.queue, // queue
		"",      // consumer tag
		false,   // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Waiting for order events", zap.String("queue", c.queue))

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					c.logger.Warn("Order event delivery channel closed")
					return
				}
				c.process(ctx, msg, handler)
			}
		}
	}()
	return nil
}

// process acks handled messages. Undecodable messages are dropped; a failed
// handler gets one redelivery before the message is dropped.
func (c *Client) process(ctx context.Context, msg amqp.Delivery, handler OrderEventHandler) {
	var event models.OrderPlacedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		c.logger.Error("Dropping malformed order event", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.logger.Error("Error nacking message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
		}
		return
	}

	if err := handler(ctx, event); err != nil {
		requeue := !msg.Redelivered
		c.logger.Warn("Error processing order event",
			zap.String("event_id", event.EventID),
			zap.Bool("requeue", requeue),
			zap.Error(err))
		if nackErr := msg.Nack(false, requeue); nackErr != nil {
			c.logger.Error("Error nacking message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		c.logger.Error("Error acking message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
	}
}

// LowStockAlerter returns a handler that warns whenever an order leaves a product low on stock.
func LowStockAlerter(logger *zap.Logger) OrderEventHandler {
	return func(_ context.Context, event models.OrderPlacedEvent) error {
		if event.LowStock {
			logger.Warn("Low stock after order",
				zap.Uint("product_id", event.ProductID),
				zap.String("product_name", event.ProductName),
				zap.Int("remaining_stock", event.RemainingStock),
				zap.Uint("order_id", event.OrderID))
		}
		return nil
	}
}
