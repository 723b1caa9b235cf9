package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"inventory/internal/models"
)

// Config holds the Kafka connection details.
type Config struct {
	Brokers []string
	Topic   string
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes order events to a Kafka topic.
type Producer struct {
	writer  messageWriter
	topic   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewProducer creates a Producer. kafka-go connects lazily, so no broker is contacted here.
func NewProducer(cfg Config, logger *zap.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		RequiredAcks: kafka.RequireAll,
		// Writes return at once; delivery errors arrive in Completion.
		Async: true,
	}
	p := newProducer(writer, cfg.Topic, logger)
	writer.Completion = p.completed
	return p, nil
}

func newProducer(w messageWriter, topic string, logger *zap.Logger) *Producer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Producer{
		writer:  w,
		topic:   topic,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// PublishOrderPlaced writes the event keyed by product ID, so events for one product stay ordered.
func (p *Producer) PublishOrderPlaced(ctx context.Context, event models.OrderPlacedEvent) error {
	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal order placed event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.ProductID), 10)),
		Value: eventBytes,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte("order.placed")},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish message",
			zap.String("topic", p.topic),
			zap.String("event_id", event.EventID),
			zap.Error(err))
		return fmt.Errorf("write order placed event: %w", err)
	}

	p.logger.Debug("Event published",
		zap.String("topic", p.topic),
		zap.String("event_id", event.EventID),
		zap.Uint("order_id", event.OrderID))
	return nil
}

// completed reports the outcome of an asynchronous batch.
func (p *Producer) completed(msgs []kafka.Message, err error) {
	for _, m := range msgs {
		eventID := headerValue(m, "event_id")
		if err != nil {
			p.logger.Error("Failed to publish message",
				zap.String("topic", p.topic),
				zap.String("event_id", eventID),
				zap.Error(err))
			continue
		}
		p.logger.Debug("Event delivered",
			zap.String("topic", p.topic),
			zap.String("event_id", eventID))
	}
}

func headerValue(m kafka.Message, key string) string {
	for _, h := range m.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

// Close flushes pending writes and releases the writer.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
