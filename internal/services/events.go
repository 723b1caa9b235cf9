package services

import (
	"context"

	"inventory/internal/models"
)

// EventPublisher publishes domain events to a broker.
// Implementations live in pkg/rabbitmq and pkg/kafka.
type EventPublisher interface {
	PublishOrderPlaced(ctx context.Context, event models.OrderPlacedEvent) error
}
