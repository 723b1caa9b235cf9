package repositories

import (
	"context"

	"inventory/internal/models"
)

// OrderRepository defines the interface for order data access.
// Every read returns orders with User and Product already resolved.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id uint) (*models.Order, error)
	GetByUserID(ctx context.Context, userID uint) ([]models.Order, error)
	GetByProductID(ctx context.Context, productID uint) ([]models.Order, error)
	Create(ctx context.Context, order *models.Order) error
}
