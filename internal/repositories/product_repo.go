package repositories

import (
	"context"

	"inventory/internal/models"
)

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id uint) (*models.Product, error)
	// GetByIDForUpdate reads a product and locks its row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id uint) (*models.Product, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, product *models.Product) error
	// Update writes every column except stock_level.
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uint) error
	// DecrementStock subtracts quantity only if enough stock is present.
	// It returns ErrStockConflict when the guard rejects the update.
	DecrementStock(ctx context.Context, id uint, quantity int) error
	// AdjustStock adds delta (which may be negative) as long as the result stays non-negative.
	AdjustStock(ctx context.Context, id uint, delta int) error
}
