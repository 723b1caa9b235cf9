package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inventory/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// withRelations eagerly loads User and Product. The product preload ignores
// soft deletes so an order keeps resolving a product that was removed later.
func (r *GORMOrderRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Order("order_id")
}

// GetAll returns all orders.
func (r *GORMOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.withRelations(ctx).Find(&orders).Error; err != nil {
		return nil, models.NewStorageError("get all orders", err)
	}
	return orders, nil
}

// GetByID returns an order by its ID.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	if err := r.withRelations(ctx).First(&order, "order_id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "order", id, fmt.Sprintf("get order %d", id))
	}
	return &order, nil
}

// GetByUserID returns the orders placed by a user.
func (r *GORMOrderRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.withRelations(ctx).Where("user_id = ?", userID).Find(&orders).Error; err != nil {
		return nil, models.NewStorageError("get orders by user", err)
	}
	return orders, nil
}

// GetByProductID returns the orders placed against a product.
func (r *GORMOrderRepository) GetByProductID(ctx context.Context, productID uint) ([]models.Order, error) {
	var orders []models.Order
	if err := r.withRelations(ctx).Where("product_id = ?", productID).Find(&orders).Error; err != nil {
		return nil, models.NewStorageError("get orders by product", err)
	}
	return orders, nil
}

// Create inserts a new order. Associations are not upserted.
func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return models.NewStorageError("create order", err)
	}
	return nil
}
