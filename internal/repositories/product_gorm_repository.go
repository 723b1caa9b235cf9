package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"inventory/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all live products in primary key order.
func (r *GORMProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).Order("product_id").Find(&products).Error; err != nil {
		return nil, models.NewStorageError("get all products", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "product_id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "product", id, fmt.Sprintf("get product %d", id))
	}
	return &product, nil
}

// GetByIDForUpdate retrieves a product with SELECT ... FOR UPDATE.
// Dialects without row locks (sqlite) drop the clause.
func (r *GORMProductRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, "product_id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "product", id, fmt.Sprintf("lock product %d", id))
	}
	return &product, nil
}

// Count returns the number of live products.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, models.NewStorageError("count products", err)
	}
	return n, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return duplicateSku(product)
		}
		return models.NewStorageError("create product", err)
	}
	return nil
}

// Update updates the non-stock columns of an existing product.
// Stock only moves through DecrementStock and AdjustStock.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	product.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("product_id = ?", product.ID).
		Select("Name", "Category", "Price", "Description", "ImageURL", "SkuID", "UpdatedAt").
		Updates(product)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return duplicateSku(product)
		}
		return models.NewStorageError("update product", res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Subject: "product", ID: product.ID}
	}
	return nil
}

// Delete soft-deletes a product by its ID. Orders referencing it keep resolving it.
func (r *GORMProductRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "product_id = ?", id)
	if res.Error != nil {
		return models.NewStorageError("delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.NotFoundError{Subject: "product", ID: id}
	}
	return nil
}

// DecrementStock runs a single guarded UPDATE so concurrent decrements can never overdraw.
func (r *GORMProductRepository) DecrementStock(ctx context.Context, id uint, quantity int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("product_id = ? AND stock_level IS NOT NULL AND stock_level >= ?", id, quantity).
		Update("stock_level", gorm.Expr("stock_level - ?", quantity))
	if res.Error != nil {
		return models.NewStorageError("decrement stock", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStockConflict
	}
	return nil
}

// AdjustStock adds delta to the stock level, treating a missing level as zero.
func (r *GORMProductRepository) AdjustStock(ctx context.Context, id uint, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("product_id = ? AND COALESCE(stock_level, 0) + ? >= 0", id, delta).
		Update("stock_level", gorm.Expr("COALESCE(stock_level, 0) + ?", delta))
	if res.Error != nil {
		return models.NewStorageError("adjust stock", res.Error)
	}
	if res.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrStockConflict
	}
	return nil
}

// duplicateSku reports a unique index violation. Soft-deleted products keep their SKU.
func duplicateSku(product *models.Product) error {
	if product.SkuID != nil {
		return fmt.Errorf("%w: sku '%s' already in use", models.ErrConflict, *product.SkuID)
	}
	return fmt.Errorf("%w: product already exists", models.ErrConflict)
}
