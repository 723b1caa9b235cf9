package services

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventory/internal/models"
	"inventory/internal/repositories"
)

// ProductUpdate carries the editable product fields.
// Nil optional fields leave the stored value unchanged.
type ProductUpdate struct {
	Name        string           `json:"name" validate:"required,max=100"`
	Category    string           `json:"category" validate:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price" validate:"-"`
	Description *string          `json:"description" validate:"omitempty,max=500"`
	ImageURL    *string          `json:"imageUrl" validate:"omitempty,max=255"`
	SkuID       *string          `json:"skuId" validate:"omitempty,max=50"`
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		repo:     repo,
		validate: validator.New(),
		logger:   logger,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id uint) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct creates a new product. Missing price and stock default to zero.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.Price == nil {
		product.Price = models.DecimalPtr(0)
	}
	if product.StockLevel == nil {
		product.StockLevel = models.IntPtr(0)
	}
	if err := s.check(product); err != nil {
		return err
	}
	product.ID = 0

	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}
	s.logger.Info("Product created", zap.Uint("product_id", product.ID), zap.String("name", product.Name))
	return nil
}

// UpdateProduct applies changes to an existing product and returns the stored result.
// The stock level is never written here; see AdjustStock.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, changes ProductUpdate) (*models.Product, error) {
	if err := s.validate.Struct(changes); err != nil {
		return nil, models.InvalidArgument("%v", err)
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = changes.Name
	product.Category = changes.Category
	if changes.Price != nil {
		product.Price = changes.Price
	}
	if changes.Description != nil {
		product.Description = *changes.Description
	}
	if changes.ImageURL != nil {
		product.ImageURL = *changes.ImageURL
	}
	if changes.SkuID != nil {
		product.SkuID = changes.SkuID
	}
	if err := s.check(product); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct deletes a product by its ID. Existing orders keep referring to it.
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deleted", zap.Uint("product_id", id))
	return nil
}

// AdjustStock restocks (positive delta) or writes off (negative delta) units.
// A write-off larger than the current stock is refused with InsufficientStock.
func (s *ProductService) AdjustStock(ctx context.Context, id uint, delta int) (*models.Product, error) {
	if delta == 0 {
		return nil, models.InvalidArgument("stock delta must not be zero")
	}

	if err := s.repo.AdjustStock(ctx, id, delta); err != nil {
		if !errors.Is(err, repositories.ErrStockConflict) {
			return nil, err
		}
		product, gerr := s.repo.GetByID(ctx, id)
		if gerr != nil {
			return nil, gerr
		}
		return nil, insufficientStock(product, -delta)
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Stock adjusted",
		zap.Uint("product_id", id),
		zap.Int("delta", delta),
		zap.Intp("stock_level", product.StockLevel))
	return product, nil
}

func (s *ProductService) check(product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return models.InvalidArgument("%v", err)
	}
	if product.Price != nil && product.Price.IsNegative() {
		return models.InvalidArgument("price must not be negative")
	}
	return nil
}
