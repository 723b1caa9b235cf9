package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"inventory/internal/models"
	"inventory/internal/repositories"
	"inventory/internal/services"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByIDForUpdate(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Create(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(ctx context.Context, id uint, quantity int) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

func (m *MockProductRepository) AdjustStock(ctx context.Context, id uint, delta int) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

func TestProductService_GetAllProducts(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProducts := []models.Product{
		{ID: 1, Name: "Product A", Price: models.DecimalPtr(10), StockLevel: models.IntPtr(100)},
		{ID: 2, Name: "Product B", Price: models.DecimalPtr(20), StockLevel: models.IntPtr(50)},
	}
	mockRepo.On("GetAll", ctx).Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts(ctx)

	assert.NoError(t, err)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	expectedProduct := &models.Product{ID: 1, Name: "Product A"}
	mockRepo.On("GetByID", ctx, uint(1)).Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)

	mockRepo.On("GetByID", ctx, uint(99)).Return(nil, &models.NotFoundError{Subject: "product", ID: 99}).Once()
	product, err = service.GetProductByID(ctx, 99)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Nil(t, product)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	newProduct := &models.Product{ID: 5, Name: "New Product"}
	mockRepo.On("Create", ctx, mock.MatchedBy(func(p *models.Product) bool {
		return p.ID == 0 && p.Price != nil && p.Price.IsZero() && p.StockLevel != nil && *p.StockLevel == 0
	})).Return(nil).Once()

	err := service.CreateProduct(ctx, newProduct)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_Invalid(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	tests := []struct {
		name    string
		product *models.Product
	}{
		{"missing name", &models.Product{Price: models.DecimalPtr(1)}},
		{"negative price", &models.Product{Name: "Lamp", Price: models.DecimalPtr(-1)}},
		{"negative stock", &models.Product{Name: "Lamp", StockLevel: models.IntPtr(-3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.CreateProduct(ctx, tt.product)
			assert.ErrorIs(t, err, models.ErrInvalidArgument)
		})
	}
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestProductService_UpdateProduct_KeepsOmittedFields(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	existing := &models.Product{
		ID:          3,
		Name:        "Old Name",
		Price:       models.DecimalPtr(10),
		StockLevel:  models.IntPtr(7),
		Description: "old description",
		SkuID:       models.StringPtr("SKU_0003"),
	}
	mockRepo.On("GetByID", ctx, uint(3)).Return(existing, nil).Once()
	mockRepo.On("Update", ctx, mock.AnythingOfType("*models.Product")).Return(nil).Once()

	price := decimal.NewFromFloat(12.5)
	updated, err := service.UpdateProduct(ctx, 3, services.ProductUpdate{
		Name:     "New Name",
		Category: "Tools",
		Price:    &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, "Tools", updated.Category)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, "old description", updated.Description)
	assert.Equal(t, "SKU_0003", updated.Sku())
	assert.Equal(t, 7, *updated.StockLevel)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetByID", ctx, uint(8)).Return(nil, &models.NotFoundError{Subject: "product", ID: 8}).Once()
	_, err := service.UpdateProduct(ctx, 8, services.ProductUpdate{Name: "x"})
	assert.ErrorIs(t, err, models.ErrNotFound)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestProductService_DeleteProduct(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Delete", ctx, uint(1)).Return(nil).Once()
	err := service.DeleteProduct(ctx, 1)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_AdjustStock(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	// Restock
	mockRepo.On("AdjustStock", ctx, uint(1), 5).Return(nil).Once()
	mockRepo.On("GetByID", ctx, uint(1)).Return(&models.Product{ID: 1, Name: "Lamp", StockLevel: models.IntPtr(8)}, nil).Once()
	product, err := service.AdjustStock(ctx, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, 8, *product.StockLevel)

	// Write-off beyond what is left
	mockRepo.On("AdjustStock", ctx, uint(1), -20).Return(repositories.ErrStockConflict).Once()
	mockRepo.On("GetByID", ctx, uint(1)).Return(&models.Product{ID: 1, Name: "Lamp", StockLevel: models.IntPtr(8)}, nil).Once()
	_, err = service.AdjustStock(ctx, 1, -20)
	var stockErr *models.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, 8, stockErr.Available)
	assert.Equal(t, 20, stockErr.Requested)

	// Zero delta
	_, err = service.AdjustStock(ctx, 1, 0)
	assert.ErrorIs(t, err, models.ErrInvalidArgument)
	mockRepo.AssertExpectations(t)
}
