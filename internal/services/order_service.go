package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inventory/internal/metrics"
	"inventory/internal/models"
	"inventory/internal/repositories"
)

// OrderService handles business logic related to orders.
type OrderService struct {
	uow               repositories.UnitOfWork
	orderRepo         repositories.OrderRepository
	publisher         EventPublisher
	metrics           *metrics.Metrics
	logger            *zap.Logger
	lowStockThreshold int
	now               func() time.Time
}

// OrderServiceOption configures an OrderService.
type OrderServiceOption func(*OrderService)

// WithEventPublisher publishes an OrderPlacedEvent after every committed order.
func WithEventPublisher(p EventPublisher) OrderServiceOption {
	return func(s *OrderService) { s.publisher = p }
}

// WithOrderMetrics records order outcomes.
func WithOrderMetrics(m *metrics.Metrics) OrderServiceOption {
	return func(s *OrderService) { s.metrics = m }
}

// WithLowStockThreshold sets the level at or below which placed-order events are flagged as low stock.
func WithLowStockThreshold(n int) OrderServiceOption {
	return func(s *OrderService) { s.lowStockThreshold = n }
}

// WithClock overrides the clock used for order timestamps.
func WithClock(now func() time.Time) OrderServiceOption {
	return func(s *OrderService) { s.now = now }
}

// NewOrderService creates a new OrderService.
func NewOrderService(uow repositories.UnitOfWork, orderRepo repositories.OrderRepository, logger *zap.Logger, opts ...OrderServiceOption) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &OrderService{
		uow:               uow,
		orderRepo:         orderRepo,
		logger:            logger,
		lowStockThreshold: 10,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder buys quantity units of a product for a user.
//
// The checks run in order and fail fast: quantity, user, product, stock.
// The stock decrement and the order insert share one transaction, so either
// both are visible afterwards or neither is.
func (s *OrderService) PlaceOrder(ctx context.Context, userID, productID uint, quantity int) (*models.Order, error) {
	start := time.Now()

	if quantity <= 0 {
		s.metrics.RecordOrderRejected(rejectReason(models.ErrInvalidArgument))
		return nil, models.InvalidArgument("quantity must be greater than zero, got %d", quantity)
	}

	var order *models.Order
	err := s.uow.Do(ctx, func(repos repositories.Repositories) error {
		user, err := repos.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		// Row lock: concurrent orders for this product queue here until we commit.
		product, err := repos.Products.GetByIDForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if available, ok := product.Stock(); !ok || available < quantity {
			return insufficientStock(product, quantity)
		}

		if err := repos.Products.DecrementStock(ctx, product.ID, quantity); err != nil {
			if !errors.Is(err, repositories.ErrStockConflict) {
				return err
			}
			// The guard saw less stock than our read did; report the current level.
			fresh, ferr := repos.Products.GetByID(ctx, product.ID)
			if ferr != nil {
				return ferr
			}
			return insufficientStock(fresh, quantity)
		}

		updated, err := repos.Products.GetByID(ctx, product.ID)
		if err != nil {
			return err
		}

		o := &models.Order{
			UserID:    user.ID,
			ProductID: updated.ID,
			Quantity:  quantity,
			Timestamp: s.now().UTC(),
		}
		if err := repos.Orders.Create(ctx, o); err != nil {
			return err
		}
		o.User = user
		o.Product = updated
		order = o
		return nil
	})
	if err != nil {
		s.metrics.RecordOrderRejected(rejectReason(err))
		s.logger.Info("Order rejected",
			zap.Uint("user_id", userID),
			zap.Uint("product_id", productID),
			zap.Int("quantity", quantity),
			zap.Error(err))
		return nil, err
	}

	s.metrics.RecordOrderPlaced(quantity, time.Since(start))
	s.logger.Info("Order placed",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", order.UserID),
		zap.Uint("product_id", order.ProductID),
		zap.Int("quantity", quantity))

	s.publishOrderPlaced(ctx, order)
	return order, nil
}

func (s *OrderService) publishOrderPlaced(ctx context.Context, order *models.Order) {
	if s.publisher == nil {
		return
	}
	remaining, _ := order.Product.Stock()
	event := models.OrderPlacedEvent{
		EventID:        uuid.New().String(),
		OrderID:        order.ID,
		UserID:         order.UserID,
		ProductID:      order.ProductID,
		ProductName:    order.ProductName(),
		Quantity:       order.Quantity,
		RemainingStock: remaining,
		LowStock:       remaining <= s.lowStockThreshold,
		Timestamp:      order.Timestamp,
	}
	// The order is already committed; a lost event must not fail the request.
	if err := s.publisher.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Warn("Failed to publish order placed event",
			zap.Uint("order_id", order.ID),
			zap.Error(err))
	}
}

func insufficientStock(p *models.Product, requested int) error {
	available, _ := p.Stock()
	return &models.InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Available:   available,
		Requested:   requested,
	}
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case errors.Is(err, models.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, models.ErrStorage):
		return "storage"
	default:
		return "other"
	}
}

// GetAllOrders retrieves all orders with user and product resolved.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// GetOrdersByUser retrieves the orders placed by a user.
func (s *OrderService) GetOrdersByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	return s.orderRepo.GetByUserID(ctx, userID)
}

// GetOrdersByProduct retrieves the orders placed against a product.
func (s *OrderService) GetOrdersByProduct(ctx context.Context, productID uint) ([]models.Order, error) {
	return s.orderRepo.GetByProductID(ctx, productID)
}
