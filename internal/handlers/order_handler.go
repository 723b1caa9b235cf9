package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"inventory/internal/middleware"
	"inventory/internal/models"
	"inventory/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service  *services.OrderService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the order routes behind authRequired.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	orderRoutes := router.Group("/orders", authRequired)
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Post("/", h.HandleCreateOrder)
	orderRoutes.Get("/user/:userId", h.HandleGetOrdersByUser)
	orderRoutes.Get("/product/:productId", h.HandleGetOrdersByProduct)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
}

// CreateOrderRequest represents the request body for placing an order.
// UserID defaults to the authenticated caller.
type CreateOrderRequest struct {
	UserID    uint `json:"user_id"`
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity"`
}

// HandleCreateOrder places a new order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	callerID, _ := middleware.CurrentUserID(c)
	if req.UserID == 0 {
		req.UserID = callerID
	}
	if req.UserID != callerID && middleware.CurrentRole(c) != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Orders can only be placed for yourself",
		})
	}

	order, err := h.service.PlaceOrder(c.UserContext(), req.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return respondError(c, h.logger, "Could not place order", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order.View())
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.service.GetAllOrders(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve orders", err)
	}
	return c.JSON(views(orders))
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "Invalid order ID", err)
	}
	order, err := h.service.GetOrderByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve order", err)
	}
	return c.JSON(order.View())
}

// HandleGetOrdersByUser retrieves the orders of one user.
func (h *OrderHandler) HandleGetOrdersByUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "userId")
	if err != nil {
		return respondError(c, h.logger, "Invalid user ID", err)
	}
	orders, err := h.service.GetOrdersByUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve orders", err)
	}
	return c.JSON(views(orders))
}

// HandleGetOrdersByProduct retrieves the orders placed against one product.
func (h *OrderHandler) HandleGetOrdersByProduct(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return respondError(c, h.logger, "Invalid product ID", err)
	}
	orders, err := h.service.GetOrdersByProduct(c.UserContext(), productID)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve orders", err)
	}
	return c.JSON(views(orders))
}

func views(orders []models.Order) []models.OrderView {
	out := make([]models.OrderView, len(orders))
	for i, o := range orders {
		out[i] = o.View()
	}
	return out
}
