package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventory/internal/middleware"
	"inventory/internal/models"
	"inventory/internal/services"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes registers the product routes. Reads need a token, writes need the admin role.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	productRoutes := router.Group("/products", authRequired)
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)

	adminOnly := middleware.RequireRole(models.RoleAdmin)
	productRoutes.Post("/", adminOnly, h.HandleCreateProduct)
	productRoutes.Put("/:id", adminOnly, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", adminOnly, h.HandleDeleteProduct)
	productRoutes.Patch("/:id/stock", adminOnly, h.HandleAdjustStock)
}

// HandleGetProducts lists all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "Invalid product ID", err)
	}
	product, err := h.service.GetProductByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// CreateProductRequest represents the request body for a new product.
type CreateProductRequest struct {
	Name        string           `json:"name" validate:"required,max=100"`
	Category    string           `json:"category" validate:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price" validate:"-"`
	StockLevel  *int             `json:"stockLevel" validate:"omitempty,gte=0"`
	Description string           `json:"description" validate:"omitempty,max=500"`
	ImageURL    string           `json:"imageUrl" validate:"omitempty,max=255"`
	SkuID       *string          `json:"skuId" validate:"omitempty,max=50"`
}

// HandleCreateProduct creates a product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	product := &models.Product{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		StockLevel:  req.StockLevel,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SkuID:       req.SkuID,
	}
	if err := h.service.CreateProduct(c.UserContext(), product); err != nil {
		return respondError(c, h.logger, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct edits a product's descriptive fields and price.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "Invalid product ID", err)
	}
	var req services.ProductUpdate
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	product, err := h.service.UpdateProduct(c.UserContext(), id, req)
	if err != nil {
		return respondError(c, h.logger, "Could not update product", err)
	}
	return c.JSON(product)
}

// HandleDeleteProduct removes a product from the catalogue.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "Invalid product ID", err)
	}
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, h.logger, "Could not delete product", err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StockAdjustmentRequest represents the request body for a restock or write-off.
type StockAdjustmentRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// HandleAdjustStock adds or removes units.
func (h *ProductHandler) HandleAdjustStock(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.logger, "Invalid product ID", err)
	}
	var req StockAdjustmentRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if err := h.validate.Struct(req); err != nil {
		return validationFailed(c, err)
	}

	product, err := h.service.AdjustStock(c.UserContext(), id, req.Delta)
	if err != nil {
		return respondError(c, h.logger, "Could not adjust stock", err)
	}
	return c.JSON(product)
}
