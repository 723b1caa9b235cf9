package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"inventory/internal/services"
)

// Query defaults for the recommendation endpoints.
const (
	defaultRecommendationLimit = 10
	defaultFeaturedLimit       = 12
	defaultLowStockThreshold   = 10
)

// RecommendationHandler serves the public product rankings.
type RecommendationHandler struct {
	service           *services.RecommendationService
	lowStockThreshold int
	logger            *zap.Logger
}

// NewRecommendationHandler creates a new RecommendationHandler.
// lowStockThreshold is used when the caller passes no threshold; zero or less means the built-in default.
func NewRecommendationHandler(service *services.RecommendationService, lowStockThreshold int, logger *zap.Logger) *RecommendationHandler {
	if lowStockThreshold <= 0 {
		lowStockThreshold = defaultLowStockThreshold
	}
	return &RecommendationHandler{
		service:           service,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

// RegisterRoutes registers the recommendation routes. They are public.
func (h *RecommendationHandler) RegisterRoutes(router fiber.Router) {
	recRoutes := router.Group("/recommendations")
	recRoutes.Get("/", h.HandleGetRecommendations)
	recRoutes.Get("/featured", h.HandleGetFeatured)
	recRoutes.Get("/low-stock", h.HandleGetLowStock)
}

// HandleGetRecommendations returns products ranked by predicted demand.
func (h *RecommendationHandler) HandleGetRecommendations(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", defaultRecommendationLimit)
	if err != nil {
		return respondError(c, h.logger, "Invalid limit", err)
	}
	recs, err := h.service.GetRecommendations(c.UserContext(), limit)
	if err != nil {
		return respondError(c, h.logger, "Could not compute recommendations", err)
	}
	return c.JSON(recs)
}

// HandleGetFeatured returns well-stocked products for the storefront.
func (h *RecommendationHandler) HandleGetFeatured(c *fiber.Ctx) error {
	limit, err := queryInt(c, "limit", defaultFeaturedLimit)
	if err != nil {
		return respondError(c, h.logger, "Invalid limit", err)
	}
	products, err := h.service.GetFeaturedProducts(c.UserContext(), limit)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve featured products", err)
	}
	return c.JSON(products)
}

// HandleGetLowStock returns products that need restocking, most urgent first.
func (h *RecommendationHandler) HandleGetLowStock(c *fiber.Ctx) error {
	threshold, err := queryInt(c, "threshold", h.lowStockThreshold)
	if err != nil {
		return respondError(c, h.logger, "Invalid threshold", err)
	}
	products, err := h.service.GetLowStockProducts(c.UserContext(), threshold)
	if err != nil {
		return respondError(c, h.logger, "Could not retrieve low-stock products", err)
	}
	return c.JSON(products)
}
