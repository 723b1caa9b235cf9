package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"inventory/internal/models"
	"inventory/internal/prediction"
)

// PredictionHandler exposes the demand model for a single product.
type PredictionHandler struct {
	predictor prediction.Predictor
	logger    *zap.Logger
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(predictor prediction.Predictor, logger *zap.Logger) *PredictionHandler {
	return &PredictionHandler{
		predictor: predictor,
		logger:    logger,
	}
}

// RegisterRoutes registers the prediction route behind authRequired.
func (h *PredictionHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/predict/:productId", authRequired, h.HandlePredict)
}

// HandlePredict asks the model about one product. Unlike the rankings, a failure here is reported.
func (h *PredictionHandler) HandlePredict(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return respondError(c, h.logger, "Invalid product ID", err)
	}

	in := prediction.Input{ProductID: productID}
	if raw := c.Query("currentStock"); raw != "" {
		stock, err := queryInt(c, "currentStock", 0)
		if err != nil {
			return respondError(c, h.logger, "Invalid currentStock", err)
		}
		in.CurrentStock = &stock
	}
	if raw := c.Query("price"); raw != "" {
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return respondError(c, h.logger, "Invalid price", models.InvalidArgument("price must be a number, got '%s'", raw))
		}
		in.Price = &price
	}

	demand, err := h.predictor.PredictDemand(c.UserContext(), in)
	if err != nil {
		if !errors.Is(err, models.ErrPredictionUnavailable) {
			err = fmt.Errorf("%w: %v", models.ErrPredictionUnavailable, err)
		}
		return respondError(c, h.logger, "Prediction failed", err)
	}
	return c.JSON(fiber.Map{
		"productId":       productID,
		"predictedDemand": demand,
	})
}
