package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"inventory/internal/models"
)

// statusFor maps a service error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		return fiber.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return fiber.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, models.ErrInsufficientStock), errors.Is(err, models.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, models.ErrPredictionUnavailable):
		return fiber.StatusBadGateway
	case errors.Is(err, models.ErrStorage):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as a JSON body with the matching status.
func respondError(c *fiber.Ctx, logger *zap.Logger, message string, err error) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	status := statusFor(err)
	body := fiber.Map{
		"message": message,
		"error":   err.Error(),
	}

	var stockErr *models.InsufficientStockError
	if errors.As(err, &stockErr) {
		body["productId"] = stockErr.ProductID
		body["productName"] = stockErr.ProductName
		body["available"] = stockErr.Available
		body["requested"] = stockErr.Requested
	}
	if status == fiber.StatusServiceUnavailable {
		body["retryable"] = true
	}

	if status >= fiber.StatusInternalServerError {
		logger.Error(message, zap.String("path", c.Path()), zap.Int("status", status), zap.Error(err))
	} else {
		logger.Debug(message, zap.String("path", c.Path()), zap.Int("status", status), zap.Error(err))
	}
	return c.Status(status).JSON(body)
}

func badBody(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Invalid request body",
		"error":   err.Error(),
	})
}

func validationFailed(c *fiber.Ctx, err error) error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return badBody(c, err)
	}
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// paramID reads a positive numeric route parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, models.InvalidArgument("%s must be a positive integer, got '%s'", name, raw)
	}
	return uint(id), nil
}

// queryInt reads an optional integer query parameter.
func queryInt(c *fiber.Ctx, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, models.InvalidArgument("%s must be an integer, got '%s'", name, raw)
	}
	return n, nil
}
