package prediction

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"inventory/internal/models"
)

// HTTPPredictor calls the demand prediction service's POST /predict endpoint.
type HTTPPredictor struct {
	baseURL string
	// used when the context carries no deadline
	timeout time.Duration
	logger  *zap.Logger
}

type predictRequest struct {
	Features map[string]interface{} `json:"features"`
}

type predictResponse struct {
	Predictions []float64 `json:"predictions"`
}

// NewHTTPPredictor creates an HTTPPredictor for the service at baseURL.
func NewHTTPPredictor(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPPredictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPPredictor{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger,
	}
}

func (p *HTTPPredictor) PredictDemand(ctx context.Context, in Input) (float64, error) {
	timeout := p.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if timeout <= 0 {
		return 0, fmt.Errorf("%w: product %d: %v", models.ErrPredictionUnavailable, in.ProductID, context.DeadlineExceeded)
	}

	body := predictRequest{Features: map[string]interface{}{
		"product_id":    in.ProductID,
		"current_stock": stockOrDefault(in),
		"price":         priceOrDefault(in),
		"category":      in.Category,
		"sku_id":        in.SkuID,
	}}

	var resp predictResponse
	agent := fiber.Post(p.baseURL + "/predict").JSON(body).Timeout(timeout)
	code, raw, errs := agent.Struct(&resp)
	if len(errs) > 0 {
		return 0, fmt.Errorf("%w: product %d: %v", models.ErrPredictionUnavailable, in.ProductID, errs[0])
	}
	if code < 200 || code >= 300 {
		p.logger.Debug("Prediction service returned an error",
			zap.Uint("product_id", in.ProductID),
			zap.Int("status", code),
			zap.ByteString("body", raw))
		return 0, fmt.Errorf("%w: product %d: status %d", models.ErrPredictionUnavailable, in.ProductID, code)
	}
	if len(resp.Predictions) == 0 {
		return 0, fmt.Errorf("%w: product %d: empty predictions", models.ErrPredictionUnavailable, in.ProductID)
	}

	v := resp.Predictions[0]
	if v < 0 {
		v = 0
	}
	return v, nil
}
