package prediction

import (
	"context"

	"go.uber.org/zap"
)

// FallbackPredictor answers with the heuristic whenever the wrapped predictor fails.
// A context that is already done is still reported as an error.
type FallbackPredictor struct {
	next   Predictor
	logger *zap.Logger
}

// WithFallback wraps next with the heuristic fallback.
func WithFallback(next Predictor, logger *zap.Logger) *FallbackPredictor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FallbackPredictor{next: next, logger: logger}
}

func (p *FallbackPredictor) PredictDemand(ctx context.Context, in Input) (float64, error) {
	v, err := p.next.PredictDemand(ctx, in)
	if err == nil {
		return v, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return 0, err
	}
	p.logger.Warn("Demand model failed, using heuristic",
		zap.Uint("product_id", in.ProductID),
		zap.Error(err))
	return Heuristic(in), nil
}
