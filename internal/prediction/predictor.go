// Package prediction talks to the out-of-process demand model.
//
// Implementations are remote calls: they take time, can time out and can
// fail. Callers decide what a failure is worth; see WithFallback for the
// collaborator-side heuristic.
package prediction

import (
	"context"
	"math"

	"github.com/shopspring/decimal"

	"inventory/internal/models"
)

// Input carries the product attributes the demand model consumes.
type Input struct {
	ProductID    uint
	CurrentStock *int
	Price        *decimal.Decimal
	Category     string
	SkuID        string
}

// InputFor builds a prediction input from a product.
func InputFor(p models.Product) Input {
	return Input{
		ProductID:    p.ID,
		CurrentStock: p.StockLevel,
		Price:        p.Price,
		Category:     p.Category,
		SkuID:        p.Sku(),
	}
}

// Predictor returns a non-negative predicted demand for one product.
type Predictor interface {
	PredictDemand(ctx context.Context, in Input) (float64, error)
}

// PredictorFunc adapts a function to the Predictor interface.
type PredictorFunc func(ctx context.Context, in Input) (float64, error)

func (f PredictorFunc) PredictDemand(ctx context.Context, in Input) (float64, error) {
	return f(ctx, in)
}

// Values substituted when the model is asked about a product with missing attributes.
const (
	DefaultStock = 50
	DefaultPrice = 100.0
)

func stockOrDefault(in Input) int {
	if in.CurrentStock == nil {
		return DefaultStock
	}
	return *in.CurrentStock
}

func priceOrDefault(in Input) float64 {
	if in.Price == nil {
		return DefaultPrice
	}
	return in.Price.InexactFloat64()
}

// Heuristic estimates demand without the model: more stock and a lower price mean more demand.
func Heuristic(in Input) float64 {
	base := float64(stockOrDefault(in)) * 0.3
	priceFactor := math.Max(0.1, 500.0/math.Max(priceOrDefault(in), 1.0))
	return math.Max(0, base*priceFactor)
}

// HeuristicPredictor always answers with Heuristic.
type HeuristicPredictor struct{}

func (HeuristicPredictor) PredictDemand(_ context.Context, in Input) (float64, error) {
	return Heuristic(in), nil
}
