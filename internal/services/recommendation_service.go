package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"inventory/internal/metrics"
	"inventory/internal/models"
	"inventory/internal/prediction"
	"inventory/internal/repositories"
)

// Featured products need strictly more than this many units in stock.
const featuredMinStock = 10

// RecommendationService ranks products for display.
// It holds no state between calls; every ranking reads the catalogue fresh.
type RecommendationService struct {
	productRepo repositories.ProductRepository
	predictor   prediction.Predictor
	timeout     time.Duration
	concurrency int
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// RecommendationOption configures a RecommendationService.
type RecommendationOption func(*RecommendationService)

// WithPredictionTimeout bounds every single prediction call.
func WithPredictionTimeout(d time.Duration) RecommendationOption {
	return func(s *RecommendationService) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithPredictionConcurrency bounds how many prediction calls run at once.
func WithPredictionConcurrency(n int) RecommendationOption {
	return func(s *RecommendationService) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithRecommendationMetrics records prediction outcomes and latency.
func WithRecommendationMetrics(m *metrics.Metrics) RecommendationOption {
	return func(s *RecommendationService) { s.metrics = m }
}

// NewRecommendationService creates a new RecommendationService.
func NewRecommendationService(productRepo repositories.ProductRepository, predictor prediction.Predictor, logger *zap.Logger, opts ...RecommendationOption) *RecommendationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &RecommendationService{
		productRepo: productRepo,
		predictor:   predictor,
		timeout:     3 * time.Second,
		concurrency: 4,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetRecommendations returns up to limit products ranked by predicted demand, highest first.
// Products whose prediction fails score zero; the ranking itself never fails on the predictor.
func (s *RecommendationService) GetRecommendations(ctx context.Context, limit int) ([]models.ProductRecommendation, error) {
	if limit < 0 {
		return nil, models.InvalidArgument("limit must not be negative, got %d", limit)
	}
	if limit == 0 {
		return []models.ProductRecommendation{}, nil
	}

	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	scores := make([]float64, len(products))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i := range products {
		g.Go(func() error {
			scores[i] = s.score(ctx, products[i])
			return nil
		})
	}
	_ = g.Wait()

	recs := make([]models.ProductRecommendation, len(products))
	for i := range products {
		recs[i] = models.ProductRecommendation{Product: products[i], PredictedDemand: scores[i]}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].PredictedDemand > recs[j].PredictedDemand
	})
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

type predictResult struct {
	demand   float64
	err      error
	panicked bool
}

// score asks the predictor about one product and reduces every failure to 0.
// The call runs on its own goroutine so a predictor that ignores ctx still
// cannot hold the ranking past the timeout.
func (s *RecommendationService) score(ctx context.Context, p models.Product) float64 {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	start := time.Now()

	ch := make(chan predictResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- predictResult{err: fmt.Errorf("%w: predictor panic: %v", models.ErrPredictionUnavailable, r), panicked: true}
			}
		}()
		demand, err := s.predictor.PredictDemand(ctx, prediction.InputFor(p))
		ch <- predictResult{demand: demand, err: err}
	}()

	var res predictResult
	select {
	case res = <-ch:
	case <-ctx.Done():
		res = predictResult{err: ctx.Err()}
	}

	switch {
	case res.panicked:
		s.metrics.RecordPrediction(metrics.PredictionRecovered, time.Since(start))
	case res.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		s.metrics.RecordPrediction(metrics.PredictionTimeout, time.Since(start))
	case res.err != nil:
		s.metrics.RecordPrediction(metrics.PredictionFailed, time.Since(start))
	default:
		s.metrics.RecordPrediction(metrics.PredictionOK, time.Since(start))
	}

	if res.err != nil {
		s.logger.Warn("Demand prediction unavailable, scoring zero",
			zap.Uint("product_id", p.ID),
			zap.Error(res.err))
		return 0
	}
	if math.IsNaN(res.demand) || math.IsInf(res.demand, 0) {
		s.logger.Warn("Demand prediction not a finite number, scoring zero",
			zap.Uint("product_id", p.ID),
			zap.Float64("demand", res.demand))
		return 0
	}
	if res.demand < 0 {
		return 0
	}
	return res.demand
}

// GetFeaturedProducts returns well-stocked, priced products: most stock first, cheaper first on ties.
func (s *RecommendationService) GetFeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	if limit < 0 {
		return nil, models.InvalidArgument("limit must not be negative, got %d", limit)
	}

	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	featured := make([]models.Product, 0, len(products))
	for _, p := range products {
		stock, ok := p.Stock()
		if !ok || stock <= featuredMinStock {
			continue
		}
		price, ok := p.PriceValue()
		if !ok || !price.IsPositive() {
			continue
		}
		featured = append(featured, p)
	}

	sort.SliceStable(featured, func(i, j int) bool {
		si, _ := featured[i].Stock()
		sj, _ := featured[j].Stock()
		if si != sj {
			return si > sj
		}
		return priceLess(featured[i].Price, featured[j].Price)
	})
	if len(featured) > limit {
		featured = featured[:limit]
	}
	return featured, nil
}

// priceLess orders prices ascending with a missing price after every present one.
func priceLess(a, b *decimal.Decimal) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.LessThan(*b)
	}
}

// GetLowStockProducts returns every product with a known stock level at or below threshold, lowest first.
func (s *RecommendationService) GetLowStockProducts(ctx context.Context, threshold int) ([]models.Product, error) {
	products, err := s.productRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	low := make([]models.Product, 0)
	for _, p := range products {
		if stock, ok := p.Stock(); ok && stock <= threshold {
			low = append(low, p)
		}
	}
	sort.SliceStable(low, func(i, j int) bool {
		si, _ := low[i].Stock()
		sj, _ := low[j].Stock()
		return si < sj
	})
	return low, nil
}
