package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for prediction calls.
const (
	PredictionOK        = "ok"
	PredictionFailed    = "failed"
	PredictionTimeout   = "timeout"
	PredictionRecovered = "panic"
)

// Metrics holds the inventory service's Prometheus collectors.
type Metrics struct {
	ordersPlaced      prometheus.Counter
	ordersRejected    *prometheus.CounterVec
	unitsSold         prometheus.Counter
	orderDuration     prometheus.Histogram
	predictions       *prometheus.CounterVec
	predictionLatency prometheus.Histogram
}

// New registers the collectors on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the collectors on registerer. Collectors that are
// already registered are reused, so building Metrics twice is safe.
func NewWithRegisterer(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &Metrics{
		ordersPlaced: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_orders_placed_total",
			Help: "Total number of orders committed",
		})),
		ordersRejected: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_orders_rejected_total",
			Help: "Total number of order placements that failed, by reason",
		}, []string{"reason"})),
		unitsSold: register(registerer, prometheus.NewCounter(prometheus.CounterOpts{
			Name: "inventory_units_sold_total",
			Help: "Total number of stock units decremented by orders",
		})),
		orderDuration: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "inventory_order_placement_duration_seconds",
			Help:    "Duration of order placement in seconds",
			Buckets: prometheus.DefBuckets,
		})),
		predictions: register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventory_predictions_total",
			Help: "Total number of demand prediction calls, by outcome",
		}, []string{"outcome"})),
		predictionLatency: register(registerer, prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "inventory_prediction_duration_seconds",
			Help:    "Duration of demand prediction calls in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		})),
	}
}

func register[T prometheus.Collector](registerer prometheus.Registerer, collector T) T {
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(T)
			if !ok {
				panic(fmt.Sprintf("collector already registered with unexpected type %T", alreadyRegistered.ExistingCollector))
			}
			return existing
		}
		panic(fmt.Sprintf("register collector: %v", err))
	}
	return collector
}

// RecordOrderPlaced counts a committed order and its quantity.
func (m *Metrics) RecordOrderPlaced(quantity int, duration time.Duration) {
	if m == nil {
		return
	}
	m.ordersPlaced.Inc()
	m.unitsSold.Add(float64(quantity))
	m.orderDuration.Observe(duration.Seconds())
}

// RecordOrderRejected counts a failed order placement.
func (m *Metrics) RecordOrderRejected(reason string) {
	if m == nil {
		return
	}
	m.ordersRejected.WithLabelValues(reason).Inc()
}

// RecordPrediction counts one prediction call and its latency.
func (m *Metrics) RecordPrediction(outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(outcome).Inc()
	m.predictionLatency.Observe(duration.Seconds())
}
