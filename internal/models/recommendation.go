package models

// ProductRecommendation pairs a product with its predicted demand.
// It is built per request and never persisted.
type ProductRecommendation struct {
	Product         Product `json:"product"`
	PredictedDemand float64 `json:"predictedDemand"`
}
