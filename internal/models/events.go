package models

import "time"

// OrderPlacedEvent is published once an order has been committed.
type OrderPlacedEvent struct {
	EventID        string    `json:"eventId"`
	OrderID        uint      `json:"orderId"`
	UserID         uint      `json:"userId"`
	ProductID      uint      `json:"productId"`
	ProductName    string    `json:"productName"`
	Quantity       int       `json:"quantity"`
	RemainingStock int       `json:"remainingStock"`
	LowStock       bool      `json:"lowStock"`
	Timestamp      time.Time `json:"timestamp"`
}
