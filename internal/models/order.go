package models

import "time"

// OrderStatusPlaced is the only state an order has; orders are append-only.
const OrderStatusPlaced = "placed"

// Order is a single purchase of one product by one user.
// It is never mutated after creation.
type Order struct {
	ID        uint      `json:"id" gorm:"primaryKey;column:order_id"`
	UserID    uint      `json:"userId" gorm:"not null;index"`
	User      *User     `json:"-" gorm:"foreignKey:UserID"`
	ProductID uint      `json:"productId" gorm:"not null;index"`
	Product   *Product  `json:"-" gorm:"foreignKey:ProductID;references:ID"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null"`
}

// ProductName returns the resolved product name, if the product was loaded.
func (o Order) ProductName() string {
	if o.Product == nil {
		return ""
	}
	return o.Product.Name
}

// OrderView is the read shape returned to API callers.
type OrderView struct {
	ID          uint      `json:"id"`
	UserID      uint      `json:"userId"`
	ProductID   uint      `json:"productId"`
	ProductName string    `json:"productName"`
	Quantity    int       `json:"quantity"`
	Timestamp   time.Time `json:"timestamp"`
	Status      string    `json:"status"`
}

// View converts an order to its API representation.
func (o Order) View() OrderView {
	return OrderView{
		ID:          o.ID,
		UserID:      o.UserID,
		ProductID:   o.ProductID,
		ProductName: o.ProductName(),
		Quantity:    o.Quantity,
		Timestamp:   o.Timestamp,
		Status:      OrderStatusPlaced,
	}
}
