package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// Prices go over the wire as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the inventory.
//
// Price and StockLevel are pointers because legacy rows may carry NULLs;
// ranking code treats a missing value as "not present" rather than zero.
type Product struct {
	ID          uint             `json:"productId" gorm:"primaryKey;column:product_id"`
	Name        string           `json:"name" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Category    string           `json:"category,omitempty" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	Price       *decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null;default:0"`
	StockLevel  *int             `json:"stockLevel" gorm:"column:stock_level;default:0" validate:"omitempty,gte=0"`
	Description string           `json:"description,omitempty" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	ImageURL    string           `json:"imageUrl,omitempty" gorm:"column:image_url;type:varchar(255)" validate:"omitempty,max=255"`
	SkuID       *string          `json:"skuId,omitempty" gorm:"column:sku_id;type:varchar(50);uniqueIndex" validate:"omitempty,max=50"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt   `json:"-" gorm:"index"`
}

// Stock returns the stock level and whether it is present.
func (p Product) Stock() (int, bool) {
	if p.StockLevel == nil {
		return 0, false
	}
	return *p.StockLevel, true
}

// PriceValue returns the price and whether it is present.
func (p Product) PriceValue() (decimal.Decimal, bool) {
	if p.Price == nil {
		return decimal.Zero, false
	}
	return *p.Price, true
}

// Sku returns the SKU or an empty string.
func (p Product) Sku() string {
	if p.SkuID == nil {
		return ""
	}
	return *p.SkuID
}

// IntPtr and DecimalPtr are small helpers for building products in seeds and tests.
func IntPtr(v int) *int { return &v }

func DecimalPtr(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}

func StringPtr(v string) *string { return &v }
