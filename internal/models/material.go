package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material is a single bill-of-materials line attached to a product
type Material struct {
	ID        string          `json:"id" db:"id"`
	Material  string          `json:"material" db:"material"`
	Quantity  decimal.Decimal `json:"quantity" db:"quantity"`
	Unit      string          `json:"unit" db:"unit"`
	Price     decimal.Decimal `json:"price" db:"price"`
	ProductID string          `json:"product_id" db:"product_id"`
	CreatedAt time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time       `json:"updatedAt" db:"updated_at"`
}

// LineTotal is quantity times unit price
func (m Material) LineTotal() decimal.Decimal {
	return m.Quantity.Mul(m.Price)
}

// MaterialRequest creates or updates a material
type MaterialRequest struct {
	Material  string          `json:"material" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit" binding:"required"`
	Price     decimal.Decimal `json:"price"`
	ProductID string          `json:"product_id"`
}
