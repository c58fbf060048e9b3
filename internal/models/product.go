package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a manufactured item together with its bill of materials
type Product struct {
	ID         string      `json:"id" db:"id"`
	Name       string      `json:"name" db:"name"`
	Materials  []Material  `json:"materials"`
	WorkOrders []WorkOrder `json:"workOrders"`
	CreatedAt  time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time   `json:"updatedAt" db:"updated_at"`
}

// ProductSummary is the product projection embedded in work orders
type ProductSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// MaterialInput is one bill-of-materials line supplied with a product
type MaterialInput struct {
	Material string          `json:"material" binding:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Unit     string          `json:"unit"`
	Price    decimal.Decimal `json:"price"`
}

// MaterialInputs accepts either a plain array of materials or the nested
// {"create": [...]} form sent by the dashboard.
type MaterialInputs []MaterialInput

func (m *MaterialInputs) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*m = nil
		return nil
	}

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var nested struct {
			Create []MaterialInput `json:"create"`
		}
		if err := json.Unmarshal(trimmed, &nested); err != nil {
			return err
		}
		*m = nested.Create
		return nil
	}

	var plain []MaterialInput
	if err := json.Unmarshal(trimmed, &plain); err != nil {
		return err
	}
	*m = plain
	return nil
}

// ProductRequest creates or updates a product. A nil Materials leaves the
// existing bill of materials untouched on update.
type ProductRequest struct {
	Name      string         `json:"name" binding:"required"`
	Materials MaterialInputs `json:"materials"`
}
