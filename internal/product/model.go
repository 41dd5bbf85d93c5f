package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive     Status = "active"
	StatusInactive   Status = "inactive"
	StatusOutOfStock Status = "out_of_stock"
)

type Product struct {
	ID            int64           `json:"id"`
	TenantID      int64           `json:"tenant_id"`
	Name          string          `json:"name"`
	SKU           *string         `json:"sku,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	Status        Status          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// Sellable reports whether the product may be put on an order at all.
// Stock availability is checked separately by the ledger.
func (p *Product) Sellable() bool {
	return p.Status != StatusInactive
}

// StatusAfterStockChange is the status a product ends up in once its stock
// becomes newStock. Inactive products are never touched.
func StatusAfterStockChange(current Status, newStock int) Status {
	switch {
	case current == StatusActive && newStock == 0:
		return StatusOutOfStock
	case current == StatusOutOfStock && newStock > 0:
		return StatusActive
	default:
		return current
	}
}
