package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

const SourceStorefront = "storefront"

type Order struct {
	ID          uuid.UUID
	TenantID    int64
	ContactID   int64
	OrderNumber string
	Items       []Item

	Subtotal  decimal.Decimal
	Discount  decimal.Decimal
	Tax       decimal.Decimal
	Shipping  decimal.Decimal
	Total     decimal.Decimal
	PromoCode *string
	Currency  string

	Status        Status
	PaymentStatus PaymentStatus
	PaymentMethod string
	PaymentURL    *string

	Source string
	Notes  *string

	StatusUpdatedAt time.Time
	CreatedAt       time.Time
}

// Item is a line frozen at order creation. Later product edits never reach it.
type Item struct {
	ProductID   int64
	ProductName string
	SKU         *string
	UnitPrice   decimal.Decimal
	Quantity    int
	LineTotal   decimal.Decimal
}

// StatusChange is one audit record. OldStatus is empty for the initial state.
type StatusChange struct {
	OrderID   uuid.UUID
	OldStatus Status
	NewStatus Status
	Actor     string
	ChangedAt time.Time
}

type ListFilter struct {
	Status *Status
	Limit  int
	Page   int
}

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Normalize clamps pagination to sane bounds.
func (f ListFilter) Normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Page <= 0 {
		f.Page = 1
	}
	return f
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

// BulkResult reports the outcome for one order of a bulk status update.
type BulkResult struct {
	OrderID uuid.UUID
	Order   *Order
	Err     error
}
