package order

import (
	"time"

	"shopdesk-be/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemInput struct {
	ProductID   int64
	ProductName string
	SKU         *string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// NewItem freezes a line. The unit price is held in cents, as stored, and
// LineTotal is computed from it here, once.
func NewItem(in ItemInput) Item {
	unit := pricing.RoundMoney(in.UnitPrice)
	return Item{
		ProductID:   in.ProductID,
		ProductName: in.ProductName,
		SKU:         in.SKU,
		UnitPrice:   unit,
		Quantity:    in.Quantity,
		LineTotal:   pricing.LineTotal(unit, in.Quantity),
	}
}

type Draft struct {
	TenantID      int64
	Items         []ItemInput
	Totals        pricing.Totals
	Currency      string
	PaymentMethod string
	Source        string
	Notes         *string
}

// NewOrder builds a pending order that is not yet persisted. The order
// number is provisional: the repository regenerates it on collision.
func NewOrder(d Draft, numberFn func(time.Time) string, now time.Time) *Order {
	items := make([]Item, 0, len(d.Items))
	for _, in := range d.Items {
		items = append(items, NewItem(in))
	}

	source := d.Source
	if source == "" {
		source = SourceStorefront
	}

	var promo *string
	if d.Totals.PromoCode != "" {
		code := d.Totals.PromoCode
		promo = &code
	}

	return &Order{
		ID:              uuid.New(),
		TenantID:        d.TenantID,
		OrderNumber:     numberFn(now),
		Items:           items,
		Subtotal:        d.Totals.Subtotal,
		Discount:        d.Totals.Discount,
		Tax:             d.Totals.Tax,
		Shipping:        d.Totals.Shipping,
		Total:           d.Totals.Total,
		PromoCode:       promo,
		Currency:        d.Currency,
		Status:          StatusPending,
		PaymentStatus:   PaymentStatusPending,
		PaymentMethod:   d.PaymentMethod,
		Source:          source,
		Notes:           d.Notes,
		StatusUpdatedAt: now,
		CreatedAt:       now,
	}
}

// InitialStatusChange is the audit record written with a new order.
func InitialStatusChange(o *Order, actor string) StatusChange {
	return StatusChange{
		OrderID:   o.ID,
		NewStatus: o.Status,
		Actor:     actor,
		ChangedAt: o.CreatedAt,
	}
}
