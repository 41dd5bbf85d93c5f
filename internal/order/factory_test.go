package order

import (
	"testing"
	"time"

	"shopdesk-be/internal/pricing"
	"shopdesk-be/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder(t *testing.T) {
	now := time.Date(2026, 5, 17, 12, 0, 0, 0, time.UTC)
	sku := "MUG-01"

	totals := pricing.Totals{
		Subtotal:  decimal.NewFromInt(100),
		Discount:  decimal.NewFromInt(10),
		Tax:       decimal.RequireFromString("7.2"),
		Shipping:  decimal.Zero,
		Total:     decimal.RequireFromString("97.2"),
		PromoCode: "SAVE10",
	}

	o := NewOrder(Draft{
		TenantID: 3,
		Items: []ItemInput{
			{ProductID: 1, ProductName: "Mug", SKU: &sku, UnitPrice: decimal.NewFromInt(25), Quantity: 2},
			{ProductID: 2, ProductName: "Tea", UnitPrice: decimal.RequireFromString("12.5"), Quantity: 4},
		},
		Totals:        totals,
		Currency:      "USD",
		PaymentMethod: "cod",
	}, utils.GenerateOrderNumber, now)

	require.Len(t, o.Items, 2)
	assert.True(t, o.Items[0].LineTotal.Equal(decimal.NewFromInt(50)))
	assert.True(t, o.Items[1].LineTotal.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, &sku, o.Items[0].SKU)

	assert.Equal(t, int64(3), o.TenantID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, PaymentStatusPending, o.PaymentStatus)
	assert.Equal(t, SourceStorefront, o.Source)
	assert.Regexp(t, `^ORD-20260517-[A-Z0-9]{6}$`, o.OrderNumber)
	assert.NotEqual(t, uuid.Nil, o.ID)
	require.NotNil(t, o.PromoCode)
	assert.Equal(t, "SAVE10", *o.PromoCode)
	assert.True(t, o.Total.Equal(decimal.RequireFromString("97.2")))
	assert.Equal(t, now, o.CreatedAt)

	initial := InitialStatusChange(o, "checkout")
	assert.Equal(t, Status(""), initial.OldStatus)
	assert.Equal(t, StatusPending, initial.NewStatus)
	assert.Equal(t, "checkout", initial.Actor)
	assert.Equal(t, o.ID, initial.OrderID)
}

func TestNewOrder_KeepsSourceAndSkipsEmptyPromo(t *testing.T) {
	o := NewOrder(Draft{
		Source: "whatsapp",
		Items:  []ItemInput{{ProductID: 1, UnitPrice: decimal.NewFromInt(1), Quantity: 1}},
	}, func(time.Time) string { return "ORD-FIXED" }, time.Now())

	assert.Equal(t, "whatsapp", o.Source)
	assert.Nil(t, o.PromoCode)
	assert.Equal(t, "ORD-FIXED", o.OrderNumber)
}

func TestNewItem_LineTotalMatchesStoredUnitPrice(t *testing.T) {
	for _, raw := range []string{"10.005", "0.333", "19.99", "7"} {
		item := NewItem(ItemInput{ProductID: 1, UnitPrice: decimal.RequireFromString(raw), Quantity: 3})

		assert.True(t, item.UnitPrice.Equal(item.UnitPrice.Round(2)), "unit price %s", raw)
		assert.True(t, item.LineTotal.Equal(item.UnitPrice.Mul(decimal.NewFromInt(3))), "line total for %s", raw)
	}
}

func TestListFilter_Normalize(t *testing.T) {
	f := ListFilter{}.Normalize()
	assert.Equal(t, 20, f.Limit)
	assert.Equal(t, 1, f.Page)
	assert.Equal(t, 0, f.Offset())

	f = ListFilter{Limit: 500, Page: 3}.Normalize()
	assert.Equal(t, 100, f.Limit)
	assert.Equal(t, 200, f.Offset())
}
