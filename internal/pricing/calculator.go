package pricing

import (
	"github.com/shopspring/decimal"
)

const moneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// Line is one priced cart entry.
type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Totals holds every monetary component of an order, each rounded to cents.
// Total is derived from the rounded components, so
// Total == Subtotal - Discount + Tax + Shipping holds exactly.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Tax      decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal

	// PromoCode is the code that produced Discount, empty when none applied.
	PromoCode       string
	DiscountPercent decimal.Decimal
}

type Options struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

func DefaultOptions() Options {
	return Options{
		TaxRate:               decimal.RequireFromString("0.08"),
		FreeShippingThreshold: decimal.NewFromInt(75),
		FlatShippingFee:       decimal.RequireFromString("9.99"),
	}
}

type Calculator struct {
	opts   Options
	promos PromoTable
}

func NewCalculator(opts Options, promos PromoTable) *Calculator {
	if promos == nil {
		promos = StaticPromoTable{}
	}
	return &Calculator{opts: opts, promos: promos}
}

// LineTotal is unitPrice * quantity rounded to cents.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return RoundMoney(unitPrice.Mul(decimal.NewFromInt(int64(quantity))))
}

func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(moneyPlaces)
}

// Calculate never fails: an unknown or empty promo code means no discount.
func (c *Calculator) Calculate(lines []Line, promoCode string) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(LineTotal(l.UnitPrice, l.Quantity))
	}

	t := Totals{
		Subtotal:        subtotal,
		Discount:        decimal.Zero,
		DiscountPercent: decimal.Zero,
	}

	if pct, ok := c.promos.Rate(promoCode); ok && promoCode != "" {
		t.Discount = RoundMoney(subtotal.Mul(pct).Div(hundred))
		if t.Discount.GreaterThan(subtotal) {
			t.Discount = subtotal
		}
		t.PromoCode = normalizeCode(promoCode)
		t.DiscountPercent = pct
	}

	t.Tax = RoundMoney(subtotal.Sub(t.Discount).Mul(c.opts.TaxRate))

	t.Shipping = RoundMoney(c.opts.FlatShippingFee)
	if subtotal.GreaterThanOrEqual(c.opts.FreeShippingThreshold) {
		t.Shipping = decimal.Zero
	}

	t.Total = t.Subtotal.Sub(t.Discount).Add(t.Tax).Add(t.Shipping)
	return t
}
