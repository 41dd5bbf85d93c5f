package pricing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PromoTable resolves a promo code to a discount percentage (10 means 10%).
type PromoTable interface {
	Rate(code string) (decimal.Decimal, bool)
}

type StaticPromoTable map[string]decimal.Decimal

func NewStaticPromoTable(codes map[string]decimal.Decimal) StaticPromoTable {
	t := make(StaticPromoTable, len(codes))
	for code, pct := range codes {
		t[normalizeCode(code)] = pct
	}
	return t
}

func (t StaticPromoTable) Rate(code string) (decimal.Decimal, bool) {
	pct, ok := t[normalizeCode(code)]
	return pct, ok
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
