package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rules holds every threshold and rate used by ComputeCart.
type Rules struct {
	ItemDiscountThreshold int
	ItemDiscounts         map[string]decimal.Decimal
	BulkThreshold         int
	BulkRate              decimal.Decimal
	SpecialDay            time.Weekday
	SpecialDayRate        decimal.Decimal
}

// DefaultRules returns the store's standard discount table.
func DefaultRules() Rules {
	return Rules{
		ItemDiscountThreshold: 10,
		ItemDiscounts: map[string]decimal.Decimal{
			"p1": decimal.RequireFromString("0.10"),
			"p2": decimal.RequireFromString("0.15"),
			"p3": decimal.RequireFromString("0.20"),
			"p4": decimal.RequireFromString("0.05"),
			"p5": decimal.RequireFromString("0.25"),
		},
		BulkThreshold:  30,
		BulkRate:       decimal.RequireFromString("0.25"),
		SpecialDay:     time.Tuesday,
		SpecialDayRate: decimal.RequireFromString("0.10"),
	}
}

// ItemRate returns the per-product bulk rate; zero means no discount.
func (r Rules) ItemRate(productID string) decimal.Decimal {
	rate, ok := r.ItemDiscounts[productID]
	if !ok {
		return decimal.Zero
	}
	return rate
}

// IsSpecialDay reports whether now falls on the discount weekday.
func (r Rules) IsSpecialDay(now time.Time) bool {
	return now.Weekday() == r.SpecialDay
}
