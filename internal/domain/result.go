package domain

import "github.com/shopspring/decimal"

// ItemDiscount records a per-product bulk discount that was applied.
type ItemDiscount struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Percent     decimal.Decimal `json:"percent"`
}

// CalculationResult is recomputed after every cart or catalog mutation.
type CalculationResult struct {
	Subtotal              int64           `json:"subtotal"`
	ItemCount             int             `json:"item_count"`
	Total                 decimal.Decimal `json:"total"`
	DiscountRate          decimal.Decimal `json:"discount_rate"`
	SavedAmount           decimal.Decimal `json:"saved_amount"`
	ItemDiscounts         []ItemDiscount  `json:"item_discounts"`
	IsSpecialDay          bool            `json:"is_special_day"`
	IsBulkDiscountApplied bool            `json:"is_bulk_discount_applied"`
}

// RoundedTotal is the total as displayed: rounded to the nearest currency unit.
func (r CalculationResult) RoundedTotal() int64 {
	return r.Total.Round(0).IntPart()
}

// RoundedSaved is the saved amount as displayed.
func (r CalculationResult) RoundedSaved() int64 {
	return r.SavedAmount.Round(0).IntPart()
}

// BonusPoints is the loyalty reward for the current cart.
type BonusPoints struct {
	Points int64    `json:"points"`
	Detail []string `json:"detail"`
}
