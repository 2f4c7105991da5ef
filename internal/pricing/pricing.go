// Package pricing computes cart totals and discounts. Everything here is a pure
// function of its inputs; the caller supplies the clock reading.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/talkincode/shopcart/internal/domain"
)

// ProductLookup resolves cart lines to their live product state.
type ProductLookup interface {
	FindByID(id string) (domain.Product, bool)
}

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
)

// ComputeCart prices lines against the catalog. The stages run in a fixed
// order: line totals with per-item bulk rates, whole-cart bulk override, then
// the special-day discount on whatever total is left.
func ComputeCart(lines []domain.CartLine, products ProductLookup, rules Rules, now time.Time) domain.CalculationResult {
	res := domain.CalculationResult{
		Total:         decimal.Zero,
		DiscountRate:  decimal.Zero,
		SavedAmount:   decimal.Zero,
		ItemDiscounts: []domain.ItemDiscount{},
		IsSpecialDay:  rules.IsSpecialDay(now),
	}

	total := decimal.Zero
	for _, line := range lines {
		p, ok := products.FindByID(line.ProductID)
		if !ok {
			continue
		}
		lineTotal := p.CurrentPrice * int64(line.Quantity)
		res.Subtotal += lineTotal
		res.ItemCount += line.Quantity

		lineAmount := decimal.NewFromInt(lineTotal)
		if line.Quantity >= rules.ItemDiscountThreshold {
			rate := rules.ItemRate(p.ID)
			if rate.IsPositive() {
				res.ItemDiscounts = append(res.ItemDiscounts, domain.ItemDiscount{
					ProductID:   p.ID,
					ProductName: p.Name,
					Percent:     rate.Mul(hundred),
				})
				lineAmount = lineAmount.Mul(one.Sub(rate))
			}
		}
		total = total.Add(lineAmount)
	}

	subtotal := decimal.NewFromInt(res.Subtotal)
	if res.ItemCount >= rules.BulkThreshold {
		total = subtotal.Mul(one.Sub(rules.BulkRate))
		res.DiscountRate = rules.BulkRate
		res.IsBulkDiscountApplied = true
	} else {
		res.DiscountRate = rateOf(subtotal, total)
	}

	if res.IsSpecialDay && total.IsPositive() {
		total = total.Mul(one.Sub(rules.SpecialDayRate))
		res.DiscountRate = rateOf(subtotal, total)
	}

	res.Total = total
	res.SavedAmount = subtotal.Sub(total)
	return res
}

// rateOf is 1 − total/subtotal, defined as zero for an empty subtotal.
func rateOf(subtotal, total decimal.Decimal) decimal.Decimal {
	if subtotal.IsZero() {
		return decimal.Zero
	}
	return one.Sub(total.Div(subtotal))
}
