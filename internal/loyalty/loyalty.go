// Package loyalty computes the bonus points earned by a cart.
package loyalty

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/talkincode/shopcart/internal/domain"
)

// ProductLookup resolves cart lines to catalog products.
type ProductLookup interface {
	FindByID(id string) (domain.Product, bool)
}

// BulkTier grants Points once the cart holds at least MinItems units.
type BulkTier struct {
	MinItems int
	Points   int64
}

type Rules struct {
	PointsDivisor      int64
	SpecialDay         time.Weekday
	SpecialMultiplier  int64
	KeyboardID         string
	MouseID            string
	MonitorArmID       string
	KeyboardMouseBonus int64
	FullSetBonus       int64
	// BulkTiers is ordered from the highest threshold down; only the first match counts.
	BulkTiers []BulkTier
}

func DefaultRules() Rules {
	return Rules{
		PointsDivisor:      1000,
		SpecialDay:         time.Tuesday,
		SpecialMultiplier:  2,
		KeyboardID:         domain.ProductKeyboard,
		MouseID:            domain.ProductMouse,
		MonitorArmID:       domain.ProductMonitorArm,
		KeyboardMouseBonus: 50,
		FullSetBonus:       100,
		BulkTiers: []BulkTier{
			{MinItems: 30, Points: 100},
			{MinItems: 20, Points: 50},
			{MinItems: 10, Points: 20},
		},
	}
}

// ComputeBonusPoints evaluates base points, the special-day multiplier, combo
// bonuses and the bulk tier, in that order. Detail follows the same order.
func ComputeBonusPoints(lines []domain.CartLine, products ProductLookup, itemCount int, total decimal.Decimal, rules Rules, now time.Time) domain.BonusPoints {
	out := domain.BonusPoints{Detail: []string{}}
	if len(lines) == 0 {
		return out
	}

	base := int64(0)
	if rules.PointsDivisor > 0 {
		base = total.Div(decimal.NewFromInt(rules.PointsDivisor)).Floor().IntPart()
	}
	if base > 0 {
		out.Points = base
		out.Detail = append(out.Detail, fmt.Sprintf("Base: %dp", base))
		if now.Weekday() == rules.SpecialDay {
			out.Points = base * rules.SpecialMultiplier
			out.Detail = append(out.Detail, fmt.Sprintf("%s x%d", rules.SpecialDay, rules.SpecialMultiplier))
		}
	}

	present := make(map[string]bool, len(lines))
	for _, line := range lines {
		if p, ok := products.FindByID(line.ProductID); ok {
			present[p.ID] = true
		}
	}
	hasSet := present[rules.KeyboardID] && present[rules.MouseID]
	if hasSet {
		out.Points += rules.KeyboardMouseBonus
		out.Detail = append(out.Detail, fmt.Sprintf("Keyboard+mouse set +%dp", rules.KeyboardMouseBonus))
	}
	if hasSet && present[rules.MonitorArmID] {
		out.Points += rules.FullSetBonus
		out.Detail = append(out.Detail, fmt.Sprintf("Full set +%dp", rules.FullSetBonus))
	}

	for _, tier := range rules.BulkTiers {
		if itemCount >= tier.MinItems {
			out.Points += tier.Points
			out.Detail = append(out.Detail, fmt.Sprintf("Bulk purchase (%d+) +%dp", tier.MinItems, tier.Points))
			break
		}
	}
	return out
}
