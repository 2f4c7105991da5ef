package app

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/talkincode/shopcart/config"
	"github.com/talkincode/shopcart/internal/catalog"
	"github.com/talkincode/shopcart/internal/loyalty"
	"github.com/talkincode/shopcart/internal/pricing"
	"github.com/talkincode/shopcart/internal/promotion"
)

var ErrInvalidSetting = errors.New("invalid setting")

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// parseWeekday accepts full or three-letter English names in any case, or 0-6
// with Sunday as 0.
func parseWeekday(s string) (time.Weekday, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 6 {
		return time.Weekday(n), nil
	}
	for name, day := range weekdays {
		if v == name || (len(v) == 3 && strings.HasPrefix(name, v)) {
			return day, nil
		}
	}
	return time.Sunday, errors.Wrapf(ErrInvalidSetting, "weekday %q", s)
}

func rate(name string, v float64) (decimal.Decimal, error) {
	if v < 0 || v >= 1 {
		return decimal.Zero, errors.Wrapf(ErrInvalidSetting, "%s must be in [0, 1), got %v", name, v)
	}
	return decimal.NewFromFloat(v), nil
}

// validatePromotion requires strictly positive sale rates; a zero rate would
// otherwise fall back to the scheduler default.
func validatePromotion(cfg config.PromotionConfig) error {
	for name, v := range map[string]float64{"flash_rate": cfg.FlashRate, "suggest_rate": cfg.SuggestRate} {
		if v <= 0 || v >= 1 {
			return errors.Wrapf(ErrInvalidSetting, "%s must be in (0, 1), got %v", name, v)
		}
	}
	return nil
}

func pricingRules(cfg config.PricingConfig) (pricing.Rules, error) {
	day, err := parseWeekday(cfg.SpecialDay)
	if err != nil {
		return pricing.Rules{}, err
	}
	r := pricing.Rules{
		ItemDiscountThreshold: cfg.ItemDiscountThreshold,
		ItemDiscounts:         make(map[string]decimal.Decimal, len(cfg.ItemDiscounts)),
		BulkThreshold:         cfg.BulkThreshold,
		SpecialDay:            day,
	}
	for id, v := range cfg.ItemDiscounts {
		if r.ItemDiscounts[id], err = rate("item discount "+id, v); err != nil {
			return pricing.Rules{}, err
		}
	}
	if r.BulkRate, err = rate("bulk_rate", cfg.BulkRate); err != nil {
		return pricing.Rules{}, err
	}
	if r.SpecialDayRate, err = rate("special_day_rate", cfg.SpecialDayRate); err != nil {
		return pricing.Rules{}, err
	}
	return r, nil
}

// loyaltyRules shares the special weekday with pricing so the x2 multiplier
// and the special-day discount always fall on the same day.
func loyaltyRules(cfg config.LoyaltyConfig, day time.Weekday) loyalty.Rules {
	r := loyalty.Rules{
		PointsDivisor:      cfg.PointsDivisor,
		SpecialDay:         day,
		SpecialMultiplier:  cfg.SpecialMultiplier,
		KeyboardID:         cfg.KeyboardID,
		MouseID:            cfg.MouseID,
		MonitorArmID:       cfg.MonitorArmID,
		KeyboardMouseBonus: cfg.KeyboardMouseBonus,
		FullSetBonus:       cfg.FullSetBonus,
	}
	if r.PointsDivisor <= 0 {
		r.PointsDivisor = loyalty.DefaultRules().PointsDivisor
	}
	for _, t := range cfg.BulkTiers {
		r.BulkTiers = append(r.BulkTiers, loyalty.BulkTier{MinItems: t.MinItems, Points: t.Points})
	}
	sort.SliceStable(r.BulkTiers, func(i, j int) bool {
		return r.BulkTiers[i].MinItems > r.BulkTiers[j].MinItems
	})
	return r
}

func promotionConfig(cfg config.PromotionConfig) promotion.Config {
	return promotion.Config{
		FlashMaxDelay:   cfg.FlashMaxDelay,
		FlashInterval:   cfg.FlashInterval,
		FlashRate:       decimal.NewFromFloat(cfg.FlashRate),
		SuggestMaxDelay: cfg.SuggestMaxDelay,
		SuggestInterval: cfg.SuggestInterval,
		SuggestRate:     decimal.NewFromFloat(cfg.SuggestRate),
	}
}

func stockThresholds(cfg config.StockConfig) catalog.StockThresholds {
	t := catalog.DefaultStockThresholds()
	if cfg.WarningThreshold > 0 {
		t.Warning = cfg.WarningThreshold
	}
	if cfg.CriticalThreshold > 0 {
		t.Critical = cfg.CriticalThreshold
	}
	if cfg.ItemThreshold > 0 {
		t.Item = cfg.ItemThreshold
	}
	return t
}
