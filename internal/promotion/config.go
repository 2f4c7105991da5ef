package promotion

import (
	"time"

	"github.com/shopspring/decimal"
)

type Config struct {
	FlashMaxDelay   time.Duration
	FlashInterval   time.Duration
	FlashRate       decimal.Decimal
	SuggestMaxDelay time.Duration
	SuggestInterval time.Duration
	SuggestRate     decimal.Decimal
}

func DefaultConfig() Config {
	return Config{
		FlashMaxDelay:   10 * time.Second,
		FlashInterval:   30 * time.Second,
		FlashRate:       decimal.RequireFromString("0.20"),
		SuggestMaxDelay: 20 * time.Second,
		SuggestInterval: 60 * time.Second,
		SuggestRate:     decimal.RequireFromString("0.05"),
	}
}

// withDefaults fills zero intervals and rates from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.FlashInterval <= 0 {
		c.FlashInterval = d.FlashInterval
	}
	if c.SuggestInterval <= 0 {
		c.SuggestInterval = d.SuggestInterval
	}
	if c.FlashMaxDelay < 0 {
		c.FlashMaxDelay = 0
	}
	if c.SuggestMaxDelay < 0 {
		c.SuggestMaxDelay = 0
	}
	if c.FlashRate.IsZero() {
		c.FlashRate = d.FlashRate
	}
	if c.SuggestRate.IsZero() {
		c.SuggestRate = d.SuggestRate
	}
	return c
}
