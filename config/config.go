package config

import (
	"os"
	"path"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const DefaultConfigFile = "shopcart.yml"

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
	// FixedDate pins the clock used for day-of-week rules, e.g. "2024-10-15".
	FixedDate string `yaml:"fixed_date"`
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// PricingConfig discount thresholds and rates. Rates are fractions (0.25 = 25%).
type PricingConfig struct {
	ItemDiscountThreshold int                `yaml:"item_discount_threshold"`
	ItemDiscounts         map[string]float64 `yaml:"item_discounts"`
	BulkThreshold         int                `yaml:"bulk_threshold"`
	BulkRate              float64            `yaml:"bulk_rate"`
	SpecialDay            string             `yaml:"special_day"`
	SpecialDayRate        float64            `yaml:"special_day_rate"`
}

type BulkTierConfig struct {
	MinItems int   `yaml:"min_items"`
	Points   int64 `yaml:"points"`
}

// LoyaltyConfig bonus point rules
type LoyaltyConfig struct {
	PointsDivisor      int64            `yaml:"points_divisor"`
	SpecialMultiplier  int64            `yaml:"special_multiplier"`
	KeyboardID         string           `yaml:"keyboard_id"`
	MouseID            string           `yaml:"mouse_id"`
	MonitorArmID       string           `yaml:"monitor_arm_id"`
	KeyboardMouseBonus int64            `yaml:"keyboard_mouse_bonus"`
	FullSetBonus       int64            `yaml:"full_set_bonus"`
	BulkTiers          []BulkTierConfig `yaml:"bulk_tiers"`
}

// PromotionConfig timed promotion settings
type PromotionConfig struct {
	Enabled         bool          `yaml:"enabled"`
	FlashMaxDelay   time.Duration `yaml:"flash_max_delay"`
	FlashInterval   time.Duration `yaml:"flash_interval"`
	FlashRate       float64       `yaml:"flash_rate"`
	SuggestMaxDelay time.Duration `yaml:"suggest_max_delay"`
	SuggestInterval time.Duration `yaml:"suggest_interval"`
	SuggestRate     float64       `yaml:"suggest_rate"`
}

// StockConfig advisory stock warning thresholds
type StockConfig struct {
	WarningThreshold  int `yaml:"warning_threshold"`
	CriticalThreshold int `yaml:"critical_threshold"`
	ItemThreshold     int `yaml:"item_threshold"`
}

// MetricsConfig prometheus exposition; an empty Listen disables the endpoint
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// ProductConfig catalog seed record
type ProductConfig struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Price int64  `yaml:"price"`
	Stock int    `yaml:"stock"`
}

type AppConfig struct {
	System    SysConfig       `yaml:"system"`
	Logger    LogConfig       `yaml:"logger"`
	Pricing   PricingConfig   `yaml:"pricing"`
	Loyalty   LoyaltyConfig   `yaml:"loyalty"`
	Promotion PromotionConfig `yaml:"promotion"`
	Stock     StockConfig     `yaml:"stock"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Catalog   []ProductConfig `yaml:"catalog"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

// DefaultAppConfig returns the built-in configuration. Catalog is left empty
// so the application seeds its default products.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "shopcart",
			Location: "Asia/Seoul",
			Workdir:  "/var/shopcart",
		},
		Logger: LogConfig{
			Mode:     "development",
			Filename: "/var/shopcart/logs/shopcart.log",
		},
		Pricing: PricingConfig{
			ItemDiscountThreshold: 10,
			ItemDiscounts: map[string]float64{
				"p1": 0.10,
				"p2": 0.15,
				"p3": 0.20,
				"p4": 0.05,
				"p5": 0.25,
			},
			BulkThreshold:  30,
			BulkRate:       0.25,
			SpecialDay:     "tuesday",
			SpecialDayRate: 0.10,
		},
		Loyalty: LoyaltyConfig{
			PointsDivisor:      1000,
			SpecialMultiplier:  2,
			KeyboardID:         "p1",
			MouseID:            "p2",
			MonitorArmID:       "p3",
			KeyboardMouseBonus: 50,
			FullSetBonus:       100,
			BulkTiers: []BulkTierConfig{
				{MinItems: 30, Points: 100},
				{MinItems: 20, Points: 50},
				{MinItems: 10, Points: 20},
			},
		},
		Promotion: PromotionConfig{
			Enabled:         true,
			FlashMaxDelay:   10 * time.Second,
			FlashInterval:   30 * time.Second,
			FlashRate:       0.20,
			SuggestMaxDelay: 20 * time.Second,
			SuggestInterval: 60 * time.Second,
			SuggestRate:     0.05,
		},
		Stock: StockConfig{
			WarningThreshold:  50,
			CriticalThreshold: 30,
			ItemThreshold:     5,
		},
	}
}

// LoadConfig reads cfile over the defaults, falling back to /etc/shopcart.yml,
// then applies SHOPCART_* environment overrides. A missing file is not an error.
func LoadConfig(cfile string) (*AppConfig, error) {
	if cfile == "" {
		cfile = DefaultConfigFile
	}
	if !fileExists(cfile) {
		cfile = "/etc/shopcart.yml"
	}
	cfg := DefaultAppConfig()
	if fileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", cfile)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", cfile)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("SHOPCART_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvValue("SHOPCART_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("SHOPCART_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvValue("SHOPCART_FIXED_DATE", &cfg.System.FixedDate)

	setEnvValue("SHOPCART_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("SHOPCART_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("SHOPCART_LOGGER_FILENAME", &cfg.Logger.Filename)

	setEnvBoolValue("SHOPCART_PROMOTION_ENABLED", &cfg.Promotion.Enabled)
	setEnvDurationValue("SHOPCART_FLASH_INTERVAL", &cfg.Promotion.FlashInterval)
	setEnvDurationValue("SHOPCART_SUGGEST_INTERVAL", &cfg.Promotion.SuggestInterval)

	setEnvValue("SHOPCART_METRICS_LISTEN", &cfg.Metrics.Listen)

	setEnvIntValue("SHOPCART_BULK_THRESHOLD", &cfg.Pricing.BulkThreshold)
	setEnvValue("SHOPCART_SPECIAL_DAY", &cfg.Pricing.SpecialDay)
}

func setEnvValue(name string, val *string) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	if evalue := os.Getenv(name); evalue != "" {
		*val = cast.ToBool(evalue)
	}
}

func setEnvIntValue(name string, val *int) {
	if evalue := os.Getenv(name); evalue != "" {
		if v, err := cast.ToIntE(evalue); err == nil {
			*val = v
		}
	}
}

func setEnvDurationValue(name string, val *time.Duration) {
	if evalue := os.Getenv(name); evalue != "" {
		if v, err := cast.ToDurationE(evalue); err == nil {
			*val = v
		}
	}
}

func fileExists(file string) bool {
	info, err := os.Stat(file)
	return err == nil && !info.IsDir()
}
