package app

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/shopcart/config"
	"github.com/talkincode/shopcart/internal/domain"
)

func testConfig() *config.AppConfig {
	cfg := config.DefaultAppConfig()
	cfg.System.FixedDate = "2024-10-15"
	cfg.Promotion.Enabled = false
	return cfg
}

func newTestApp(t *testing.T, cfg *config.AppConfig) *Application {
	t.Helper()
	a := NewApplication(cfg)
	require.NoError(t, a.Init(cfg))
	t.Cleanup(a.Release)
	return a
}

func TestInitSeedsDefaultCatalog(t *testing.T) {
	a := newTestApp(t, testConfig())

	products := a.Session().Catalog().Products()
	require.Len(t, products, 5)
	assert.Equal(t, domain.ProductKeyboard, products[0].ID)
	assert.Equal(t, 110, a.Session().Catalog().TotalStock())
	assert.Equal(t, time.Tuesday, a.Clock().Now().Weekday())
	assert.NotNil(t, a.Scheduler())
	assert.False(t, a.Scheduler().Running())
}

func TestInitUsesConfiguredCatalog(t *testing.T) {
	cfg := testConfig()
	cfg.Catalog = []config.ProductConfig{
		{ID: "a", Name: "Cable", Price: 3000, Stock: 4},
		{ID: "b", Name: "Hub", Price: 40000, Stock: 2},
	}
	a := newTestApp(t, cfg)

	assert.Len(t, a.Session().Catalog().Products(), 2)
	sum := a.Session().Summary()
	assert.Equal(t, 6, sum.TotalStock)
	assert.Len(t, sum.StockNotices, 2)
}

func TestInitRejectsBadRules(t *testing.T) {
	cfg := testConfig()
	cfg.Pricing.SpecialDay = "someday"
	err := NewApplication(cfg).Init(cfg)
	assert.True(t, errors.Is(err, ErrInvalidSetting))

	cfg = testConfig()
	cfg.Catalog = []config.ProductConfig{{ID: "a", Price: 1}, {ID: "a", Price: 2}}
	assert.Error(t, NewApplication(cfg).Init(cfg))
}

func TestStartBackgroundJobs(t *testing.T) {
	cfg := testConfig()
	cfg.Promotion.Enabled = true
	a := newTestApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	a.StartBackgroundJobs(ctx)
	assert.True(t, a.Scheduler().Running())

	cancel()
	assert.Eventually(t, func() bool { return !a.Scheduler().Running() }, time.Second, 5*time.Millisecond)
}

func TestSaveSettings(t *testing.T) {
	a := newTestApp(t, testConfig())
	s := a.Session()
	for i := 0; i < 12; i++ {
		require.True(t, s.AddItem(domain.ProductKeyboard).Success)
	}
	require.True(t, s.Summary().Pricing.IsSpecialDay)
	assert.Equal(t, int64(97200), s.Summary().Pricing.RoundedTotal())

	require.NoError(t, a.SaveSettings(map[string]interface{}{
		"pricing": map[string]interface{}{
			"special_day":    "mon",
			"item_discounts": map[string]interface{}{"p1": "0.5"},
		},
		"loyalty": map[string]interface{}{"points_divisor": 100},
	}))

	sum := s.Summary()
	assert.False(t, sum.Pricing.IsSpecialDay)
	assert.Equal(t, int64(60000), sum.Pricing.RoundedTotal())
	assert.Equal(t, int64(600+20), sum.Points.Points)
	assert.Equal(t, "mon", a.Config().Pricing.SpecialDay)
	assert.Len(t, a.Config().Pricing.ItemDiscounts, 1)
}

func TestSaveSettingsRejectsInvalid(t *testing.T) {
	a := newTestApp(t, testConfig())
	before := *a.Config()

	err := a.SaveSettings(map[string]interface{}{
		"pricing": map[string]interface{}{"bulk_rate": 1.5},
	})
	assert.True(t, errors.Is(err, ErrInvalidSetting))

	err = a.SaveSettings(map[string]interface{}{"unknown": true})
	assert.True(t, errors.Is(err, ErrInvalidSetting))

	assert.Equal(t, before.Pricing.BulkRate, a.Config().Pricing.BulkRate)
}

func TestSaveSettingsRebuildsScheduler(t *testing.T) {
	a := newTestApp(t, testConfig())
	old := a.Scheduler()

	require.NoError(t, a.SaveSettings(map[string]interface{}{
		"promotion": map[string]interface{}{"flash_interval": "45s"},
	}))
	assert.Equal(t, 45*time.Second, a.Config().Promotion.FlashInterval)
	assert.NotSame(t, old, a.Scheduler())
	assert.False(t, a.Scheduler().Running())
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{
		"tuesday": time.Tuesday,
		"Tue":     time.Tuesday,
		" SUN ":   time.Sunday,
		"6":       time.Saturday,
	} {
		got, err := parseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseWeekday("7")
	assert.Error(t, err)
	_, err = parseWeekday("tu")
	assert.Error(t, err)
}

func TestSessionMetrics(t *testing.T) {
	a := newTestApp(t, testConfig())
	a.Session().AddItem(domain.ProductKeyboard)
	a.Session().AddItem(domain.ProductPouch)

	rec := httptest.NewRecorder()
	a.Metrics().Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `shopcart_cart_operations_total{op="add",result="ok"} 1`)
	assert.Contains(t, body, `shopcart_cart_operations_total{op="add",result="rejected"} 1`)
	assert.Contains(t, body, `shopcart_catalog_stock_units 109`)
}

func TestSaveSettingsTogglesPromotions(t *testing.T) {
	a := newTestApp(t, testConfig())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a.StartBackgroundJobs(ctx)
	require.False(t, a.Scheduler().Running())

	require.NoError(t, a.SaveSettings(map[string]interface{}{
		"promotion": map[string]interface{}{"enabled": true},
	}))
	assert.True(t, a.Config().Promotion.Enabled)
	assert.True(t, a.Scheduler().Running())

	require.NoError(t, a.SaveSettings(map[string]interface{}{
		"promotion": map[string]interface{}{"enabled": "false"},
	}))
	assert.False(t, a.Scheduler().Running())

	require.NoError(t, a.SaveSettings(map[string]interface{}{
		"promotion": map[string]interface{}{"enabled": true},
	}))
	cancel()
	assert.Eventually(t, func() bool { return !a.Scheduler().Running() }, time.Second, 5*time.Millisecond)

	require.NoError(t, a.SaveSettings(map[string]interface{}{
		"promotion": map[string]interface{}{"flash_interval": "40s"},
	}))
	assert.False(t, a.Scheduler().Running(), "no restart after the job context ends")
}

func TestPromotionRatesMustBePositive(t *testing.T) {
	a := newTestApp(t, testConfig())
	err := a.SaveSettings(map[string]interface{}{
		"promotion": map[string]interface{}{"flash_rate": 0},
	})
	assert.True(t, errors.Is(err, ErrInvalidSetting))
	assert.Equal(t, 0.20, a.Config().Promotion.FlashRate)

	ev, ok := a.Scheduler().TriggerFlashSale()
	require.True(t, ok)
	p, _ := a.Session().Catalog().FindByID(ev.ProductID)
	assert.Equal(t, p.BasePrice*8/10, ev.Price)

	cfg := testConfig()
	cfg.Promotion.SuggestRate = 0
	err = NewApplication(cfg).Init(cfg)
	assert.True(t, errors.Is(err, ErrInvalidSetting))
}
