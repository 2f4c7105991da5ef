package app

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talkincode/shopcart/internal/cart"
	"github.com/talkincode/shopcart/internal/catalog"
	"github.com/talkincode/shopcart/internal/domain"
	"github.com/talkincode/shopcart/internal/loyalty"
	"github.com/talkincode/shopcart/internal/pricing"
	"github.com/talkincode/shopcart/pkg/common"
)

var (
	monday  = time.Date(2024, 10, 14, 12, 0, 0, 0, time.UTC)
	tuesday = time.Date(2024, 10, 15, 12, 0, 0, 0, time.UTC)
)

func seedProducts() []domain.Product {
	out := make([]domain.Product, 0, len(defaultProducts))
	for _, r := range defaultProducts {
		out = append(out, domain.Product{ID: r.ID, Name: r.Name, BasePrice: r.Price, Stock: r.Stock})
	}
	return out
}

func newTestSession(t *testing.T, now time.Time) *Session {
	t.Helper()
	cat, err := catalog.New(seedProducts())
	require.NoError(t, err)
	return NewSession(cat, WithSessionClock(common.FixedClock(now)))
}

func addN(t *testing.T, s *Session, id string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		require.True(t, s.AddItem(id).Success)
	}
}

func TestSessionEmptySummary(t *testing.T) {
	s := newTestSession(t, monday)
	sum := s.Summary()

	assert.Empty(t, sum.Lines)
	assert.Equal(t, int64(0), sum.Pricing.Subtotal)
	assert.True(t, sum.Pricing.Total.IsZero())
	assert.True(t, sum.Pricing.DiscountRate.IsZero())
	assert.Equal(t, int64(0), sum.Points.Points)
	assert.Empty(t, sum.Points.Detail)
	assert.Equal(t, 110, sum.TotalStock)
	assert.Equal(t, catalog.StockNormal, sum.StockLevel)
	assert.NotEmpty(t, s.ID)
}

func TestSessionItemDiscount(t *testing.T) {
	s := newTestSession(t, monday)
	addN(t, s, domain.ProductKeyboard, 12)

	sum := s.Summary()
	p, _ := s.Catalog().FindByID(domain.ProductKeyboard)
	assert.Equal(t, 38, p.Stock)
	assert.Equal(t, int64(120000), sum.Pricing.Subtotal)
	assert.Equal(t, int64(108000), sum.Pricing.RoundedTotal())
	assert.Equal(t, int64(12000), sum.Pricing.RoundedSaved())
	require.Len(t, sum.Pricing.ItemDiscounts, 1)
	assert.Equal(t, domain.ProductKeyboard, sum.Pricing.ItemDiscounts[0].ProductID)
	assert.False(t, sum.Pricing.IsBulkDiscountApplied)

	assert.Equal(t, int64(128), sum.Points.Points)
	assert.Equal(t, []string{"Base: 108p", "Bulk purchase (10+) +20p"}, sum.Points.Detail)
	assert.Equal(t, domain.ProductKeyboard, sum.LastSelectedID)
}

func TestSessionBulkOnSpecialDay(t *testing.T) {
	s := newTestSession(t, tuesday)
	addN(t, s, domain.ProductKeyboard, 30)

	sum := s.Summary()
	assert.Equal(t, int64(300000), sum.Pricing.Subtotal)
	assert.Equal(t, int64(202500), sum.Pricing.RoundedTotal())
	assert.Equal(t, "0.325", sum.Pricing.DiscountRate.String())
	assert.True(t, sum.Pricing.IsBulkDiscountApplied)
	assert.True(t, sum.Pricing.IsSpecialDay)

	assert.Equal(t, int64(202*2+100), sum.Points.Points)
	assert.Equal(t, []string{"Base: 202p", "Tuesday x2", "Bulk purchase (30+) +100p"}, sum.Points.Detail)
}

func TestSessionUpdateQuantity(t *testing.T) {
	s := newTestSession(t, monday)
	addN(t, s, domain.ProductSpeaker, 2)

	r := s.UpdateQuantity(domain.ProductSpeaker, 11)
	assert.False(t, r.Success)
	assert.Equal(t, cart.ReasonInsufficientStock, r.Reason)
	assert.Equal(t, 2, s.Summary().Lines[0].Quantity)

	r = s.UpdateQuantity(domain.ProductSpeaker, 10)
	require.True(t, r.Success)
	assert.Equal(t, 10, s.Summary().Pricing.ItemCount)

	r = s.UpdateQuantity(domain.ProductSpeaker, 0)
	require.True(t, r.Success)
	assert.Empty(t, s.Summary().Lines)
	p, _ := s.Catalog().FindByID(domain.ProductSpeaker)
	assert.Equal(t, 10, p.Stock)

	r = s.UpdateQuantity("nope", 1)
	assert.Equal(t, cart.ReasonProductNotFound, r.Reason)
}

func TestSessionChangeAndRemove(t *testing.T) {
	s := newTestSession(t, monday)
	addN(t, s, domain.ProductMouse, 1)

	require.True(t, s.ChangeQuantity(domain.ProductMouse, 2).Success)
	assert.Equal(t, 3, s.Cart().Quantity(domain.ProductMouse))
	require.True(t, s.ChangeQuantity(domain.ProductMouse, -1).Success)
	assert.Equal(t, 2, s.Cart().Quantity(domain.ProductMouse))

	require.True(t, s.RemoveItem(domain.ProductMouse).Success)
	r := s.RemoveItem(domain.ProductMouse)
	assert.Equal(t, cart.ReasonItemNotInCart, r.Reason)
	assert.Equal(t, cart.MsgItemNotInCart, r.Message)
	assert.Equal(t, 110, s.Summary().TotalStock)
}

func TestSessionClear(t *testing.T) {
	s := newTestSession(t, monday)
	addN(t, s, domain.ProductKeyboard, 5)
	addN(t, s, domain.ProductMonitorArm, 5)

	s.Clear()
	sum := s.Summary()
	assert.Empty(t, sum.Lines)
	assert.Empty(t, sum.LastSelectedID)
	assert.Equal(t, 110, sum.TotalStock)
}

func TestSessionPublishesChanges(t *testing.T) {
	s := newTestSession(t, monday)

	var mu sync.Mutex
	var summaries []Summary
	var catalogs int
	require.NoError(t, s.Subscribe(TopicCartChanged, func(sum Summary) {
		mu.Lock()
		summaries = append(summaries, sum)
		mu.Unlock()
	}))
	require.NoError(t, s.Subscribe(TopicCatalogChanged, func(products []domain.Product) {
		mu.Lock()
		catalogs++
		mu.Unlock()
	}))

	s.AddItem(domain.ProductKeyboard)
	s.AddItem(domain.ProductPouch)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, summaries, 1, "failed operations publish nothing")
	assert.Equal(t, 1, catalogs)
	assert.Equal(t, int64(10000), summaries[0].Pricing.Subtotal)
}

func TestSessionOnPromotion(t *testing.T) {
	s := newTestSession(t, monday)
	addN(t, s, domain.ProductMouse, 1)

	var got []domain.PromotionEvent
	require.NoError(t, s.Subscribe(TopicSuggestedSale, func(ev domain.PromotionEvent) {
		got = append(got, ev)
	}))

	s.Locker().Lock()
	p, err := s.Catalog().StartSuggestedSale(domain.ProductMouse, decimal.RequireFromString("0.05"))
	s.Locker().Unlock()
	require.NoError(t, err)
	assert.Equal(t, int64(20000), s.Summary().Pricing.Subtotal)

	s.OnPromotion(domain.PromotionEvent{Kind: domain.PromotionSuggested, ProductID: p.ID, Price: p.CurrentPrice})
	require.Len(t, got, 1)
	assert.Equal(t, int64(19000), got[0].Price)
	assert.Equal(t, int64(19000), s.Summary().Pricing.Subtotal)
}

func TestSessionSetRules(t *testing.T) {
	s := newTestSession(t, monday)
	addN(t, s, domain.ProductKeyboard, 12)

	rules := pricing.DefaultRules()
	rules.SpecialDay = time.Monday
	s.SetRules(rules, loyalty.DefaultRules())

	sum := s.Summary()
	assert.True(t, sum.Pricing.IsSpecialDay)
	assert.Equal(t, int64(97200), sum.Pricing.RoundedTotal())
}
