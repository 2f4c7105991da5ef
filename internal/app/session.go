package app

import (
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/talkincode/shopcart/internal/cart"
	"github.com/talkincode/shopcart/internal/catalog"
	"github.com/talkincode/shopcart/internal/domain"
	"github.com/talkincode/shopcart/internal/loyalty"
	"github.com/talkincode/shopcart/internal/pricing"
	"github.com/talkincode/shopcart/pkg/common"
	"github.com/talkincode/shopcart/pkg/metrics"
	"go.uber.org/zap"
)

// Bus topics. Handler signatures:
//
//	TopicCartChanged      func(Summary)
//	TopicCatalogChanged   func([]domain.Product)
//	TopicFlashSale        func(domain.PromotionEvent)
//	TopicSuggestedSale    func(domain.PromotionEvent)
const (
	TopicCartChanged    = "cart.changed"
	TopicCatalogChanged = "catalog.changed"
	TopicFlashSale      = "promotion.flash"
	TopicSuggestedSale  = "promotion.suggested"
)

// Summary is everything the view layer renders after a change.
type Summary struct {
	Lines          []domain.CartLine        `json:"lines"`
	Pricing        domain.CalculationResult `json:"pricing"`
	Points         domain.BonusPoints       `json:"points"`
	LastSelectedID string                   `json:"last_selected_id,omitempty"`
	TotalStock     int                      `json:"total_stock"`
	StockLevel     catalog.StockLevel       `json:"stock_level"`
	StockNotices   []string                 `json:"stock_notices"`
}

// Session serializes all cart operations, promotion ticks and recomputation
// behind one mutex so every change runs to completion before the next one is
// observed.
type Session struct {
	ID string

	mu           sync.Mutex
	catalog      *catalog.Catalog
	cart         *cart.Cart
	clock        common.Clock
	pricingRules pricing.Rules
	loyaltyRules loyalty.Rules
	summary      Summary
	metrics      *metrics.ShopMetrics

	bus EventBus.Bus
}

type SessionOption func(*Session)

func WithSessionClock(c common.Clock) SessionOption {
	return func(s *Session) { s.clock = c }
}

func WithPricingRules(r pricing.Rules) SessionOption {
	return func(s *Session) { s.pricingRules = r }
}

func WithLoyaltyRules(r loyalty.Rules) SessionOption {
	return func(s *Session) { s.loyaltyRules = r }
}

func WithMetrics(m *metrics.ShopMetrics) SessionOption {
	return func(s *Session) { s.metrics = m }
}

func NewSession(cat *catalog.Catalog, opts ...SessionOption) *Session {
	s := &Session{
		ID:           common.UUID(),
		catalog:      cat,
		cart:         cart.New(cat),
		clock:        common.SystemClock,
		pricingRules: pricing.DefaultRules(),
		loyaltyRules: loyalty.DefaultRules(),
		bus:          EventBus.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.summary = s.recompute()
	return s
}

func (s *Session) AddItem(productID string) cart.Result {
	return s.mutate("add", productID, func() cart.Result {
		return s.cart.AddItem(productID)
	})
}

func (s *Session) UpdateQuantity(productID string, quantity int) cart.Result {
	return s.mutate("update", productID, func() cart.Result {
		return s.cart.UpdateQuantity(productID, quantity)
	})
}

func (s *Session) ChangeQuantity(productID string, delta int) cart.Result {
	return s.mutate("change", productID, func() cart.Result {
		return s.cart.ChangeQuantity(productID, delta)
	})
}

func (s *Session) RemoveItem(productID string) cart.Result {
	return s.mutate("remove", productID, func() cart.Result {
		return s.cart.RemoveItem(productID)
	})
}

// Clear empties the cart and returns all reserved stock.
func (s *Session) Clear() {
	s.mutate("clear", "", func() cart.Result {
		s.cart.Clear()
		return cart.Result{Success: true}
	})
}

// Summary returns the result of the latest recomputation.
func (s *Session) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summary
}

// Refresh recomputes prices against the live catalog and republishes.
func (s *Session) Refresh() Summary {
	s.mu.Lock()
	s.summary = s.recompute()
	sum := s.summary
	s.mu.Unlock()
	s.publishChanged(sum)
	return sum
}

// SetRules swaps the discount and loyalty rules and recomputes.
func (s *Session) SetRules(p pricing.Rules, l loyalty.Rules) {
	s.mu.Lock()
	s.pricingRules = p
	s.loyaltyRules = l
	s.mu.Unlock()
	s.Refresh()
}

// OnPromotion is the scheduler callback: it publishes the notification and
// then refreshes catalog and cart views.
func (s *Session) OnPromotion(ev domain.PromotionEvent) {
	topic := TopicFlashSale
	if ev.Kind == domain.PromotionSuggested {
		topic = TopicSuggestedSale
	}
	s.metrics.ObservePromotion(string(ev.Kind))
	s.bus.Publish(topic, ev)
	s.Refresh()
}

// Subscribe registers fn on topic; fn must match the topic's signature.
func (s *Session) Subscribe(topic string, fn interface{}) error {
	if err := s.bus.Subscribe(topic, fn); err != nil {
		return errors.Wrapf(err, "subscribe %s", topic)
	}
	return nil
}

func (s *Session) Unsubscribe(topic string, fn interface{}) error {
	return s.bus.Unsubscribe(topic, fn)
}

// Locker is the lock promotion ticks must hold while mutating the catalog.
func (s *Session) Locker() sync.Locker {
	return &s.mu
}

func (s *Session) Cart() *cart.Cart {
	return s.cart
}

func (s *Session) Catalog() *catalog.Catalog {
	return s.catalog
}

func (s *Session) mutate(op, productID string, fn func() cart.Result) cart.Result {
	s.mu.Lock()
	r := fn()
	if r.Success {
		s.summary = s.recompute()
	}
	sum := s.summary
	s.mu.Unlock()

	s.metrics.ObserveCartOp(op, r.Success)
	if !r.Success {
		zap.L().Debug("cart operation rejected",
			zap.String("session", s.ID),
			zap.String("op", op),
			zap.String("product", productID),
			zap.String("reason", r.Reason.String()))
		return r
	}
	s.publishChanged(sum)
	return r
}

func (s *Session) recompute() Summary {
	start := time.Now()
	now := s.clock.Now()
	lines := s.cart.Lines()
	res := pricing.ComputeCart(lines, s.catalog, s.pricingRules, now)
	points := loyalty.ComputeBonusPoints(lines, s.catalog, res.ItemCount, res.Total, s.loyaltyRules, now)
	sum := Summary{
		Lines:          lines,
		Pricing:        res,
		Points:         points,
		LastSelectedID: s.cart.LastSelectedID(),
		TotalStock:     s.catalog.TotalStock(),
		StockLevel:     s.catalog.StockLevel(),
		StockNotices:   s.catalog.StockNotices(),
	}
	s.metrics.ObserveRecompute(time.Since(start), res.Total.InexactFloat64(), sum.TotalStock)
	return sum
}

func (s *Session) publishChanged(sum Summary) {
	s.bus.Publish(TopicCatalogChanged, s.catalog.Products())
	s.bus.Publish(TopicCartChanged, sum)
}
