// Package promotion runs the randomized flash-sale and suggested-sale timers
// that reprice catalog products while a session is open.
package promotion

import (
	"math/rand"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/talkincode/shopcart/internal/domain"
	"github.com/talkincode/shopcart/pkg/common"
	"go.uber.org/zap"
)

var ErrAlreadyStarted = errors.New("promotion scheduler already started")

// Catalog is the mutation surface the scheduler needs.
type Catalog interface {
	Products() []domain.Product
	StartFlashSale(id string, rate, suggestedRate decimal.Decimal) (domain.Product, error)
	StartSuggestedSale(id string, rate decimal.Decimal) (domain.Product, error)
}

// CartView exposes what the suggestion timer reads from the cart.
type CartView interface {
	IsEmpty() bool
	LastSelectedID() string
}

// Rand is satisfied by *math/rand.Rand.
type Rand interface {
	Int63n(n int64) int64
	Intn(n int) int
}

// Handler receives every promotion that was applied.
type Handler func(domain.PromotionEvent)

type Scheduler struct {
	cfg     Config
	catalog Catalog
	cart    CartView
	locker  sync.Locker
	clock   common.Clock
	handler Handler

	rndMu sync.Mutex
	rnd   Rand

	mu   sync.Mutex
	cron *cron.Cron
}

type Option func(*Scheduler)

// WithRand injects the random source used for delays and flash-sale picks.
func WithRand(r Rand) Option {
	return func(s *Scheduler) { s.rnd = r }
}

// WithClock sets the clock stamped on emitted events.
func WithClock(c common.Clock) Option {
	return func(s *Scheduler) { s.clock = c }
}

// WithLocker makes every tick hold l while it mutates the catalog, so ticks
// never interleave with cart operations guarded by the same lock.
func WithLocker(l sync.Locker) Option {
	return func(s *Scheduler) { s.locker = l }
}

// WithHandler registers the callback invoked after a promotion is applied.
// It runs without the tick lock held.
func WithHandler(h Handler) Option {
	return func(s *Scheduler) { s.handler = h }
}

func New(catalog Catalog, cart CartView, cfg Config, opts ...Option) *Scheduler {
	s := &Scheduler{
		cfg:     cfg.withDefaults(),
		catalog: catalog,
		cart:    cart,
		locker:  &sync.Mutex{},
		clock:   common.SystemClock,
		rnd:     rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // promotions need no crypto randomness
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start arms both timers. The flash timer fires first after a random delay in
// [0, FlashMaxDelay) plus one FlashInterval, then every FlashInterval; the
// suggestion timer works the same way with its own settings.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return ErrAlreadyStarted
	}

	logger := cronLogger{}
	c := cron.New(cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)), cron.WithLogger(logger))

	now := time.Now()
	flashDelay := s.randomDelay(s.cfg.FlashMaxDelay)
	suggestDelay := s.randomDelay(s.cfg.SuggestMaxDelay)

	c.Schedule(delayedEvery{first: now.Add(flashDelay + s.cfg.FlashInterval), every: s.cfg.FlashInterval},
		cron.FuncJob(func() { s.TriggerFlashSale() }))
	c.Schedule(delayedEvery{first: now.Add(suggestDelay + s.cfg.SuggestInterval), every: s.cfg.SuggestInterval},
		cron.FuncJob(func() { s.TriggerSuggestedSale() }))
	c.Start()
	s.cron = c

	zap.L().Info("promotion scheduler started",
		zap.Duration("flash_delay", flashDelay),
		zap.Duration("flash_interval", s.cfg.FlashInterval),
		zap.Duration("suggest_delay", suggestDelay),
		zap.Duration("suggest_interval", s.cfg.SuggestInterval))
	return nil
}

// Stop cancels both timers and waits for a tick already in flight, so no
// promotion is applied after Stop returns. Safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	zap.L().Info("promotion scheduler stopped")
}

func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}

// TriggerFlashSale runs one flash-sale tick immediately.
func (s *Scheduler) TriggerFlashSale() (domain.PromotionEvent, bool) {
	s.locker.Lock()
	ev, ok := s.flashTick()
	s.locker.Unlock()
	if ok {
		s.emit(ev)
	}
	return ev, ok
}

// TriggerSuggestedSale runs one suggestion tick immediately.
func (s *Scheduler) TriggerSuggestedSale() (domain.PromotionEvent, bool) {
	s.locker.Lock()
	ev, ok := s.suggestTick()
	s.locker.Unlock()
	if ok {
		s.emit(ev)
	}
	return ev, ok
}

func (s *Scheduler) flashTick() (domain.PromotionEvent, bool) {
	var eligible []domain.Product
	for _, p := range s.catalog.Products() {
		if p.Stock > 0 && !p.OnFlashSale {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) == 0 {
		zap.L().Debug("flash sale skipped, no eligible product")
		return domain.PromotionEvent{}, false
	}

	pick := eligible[s.intn(len(eligible))]
	p, err := s.catalog.StartFlashSale(pick.ID, s.cfg.FlashRate, s.cfg.SuggestRate)
	if err != nil {
		zap.L().Warn("flash sale failed", zap.String("product", pick.ID), zap.Error(err))
		return domain.PromotionEvent{}, false
	}
	zap.L().Info("flash sale started",
		zap.String("product", p.ID),
		zap.Int64("base_price", p.BasePrice),
		zap.Int64("price", p.CurrentPrice))
	return s.newEvent(domain.PromotionFlash, p), true
}

func (s *Scheduler) suggestTick() (domain.PromotionEvent, bool) {
	if s.cart.IsEmpty() {
		return domain.PromotionEvent{}, false
	}
	last := s.cart.LastSelectedID()
	if last == "" {
		return domain.PromotionEvent{}, false
	}

	for _, candidate := range s.catalog.Products() {
		if candidate.ID == last || candidate.Stock <= 0 || candidate.OnSuggestedSale {
			continue
		}
		p, err := s.catalog.StartSuggestedSale(candidate.ID, s.cfg.SuggestRate)
		if err != nil {
			zap.L().Warn("suggested sale failed", zap.String("product", candidate.ID), zap.Error(err))
			return domain.PromotionEvent{}, false
		}
		zap.L().Info("suggested sale started",
			zap.String("product", p.ID),
			zap.String("last_selected", last),
			zap.Int64("price", p.CurrentPrice))
		return s.newEvent(domain.PromotionSuggested, p), true
	}
	zap.L().Debug("suggested sale skipped, no eligible product", zap.String("last_selected", last))
	return domain.PromotionEvent{}, false
}

func (s *Scheduler) newEvent(kind domain.PromotionKind, p domain.Product) domain.PromotionEvent {
	return domain.PromotionEvent{
		ID:          common.UUIDint64(),
		Kind:        kind,
		ProductID:   p.ID,
		ProductName: p.Name,
		Price:       p.CurrentPrice,
		At:          s.clock.Now(),
	}
}

func (s *Scheduler) emit(ev domain.PromotionEvent) {
	if s.handler == nil {
		return
	}
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error("promotion handler panic: ", err)
		}
	}()
	s.handler(ev)
}

func (s *Scheduler) randomDelay(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return time.Duration(s.rnd.Int63n(int64(limit)))
}

func (s *Scheduler) intn(n int) int {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	return s.rnd.Intn(n)
}
