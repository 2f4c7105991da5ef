// Package catalog owns product records and is the only place that mutates
// stock, promotional prices and sale flags.
package catalog

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/talkincode/shopcart/internal/domain"
)

// Catalog keeps products in load order; that order is the stable iteration
// order used by the suggestion promotion and by stock notices.
type Catalog struct {
	mu         sync.RWMutex
	products   []*domain.Product
	index      map[string]*domain.Product
	thresholds StockThresholds
}

type Option func(*Catalog)

// WithThresholds overrides the advisory stock thresholds.
func WithThresholds(t StockThresholds) Option {
	return func(c *Catalog) {
		c.thresholds = t
	}
}

// New builds a catalog from seed records. CurrentPrice starts at BasePrice and
// all sale flags start cleared, whatever the seed carries.
func New(seed []domain.Product, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		products:   make([]*domain.Product, 0, len(seed)),
		index:      make(map[string]*domain.Product, len(seed)),
		thresholds: DefaultStockThresholds(),
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, s := range seed {
		if s.ID == "" {
			return nil, errors.Wrap(ErrInvalidProduct, "empty product id")
		}
		if s.BasePrice < 0 || s.Stock < 0 {
			return nil, errors.Wrapf(ErrInvalidProduct, "product %s: negative price or stock", s.ID)
		}
		if _, ok := c.index[s.ID]; ok {
			return nil, errors.Wrapf(ErrDuplicateProduct, "product %s", s.ID)
		}
		p := &domain.Product{
			ID:           s.ID,
			Name:         s.Name,
			BasePrice:    s.BasePrice,
			CurrentPrice: s.BasePrice,
			Stock:        s.Stock,
		}
		c.products = append(c.products, p)
		c.index[p.ID] = p
	}
	return c, nil
}

// FindByID returns a copy of the product; ok is false for unknown ids.
func (c *Catalog) FindByID(id string) (domain.Product, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.index[id]
	if !ok {
		return domain.Product{}, false
	}
	return *p, true
}

// Products returns a snapshot of every product in catalog order.
func (c *Catalog) Products() []domain.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Product, len(c.products))
	for i, p := range c.products {
		out[i] = *p
	}
	return out
}

// Reserve takes amount units out of stock. On failure stock is untouched.
func (c *Catalog) Reserve(id string, amount int) error {
	if amount <= 0 {
		return errors.Wrapf(ErrInvalidAmount, "reserve %d of %s", amount, id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.index[id]
	if !ok {
		return errors.Wrapf(ErrProductNotFound, "product %s", id)
	}
	if amount > p.Stock {
		return errors.Wrapf(ErrInsufficientStock, "product %s: requested %d, available %d", id, amount, p.Stock)
	}
	p.Stock -= amount
	return nil
}

// Release puts amount units back into stock. Callers are trusted not to
// release more than they reserved.
func (c *Catalog) Release(id string, amount int) error {
	if amount <= 0 {
		return errors.Wrapf(ErrInvalidAmount, "release %d of %s", amount, id)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.index[id]
	if !ok {
		return errors.Wrapf(ErrProductNotFound, "product %s", id)
	}
	p.Stock += amount
	return nil
}

// StartFlashSale prices the product at BasePrice × (1 − rate). An active
// suggested sale stays stacked on top of the new price.
func (c *Catalog) StartFlashSale(id string, rate, suggestedRate decimal.Decimal) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.index[id]
	if !ok {
		return domain.Product{}, errors.Wrapf(ErrProductNotFound, "product %s", id)
	}
	if p.Stock <= 0 || p.OnFlashSale {
		return *p, errors.Wrapf(ErrNotEligible, "flash sale on %s", id)
	}
	price := discounted(p.BasePrice, rate)
	if p.OnSuggestedSale {
		price = discounted(price, suggestedRate)
	}
	p.CurrentPrice = price
	p.OnFlashSale = true
	return *p, nil
}

// StartSuggestedSale takes rate off the current, possibly already discounted, price.
func (c *Catalog) StartSuggestedSale(id string, rate decimal.Decimal) (domain.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.index[id]
	if !ok {
		return domain.Product{}, errors.Wrapf(ErrProductNotFound, "product %s", id)
	}
	if p.Stock <= 0 || p.OnSuggestedSale {
		return *p, errors.Wrapf(ErrNotEligible, "suggested sale on %s", id)
	}
	p.CurrentPrice = discounted(p.CurrentPrice, rate)
	p.OnSuggestedSale = true
	return *p, nil
}

// discounted rounds price × (1 − rate) half away from zero.
func discounted(price int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(price).
		Mul(decimal.NewFromInt(1).Sub(rate)).
		Round(0).
		IntPart()
}
