// Package cart holds the line items of a shopping session and keeps catalog
// stock reservations in step with line quantities.
package cart

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/talkincode/shopcart/internal/catalog"
	"github.com/talkincode/shopcart/internal/domain"
	"go.uber.org/zap"
)

// Inventory is the part of the catalog the cart reserves stock against.
type Inventory interface {
	FindByID(id string) (domain.Product, bool)
	Reserve(id string, amount int) error
	Release(id string, amount int) error
}

// Cart keeps lines in insertion order. Every reserved unit is accounted for by
// a line quantity, so removing all lines restores the original stock.
type Cart struct {
	mu           sync.Mutex
	inventory    Inventory
	lines        []domain.CartLine
	lastSelected string
}

func New(inventory Inventory) *Cart {
	return &Cart{inventory: inventory}
}

// AddItem puts one more unit of the product in the cart.
func (c *Cart) AddItem(productID string) Result {
	if productID == "" {
		return fail(ReasonEmptySelection, MsgEmptySelection)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p, found := c.inventory.FindByID(productID)
	if !found {
		return fail(ReasonProductNotFound, MsgProductNotFound)
	}
	if p.SoldOut() {
		return fail(ReasonInsufficientStock, MsgInsufficientStock)
	}
	if r := c.reserve(productID, 1); !r.Success {
		return r
	}
	if i := c.indexOf(productID); i >= 0 {
		c.lines[i].Quantity++
	} else {
		c.lines = append(c.lines, domain.CartLine{ProductID: productID, Quantity: 1})
	}
	c.lastSelected = productID
	return ok()
}

// UpdateQuantity sets the line to quantity, reserving or releasing the
// difference. A quantity of zero or less removes the line.
func (c *Cart) UpdateQuantity(productID string, quantity int) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateQuantity(productID, quantity)
}

// ChangeQuantity adjusts the line by delta, as the +/- buttons do.
func (c *Cart) ChangeQuantity(productID string, delta int) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(productID)
	if i < 0 {
		return fail(ReasonItemNotInCart, MsgItemNotInCart)
	}
	return c.updateQuantity(productID, c.lines[i].Quantity+delta)
}

// RemoveItem drops the line and returns its whole quantity to stock.
func (c *Cart) RemoveItem(productID string) Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(productID)
	if i < 0 {
		return fail(ReasonItemNotInCart, MsgItemNotInCart)
	}
	c.removeAt(i)
	return ok()
}

// Clear empties the cart, releasing every reservation, and forgets the last
// selected product.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.lines) > 0 {
		c.removeAt(len(c.lines) - 1)
	}
	c.lastSelected = ""
}

// Lines returns a copy of the lines in display order.
func (c *Cart) Lines() []domain.CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Quantity(productID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.CountItems(c.lines)
}

func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// LastSelectedID is the product most recently added, or "" if none.
func (c *Cart) LastSelectedID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSelected
}

func (c *Cart) updateQuantity(productID string, quantity int) Result {
	i := c.indexOf(productID)
	if i < 0 {
		if _, found := c.inventory.FindByID(productID); !found {
			return fail(ReasonProductNotFound, MsgProductNotFound)
		}
		return fail(ReasonItemNotInCart, MsgItemNotInCart)
	}
	if quantity <= 0 {
		c.removeAt(i)
		return ok()
	}

	delta := quantity - c.lines[i].Quantity
	switch {
	case delta > 0:
		if r := c.reserve(productID, delta); !r.Success {
			return r
		}
	case delta < 0:
		c.release(productID, -delta)
	}
	c.lines[i].Quantity = quantity
	return ok()
}

func (c *Cart) reserve(productID string, amount int) Result {
	err := c.inventory.Reserve(productID, amount)
	switch {
	case err == nil:
		return ok()
	case errors.Is(err, catalog.ErrInsufficientStock):
		return fail(ReasonInsufficientStock, MsgInsufficientStock)
	case errors.Is(err, catalog.ErrProductNotFound):
		return fail(ReasonProductNotFound, MsgProductNotFound)
	default:
		zap.L().Warn("cart reserve failed", zap.String("product", productID), zap.Error(err))
		return fail(ReasonInsufficientStock, err.Error())
	}
}

func (c *Cart) release(productID string, amount int) {
	if err := c.inventory.Release(productID, amount); err != nil {
		zap.L().Error("cart release failed",
			zap.String("product", productID),
			zap.Int("amount", amount),
			zap.Error(err))
	}
}

func (c *Cart) removeAt(i int) {
	line := c.lines[i]
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	c.release(line.ProductID, line.Quantity)
}

func (c *Cart) indexOf(productID string) int {
	for i, l := range c.lines {
		if l.ProductID == productID {
			return i
		}
	}
	return -1
}
