package catalog

import "fmt"

type StockLevel string

const (
	StockNormal   StockLevel = "normal"
	StockLow      StockLevel = "low"
	StockCritical StockLevel = "critical"
)

// StockThresholds drive advisory, non-blocking warnings.
type StockThresholds struct {
	Warning  int // total stock below this is low
	Critical int // total stock below this is critical
	Item     int // a single product below this gets a notice
}

func DefaultStockThresholds() StockThresholds {
	return StockThresholds{Warning: 50, Critical: 30, Item: 5}
}

// TotalStock sums the stock of every product.
func (c *Catalog) TotalStock() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	sum := 0
	for _, p := range c.products {
		sum += p.Stock
	}
	return sum
}

func (c *Catalog) StockLevel() StockLevel {
	total := c.TotalStock()
	switch {
	case total < c.thresholds.Critical:
		return StockCritical
	case total < c.thresholds.Warning:
		return StockLow
	default:
		return StockNormal
	}
}

// StockNotices lists products running low or sold out, in catalog order.
func (c *Catalog) StockNotices() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var notices []string
	for _, p := range c.products {
		if p.Stock >= c.thresholds.Item {
			continue
		}
		if p.Stock > 0 {
			notices = append(notices, fmt.Sprintf("%s: low stock (%d left)", p.Name, p.Stock))
		} else {
			notices = append(notices, fmt.Sprintf("%s: sold out", p.Name))
		}
	}
	return notices
}
