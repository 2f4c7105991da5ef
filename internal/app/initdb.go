package app

import (
	"github.com/talkincode/shopcart/config"
	"github.com/talkincode/shopcart/internal/domain"
	"go.uber.org/zap"
)

var defaultProducts = []config.ProductConfig{
	{ID: domain.ProductKeyboard, Name: "Bug-free keyboard", Price: 10000, Stock: 50},
	{ID: domain.ProductMouse, Name: "Productivity mouse", Price: 20000, Stock: 30},
	{ID: domain.ProductMonitorArm, Name: "Posture monitor arm", Price: 30000, Stock: 20},
	{ID: domain.ProductPouch, Name: "Laptop pouch", Price: 15000, Stock: 0},
	{ID: domain.ProductSpeaker, Name: "Lo-Fi speaker", Price: 25000, Stock: 10},
}

// checkProducts returns the configured catalog, falling back to the default
// product set when none is configured.
func (a *Application) checkProducts() []domain.Product {
	records := a.appConfig.Catalog
	if len(records) == 0 {
		records = defaultProducts
		zap.L().Info("initialized default product catalog", zap.Int("products", len(records)))
	}
	products := make([]domain.Product, 0, len(records))
	for _, r := range records {
		products = append(products, domain.Product{
			ID:        r.ID,
			Name:      r.Name,
			BasePrice: r.Price,
			Stock:     r.Stock,
		})
	}
	return products
}
