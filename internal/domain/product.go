package domain

// Product is a sellable catalog item together with its live pricing and stock state.
// BasePrice never changes after load; CurrentPrice, Stock and the sale flags do.
type Product struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	BasePrice       int64  `json:"base_price" yaml:"base_price"`
	CurrentPrice    int64  `json:"current_price" yaml:"-"`
	Stock           int    `json:"stock" yaml:"stock"`
	OnFlashSale     bool   `json:"on_flash_sale" yaml:"-"`
	OnSuggestedSale bool   `json:"on_suggested_sale" yaml:"-"`
}

// OnSale reports whether any promotion currently lowers the price.
func (p Product) OnSale() bool {
	return p.OnFlashSale || p.OnSuggestedSale
}

// SoldOut reports whether no unit is left to reserve.
func (p Product) SoldOut() bool {
	return p.Stock <= 0
}

// Well-known product ids of the default catalog.
const (
	ProductKeyboard   = "p1"
	ProductMouse      = "p2"
	ProductMonitorArm = "p3"
	ProductPouch      = "p4"
	ProductSpeaker    = "p5"
)
