package domain

// CartLine references a product by id; the product itself is always resolved
// through the catalog because its price and stock change independently.
type CartLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// CountItems sums the quantities of all lines.
func CountItems(lines []CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}
