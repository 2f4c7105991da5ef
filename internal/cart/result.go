package cart

type Reason int

const (
	ReasonNone Reason = iota
	ReasonEmptySelection
	ReasonProductNotFound
	ReasonInsufficientStock
	ReasonItemNotInCart
)

// Failure messages surfaced to the user by the view layer.
const (
	MsgEmptySelection    = "No product selected"
	MsgProductNotFound   = "Product not found"
	MsgInsufficientStock = "Insufficient stock"
	MsgItemNotInCart     = "Item not in cart"
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "OK"
	case ReasonEmptySelection:
		return "EMPTY_SELECTION"
	case ReasonProductNotFound:
		return "PRODUCT_NOT_FOUND"
	case ReasonInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case ReasonItemNotInCart:
		return "ITEM_NOT_IN_CART"
	default:
		return "UNKNOWN"
	}
}

// Result is returned by every cart mutation. A failed Result means nothing changed.
type Result struct {
	Success bool   `json:"success"`
	Reason  Reason `json:"-"`
	Message string `json:"message,omitempty"`
}

func ok() Result {
	return Result{Success: true}
}

func fail(reason Reason, message string) Result {
	return Result{Reason: reason, Message: message}
}
