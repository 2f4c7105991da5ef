package catalog

import "github.com/pkg/errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrNotEligible       = errors.New("product not eligible for promotion")
	ErrDuplicateProduct  = errors.New("duplicate product id")
	ErrInvalidProduct    = errors.New("invalid product")
)
