package domain

import "time"

type PromotionKind string

const (
	PromotionFlash     PromotionKind = "flash"
	PromotionSuggested PromotionKind = "suggested"
)

// PromotionEvent is emitted whenever a timed promotion changes a product price.
type PromotionEvent struct {
	ID          int64         `json:"id,string"`
	Kind        PromotionKind `json:"kind"`
	ProductID   string        `json:"product_id"`
	ProductName string        `json:"product_name"`
	Price       int64         `json:"price"`
	At          time.Time     `json:"at"`
}
