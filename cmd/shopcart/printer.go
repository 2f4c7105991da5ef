package main

import (
	"context"
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
	"github.com/shopspring/decimal"
	"github.com/talkincode/shopcart/internal/app"
	"github.com/talkincode/shopcart/internal/domain"
	"github.com/talkincode/shopcart/internal/pricing"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type lineView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
	OnSale    bool   `json:"on_sale,omitempty"`
}

type summaryView struct {
	Type          string     `json:"type"`
	Lines         []lineView `json:"lines"`
	ItemCount     int        `json:"item_count"`
	Subtotal      string     `json:"subtotal"`
	Total         string     `json:"total"`
	Saved         string     `json:"saved"`
	DiscountRate  string     `json:"discount_rate"`
	ItemDiscounts []string   `json:"item_discounts,omitempty"`
	SpecialDay    bool       `json:"special_day"`
	BulkDiscount  bool       `json:"bulk_discount"`
	Points        int64      `json:"points"`
	PointsDetail  []string   `json:"points_detail"`
	StockLevel    string     `json:"stock_level"`
	StockNotices  []string   `json:"stock_notices,omitempty"`
}

type productView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	BasePrice string `json:"base_price"`
	Stock     int    `json:"stock"`
	Flash     bool   `json:"flash,omitempty"`
	Suggested bool   `json:"suggested,omitempty"`
}

type catalogView struct {
	Type     string        `json:"type"`
	Products []productView `json:"products"`
}

type noticeView struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// printer serializes everything the console shows as one JSON document per
// line, written from a single goroutine.
type printer struct {
	w       io.Writer
	lookup  pricing.ProductLookup
	events  chan interface{}
	stopped chan struct{}
}

func newPrinter(w io.Writer) *printer {
	return &printer{
		w:       w,
		events:  make(chan interface{}, 64),
		stopped: make(chan struct{}),
	}
}

// attach subscribes to the session's cart and promotion topics.
func (p *printer) attach(s *app.Session) error {
	p.lookup = s.Catalog()
	if err := s.Subscribe(app.TopicCartChanged, p.summary); err != nil {
		return err
	}
	if err := s.Subscribe(app.TopicFlashSale, p.promotion); err != nil {
		return err
	}
	return s.Subscribe(app.TopicSuggestedSale, p.promotion)
}

func (p *printer) run(ctx context.Context) error {
	defer close(p.stopped)
	for {
		select {
		case v := <-p.events:
			p.write(v)
		case <-ctx.Done():
			for {
				select {
				case v := <-p.events:
					p.write(v)
				default:
					return nil
				}
			}
		}
	}
}

func (p *printer) write(v interface{}) {
	if err := json.NewEncoder(p.w).Encode(v); err != nil {
		zap.L().Error("write output", zap.Error(err))
	}
}

func (p *printer) send(v interface{}) {
	select {
	case p.events <- v:
	case <-p.stopped:
	}
}

func (p *printer) summary(sum app.Summary) {
	view := summaryView{
		Type:         "cart",
		Lines:        make([]lineView, 0, len(sum.Lines)),
		ItemCount:    sum.Pricing.ItemCount,
		Subtotal:     pricing.FormatAmount(decimal.NewFromInt(sum.Pricing.Subtotal)),
		Total:        pricing.FormatAmount(sum.Pricing.Total),
		Saved:        pricing.FormatAmount(sum.Pricing.SavedAmount),
		DiscountRate: pricing.FormatPercent(sum.Pricing.DiscountRate),
		SpecialDay:   sum.Pricing.IsSpecialDay,
		BulkDiscount: sum.Pricing.IsBulkDiscountApplied,
		Points:       sum.Points.Points,
		PointsDetail: sum.Points.Detail,
		StockLevel:   string(sum.StockLevel),
		StockNotices: sum.StockNotices,
	}
	for _, line := range sum.Lines {
		lv := lineView{ProductID: line.ProductID, Quantity: line.Quantity}
		if p.lookup != nil {
			if prod, ok := p.lookup.FindByID(line.ProductID); ok {
				lv.Name = prod.Name
				lv.UnitPrice = pricing.FormatAmount(decimal.NewFromInt(prod.CurrentPrice))
				lv.LineTotal = pricing.FormatAmount(decimal.NewFromInt(prod.CurrentPrice * int64(line.Quantity)))
				lv.OnSale = prod.OnSale()
			}
		}
		view.Lines = append(view.Lines, lv)
	}
	for _, d := range sum.Pricing.ItemDiscounts {
		view.ItemDiscounts = append(view.ItemDiscounts, fmt.Sprintf("%s %s", d.ProductName, pricing.FormatPercent(d.Percent.Shift(-2))))
	}
	p.send(view)
}

func (p *printer) catalog(products []domain.Product) {
	view := catalogView{Type: "catalog", Products: make([]productView, 0, len(products))}
	for _, prod := range products {
		view.Products = append(view.Products, productView{
			ProductID: prod.ID,
			Name:      prod.Name,
			Price:     pricing.FormatAmount(decimal.NewFromInt(prod.CurrentPrice)),
			BasePrice: pricing.FormatAmount(decimal.NewFromInt(prod.BasePrice)),
			Stock:     prod.Stock,
			Flash:     prod.OnFlashSale,
			Suggested: prod.OnSuggestedSale,
		})
	}
	p.send(view)
}

func (p *printer) promotion(ev domain.PromotionEvent) {
	msg := fmt.Sprintf("Flash sale! %s now %s", ev.ProductName, pricing.FormatAmount(decimal.NewFromInt(ev.Price)))
	if ev.Kind == domain.PromotionSuggested {
		msg = fmt.Sprintf("How about %s? Now %s", ev.ProductName, pricing.FormatAmount(decimal.NewFromInt(ev.Price)))
	}
	p.send(noticeView{Type: string(ev.Kind), Message: msg})
}

func (p *printer) info(msg string) {
	p.send(noticeView{Type: "info", Message: msg})
}

func (p *printer) fail(msg string) {
	p.send(noticeView{Type: "error", Message: msg})
}
