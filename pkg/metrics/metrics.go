package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ShopMetrics holds the session collectors on a private registry. A nil
// *ShopMetrics records nothing.
type ShopMetrics struct {
	registry    *prometheus.Registry
	CartOps     *prometheus.CounterVec
	Promotions  *prometheus.CounterVec
	RecomputeMS prometheus.Histogram
	CartTotal   prometheus.Gauge
	TotalStock  prometheus.Gauge
}

func NewShopMetrics() *ShopMetrics {
	m := &ShopMetrics{
		registry: prometheus.NewRegistry(),
		CartOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopcart",
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Total number of cart operations.",
		}, []string{"op", "result"}),
		Promotions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "shopcart",
			Subsystem: "promotion",
			Name:      "applied_total",
			Help:      "Total number of promotions applied.",
		}, []string{"kind"}),
		RecomputeMS: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "shopcart",
			Subsystem: "cart",
			Name:      "recompute_duration_ms",
			Help:      "Cart recomputation latency in milliseconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CartTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shopcart",
			Subsystem: "cart",
			Name:      "total",
			Help:      "Current cart total after discounts.",
		}),
		TotalStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "shopcart",
			Subsystem: "catalog",
			Name:      "stock_units",
			Help:      "Units left across the catalog.",
		}),
	}
	m.registry.MustRegister(m.CartOps, m.Promotions, m.RecomputeMS, m.CartTotal, m.TotalStock)
	return m
}

func (m *ShopMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *ShopMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *ShopMetrics) ObserveCartOp(op string, success bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !success {
		result = "rejected"
	}
	m.CartOps.WithLabelValues(op, result).Inc()
}

func (m *ShopMetrics) ObservePromotion(kind string) {
	if m == nil {
		return
	}
	m.Promotions.WithLabelValues(kind).Inc()
}

func (m *ShopMetrics) ObserveRecompute(elapsed time.Duration, total float64, stock int) {
	if m == nil {
		return
	}
	m.RecomputeMS.Observe(float64(elapsed) / float64(time.Millisecond))
	m.CartTotal.Set(total)
	m.TotalStock.Set(float64(stock))
}
