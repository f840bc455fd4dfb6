package utils

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics holds the POS collectors on a private registry. A nil *Metrics is
// a valid no-op recorder.
type Metrics struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	ordersCreated   prometheus.Counter
	ordersSettled   *prometheus.CounterVec
	revenue         *prometheus.CounterVec
	ordersCancelled prometheus.Counter
	tablesOccupied  prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Latency of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_orders_created_total",
			Help: "Orders opened",
		}),
		ordersSettled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_orders_settled_total",
				Help: "Orders settled, by payment method (split for multi-tender)",
			},
			[]string{"payment_method"},
		),
		revenue: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pos_revenue_total",
				Help: "Settled revenue, by payment method",
			},
			[]string{"payment_method"},
		),
		ordersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pos_orders_cancelled_total",
			Help: "Orders cancelled before settlement",
		}),
		tablesOccupied: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pos_tables_occupied",
			Help: "Tables currently occupied",
		}),
	}

	m.registry.MustRegister(
		m.requestDuration,
		m.ordersCreated,
		m.ordersSettled,
		m.revenue,
		m.ordersCancelled,
		m.tablesOccupied,
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, route string, status int, latency time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(latency.Seconds())
}

func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *Metrics) OrderSettled(method string) {
	if m == nil {
		return
	}
	m.ordersSettled.WithLabelValues(method).Inc()
}

func (m *Metrics) RevenueCollected(method string, amount decimal.Decimal) {
	if m == nil {
		return
	}
	m.revenue.WithLabelValues(method).Add(amount.InexactFloat64())
}

func (m *Metrics) OrderCancelled() {
	if m == nil {
		return
	}
	m.ordersCancelled.Inc()
}

func (m *Metrics) SetTablesOccupied(n int64) {
	if m == nil {
		return
	}
	m.tablesOccupied.Set(float64(n))
}
