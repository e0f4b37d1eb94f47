package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// CheckoutMetrics records checkout outcomes.
type CheckoutMetrics struct {
	ordersCreated prometheus.Counter
	revenue       prometheus.Counter
	failures      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Orders created by checkout.",
	})
	revenue := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "storefront_order_revenue_total",
		Help: "Sum of order totals created by checkout.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_failures_total",
		Help: "Failed checkouts by reason.",
	}, []string{"reason"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "storefront_checkout_duration_seconds",
		Help:    "Checkout duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(ordersCreated, revenue, failures, duration)
	return &CheckoutMetrics{
		ordersCreated: ordersCreated,
		revenue:       revenue,
		failures:      failures,
		duration:      duration,
	}
}

// ObserveSuccess records a committed checkout.
func (m *CheckoutMetrics) ObserveSuccess(d time.Duration, total decimal.Decimal) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
	m.revenue.Add(total.InexactFloat64())
	m.duration.WithLabelValues("success").Observe(d.Seconds())
}

// ObserveFailure records a rolled back or rejected checkout.
func (m *CheckoutMetrics) ObserveFailure(reason string, d time.Duration) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(reason)).Inc()
	m.duration.WithLabelValues("failure").Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
