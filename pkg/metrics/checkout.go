package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records order pipeline and payment callback activity.
type CheckoutMetrics struct {
	orders    *prometheus.CounterVec
	callbacks *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	quotes    *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_orders_total",
		Help: "Orders created, labeled by outcome.",
	}, []string{"outcome"})
	callbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_callbacks_total",
		Help: "Payment gateway callbacks processed, labeled by result.",
	}, []string{"result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shipping_quotes_total",
		Help: "Shipping quotes served, labeled by method.",
	}, []string{"method"})
	reg.MustRegister(orders, callbacks, duration, quotes)
	return &CheckoutMetrics{
		orders:    orders,
		callbacks: callbacks,
		duration:  duration,
		quotes:    quotes,
	}
}

// IncOrder increments the order counter for the given outcome.
func (m *CheckoutMetrics) IncOrder(outcome string) {
	if m == nil || m.orders == nil {
		return
	}
	m.orders.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncCallback increments the callback counter for the given result.
func (m *CheckoutMetrics) IncCallback(result string) {
	if m == nil || m.callbacks == nil {
		return
	}
	m.callbacks.WithLabelValues(normalizeLabel(result)).Inc()
}

// ObserveCheckout records the duration of a checkout request.
func (m *CheckoutMetrics) ObserveCheckout(outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncQuote increments the shipping quote counter for the given method.
func (m *CheckoutMetrics) IncQuote(method string) {
	if m == nil || m.quotes == nil {
		return
	}
	m.quotes.WithLabelValues(normalizeLabel(method)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
