package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics holds Prometheus metrics for business-level observability.
type BusinessMetrics struct {
	// Cart activity
	CartItemsAdded    prometheus.Counter
	CartItemQuantity  prometheus.Histogram
	CheckoutCompleted prometheus.Counter

	// Auth & accounts
	Signups     prometheus.Counter
	Logins      prometheus.Counter
	LoginFailed prometheus.Counter

	// Background jobs
	CartsAbandoned prometheus.Counter
	SweepRuns      prometheus.Counter
	SweepFailed    prometheus.Counter
}

// NewBusinessMetrics creates and registers all business metrics against the
// given registerer. Tests pass a private registry to avoid collisions.
func NewBusinessMetrics(namespace string, reg prometheus.Registerer) *BusinessMetrics {
	if namespace == "" {
		namespace = "shoptrack"
	}

	subsystem := "business"
	factory := promauto.With(reg)

	return &BusinessMetrics{
		CartItemsAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cart_items_added_total",
			Help:      "Total add to cart actions",
		}),
		CartItemQuantity: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cart_item_quantity",
			Help:      "Quantity per add to cart action",
			Buckets:   []float64{1, 2, 3, 5, 10, 25, 50},
		}),
		CheckoutCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "checkout_completed_total",
			Help:      "Total successful checkouts",
		}),
		Signups: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "signups_total",
			Help:      "Total account registrations",
		}),
		Logins: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "logins_total",
			Help:      "Total successful logins",
		}),
		LoginFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "logins_failed_total",
			Help:      "Total failed login attempts",
		}),
		CartsAbandoned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "carts_abandoned_total",
			Help:      "Total carts marked abandoned by the sweeper",
		}),
		SweepRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cart_sweep_runs_total",
			Help:      "Total abandonment sweeper runs",
		}),
		SweepFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cart_sweep_failures_total",
			Help:      "Total abandonment sweeper runs that returned an error",
		}),
	}
}

// RecordItemAdded counts one add to cart action of the given quantity.
func (m *BusinessMetrics) RecordItemAdded(quantity int32) {
	m.CartItemsAdded.Inc()
	m.CartItemQuantity.Observe(float64(quantity))
}

// RecordCheckout counts one successful checkout.
func (m *BusinessMetrics) RecordCheckout() {
	m.CheckoutCompleted.Inc()
}

// RecordSignup counts one account registration.
func (m *BusinessMetrics) RecordSignup() {
	m.Signups.Inc()
}

// RecordLogin counts one login attempt.
func (m *BusinessMetrics) RecordLogin(success bool) {
	if success {
		m.Logins.Inc()
	} else {
		m.LoginFailed.Inc()
	}
}

// RecordSweep counts one sweeper run and the carts it abandoned.
func (m *BusinessMetrics) RecordSweep(abandoned int, failed bool) {
	m.SweepRuns.Inc()
	if failed {
		m.SweepFailed.Inc()
	}
	if abandoned > 0 {
		m.CartsAbandoned.Add(float64(abandoned))
	}
}
