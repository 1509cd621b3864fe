package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics tracks order intake and production planning.
type OrderMetrics struct {
	intake        *prometheus.CounterVec
	items         prometheus.Counter
	planDuration  *prometheus.HistogramVec
	planShortfall prometheus.Gauge
}

// NewOrderMetrics registers the order metrics on reg. A nil registerer yields a no-op recorder.
func NewOrderMetrics(reg prometheus.Registerer) *OrderMetrics {
	if reg == nil {
		return &OrderMetrics{}
	}
	intake := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sherrys_order_intake_total",
		Help: "Order submissions by outcome.",
	}, []string{"outcome"})
	items := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sherrys_order_items_total",
		Help: "Line items accepted across all committed orders.",
	})
	planDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sherrys_production_plan_duration_seconds",
		Help:    "Time spent computing production plans.",
		Buckets: prometheus.DefBuckets,
	}, []string{"scope"})
	shortfall := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sherrys_production_plan_rows",
		Help: "Products with outstanding need in the most recent plan.",
	})
	reg.MustRegister(intake, items, planDuration, shortfall)
	return &OrderMetrics{
		intake:        intake,
		items:         items,
		planDuration:  planDuration,
		planShortfall: shortfall,
	}
}

// ObserveIntake records one submission. outcome is "created" or an error code.
func (m *OrderMetrics) ObserveIntake(outcome string, itemCount int) {
	if m == nil || m.intake == nil {
		return
	}
	m.intake.WithLabelValues(normalizeLabel(outcome)).Inc()
	if outcome == "created" && itemCount > 0 {
		m.items.Add(float64(itemCount))
	}
}

// ObservePlan records a production plan run.
func (m *OrderMetrics) ObservePlan(scope string, duration time.Duration, rows int) {
	if m == nil || m.planDuration == nil {
		return
	}
	m.planDuration.WithLabelValues(normalizeLabel(scope)).Observe(duration.Seconds())
	m.planShortfall.Set(float64(rows))
}
