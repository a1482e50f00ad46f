package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lending_desk"

// Lending holds the collectors for loan outcomes.
type Lending struct {
	borrows  *prometheus.CounterVec
	returns  *prometheus.CounterVec
	fines    *prometheus.CounterVec
	failures *prometheus.CounterVec
	lateness *prometheus.HistogramVec
	retries  *prometheus.CounterVec
}

// New registers the lending collectors on reg.
func New(reg prometheus.Registerer) *Lending {
	f := promauto.With(reg)
	return &Lending{
		borrows: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "borrows_total",
			Help:      "Committed borrows by item family.",
		}, []string{"family"}),
		returns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "returns_total",
			Help:      "Committed returns by item family and outcome.",
		}, []string{"family", "outcome"}),
		fines: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fines_charged_total",
			Help:      "Sum of fines charged at return time.",
		}, []string{"family"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Rejected or failed operations by operation and error code.",
		}, []string{"operation", "code"}),
		lateness: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "return_lateness_seconds",
			Help:      "Whole seconds past due for late returns.",
			Buckets:   []float64{1, 5, 10, 30, 60, 100, 300, 3600, 86400},
		}, []string{"family"}),
		retries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_retries_total",
			Help:      "Transactions retried after a serialization failure.",
		}, []string{"operation"}),
	}
}

func (m *Lending) Borrowed(family string) {
	if m == nil {
		return
	}
	m.borrows.WithLabelValues(family).Inc()
}

// Returned records a return. fine is only meaningful when late is true.
func (m *Lending) Returned(family string, late bool, lateSeconds int64, fine float64) {
	if m == nil {
		return
	}
	if !late {
		m.returns.WithLabelValues(family, "on_time").Inc()
		return
	}
	m.returns.WithLabelValues(family, "late").Inc()
	m.lateness.WithLabelValues(family).Observe(float64(lateSeconds))
	m.fines.WithLabelValues(family).Add(fine)
}

func (m *Lending) Failed(operation, code string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(operation, code).Inc()
}

func (m *Lending) Retried(operation string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(operation).Inc()
}
