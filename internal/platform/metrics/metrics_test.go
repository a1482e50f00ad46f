package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLending(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.Borrowed("book")
	m.Borrowed("book")
	m.Returned("book", false, 0, 0)
	m.Returned("book", true, 10, 5)
	m.Returned("book", true, 1000, 50)
	m.Failed("borrow", "INVALID_STATE")
	m.Retried("borrow")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.borrows.WithLabelValues("book")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.returns.WithLabelValues("book", "on_time")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.returns.WithLabelValues("book", "late")))
	assert.Equal(t, 55.0, testutil.ToFloat64(m.fines.WithLabelValues("book")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("borrow", "INVALID_STATE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retries.WithLabelValues("borrow")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.lateness))
}

func TestNilLendingIsNoop(t *testing.T) {
	var m *Lending

	assert.NotPanics(t, func() {
		m.Borrowed("device")
		m.Returned("device", true, 3, 1.5)
		m.Failed("return", "NOT_FOUND")
		m.Retried("return")
	})
}
