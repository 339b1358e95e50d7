package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveOperation_CuentaPorResultado(t *testing.T) {
	m := New()
	m.ObserveOperation("apply", "ok", 10*time.Millisecond)
	m.ObserveOperation("apply", "ok", 20*time.Millisecond)
	m.ObserveOperation("apply", "insufficient_stock", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("apply", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("apply", "insufficient_stock")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.operationDuration))
}

func TestObserveDriftYHTTP(t *testing.T) {
	m := New()
	m.ObserveDrift("loc-a", "item-1")
	m.ObserveHTTP("POST", "/api/transfers", 201)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.driftCorrections))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/api/transfers", "201")))
}
