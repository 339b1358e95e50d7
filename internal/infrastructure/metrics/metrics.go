// Package metrics expone las métricas Prometheus del ledger.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

const namespace = "stock_ledger"

var _ inventory.Observer = (*Metrics)(nil)

// Metrics agrupa los colectores del servicio sobre un registry propio.
type Metrics struct {
	registry *prometheus.Registry

	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	driftCorrections  prometheus.Counter
	httpRequests      *prometheus.CounterVec
}

// New registra los colectores en un registry nuevo (más los de proceso y runtime de Go).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operaciones del ledger por tipo y resultado",
		}, []string{"operation", "outcome"}),
		operationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duración de las operaciones del ledger, incluida la espera de bloqueos",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		driftCorrections: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "drift_corrections_total",
			Help:      "Saldos en caché corregidos por la reconstrucción",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Peticiones HTTP por método, ruta y código",
		}, []string{"method", "route", "status"}),
	}
}

// Registry para exponer en /metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveOperation implementa inventory.Observer.
func (m *Metrics) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveDrift implementa inventory.Observer. No etiqueta por cuenta para acotar la cardinalidad.
func (m *Metrics) ObserveDrift(_, _ string) {
	m.driftCorrections.Inc()
}

// ObserveHTTP cuenta una petición HTTP. route es el patrón registrado, no la URL.
func (m *Metrics) ObserveHTTP(method, route string, status int) {
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}
