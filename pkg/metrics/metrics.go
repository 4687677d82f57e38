package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados de una operación de orden.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected" // validación, permisos, stock insuficiente
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics colectores Prometheus del servicio. Un *Metrics nil es válido y no registra nada.
type Metrics struct {
	ledgerEntries   *prometheus.CounterVec
	orderOperations *prometheus.CounterVec
	orderDuration   *prometheus.HistogramVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New crea y registra los colectores en reg (prometheus.DefaultRegisterer en producción,
// prometheus.NewRegistry() en tests).
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ledgerEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "inventory_ledger_entries_total",
				Help: "Entradas confirmadas en el libro de inventario",
			},
			[]string{"type"},
		),
		orderOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "order_operations_total",
				Help: "Operaciones sobre órdenes por tipo, operación y resultado",
			},
			[]string{"kind", "operation", "outcome"},
		),
		orderDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "order_operation_duration_seconds",
				Help:    "Duración de las operaciones sobre órdenes en segundos",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "operation"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
	reg.MustRegister(m.ledgerEntries, m.orderOperations, m.orderDuration, m.httpRequests, m.httpDuration)
	return m
}

// LedgerEntry cuenta n entradas confirmadas del tipo dado.
func (m *Metrics) LedgerEntry(txType string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ledgerEntries.WithLabelValues(txType).Add(float64(n))
}

// OrderOperation registra el resultado y la duración de una operación (kind: sales|purchase).
func (m *Metrics) OrderOperation(kind, operation, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.orderOperations.WithLabelValues(kind, operation, outcome).Inc()
	m.orderDuration.WithLabelValues(kind, operation).Observe(elapsed.Seconds())
}

// HTTPRequest registra una petición HTTP. path debe ser la ruta registrada, no la URL concreta.
func (m *Metrics) HTTPRequest(method, path string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
