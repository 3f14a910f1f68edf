// Package metrics keeps process counters for inventory activity and writes
// them in the Prometheus text format for a node-exporter textfile collector.
package metrics

import (
	"errors"

	"embassy-inventory/internal/apperr"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "embassy_inventory"

type Metrics struct {
	registry *prometheus.Registry

	CatalogChanges *prometheus.CounterVec
	UnitsReceived  prometheus.Counter
	UnitsIssued    prometheus.Counter
	LedgerAppends  prometheus.Counter
	Backfilled     *prometheus.CounterVec
	Exports        *prometheus.CounterVec
	Errors         *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		CatalogChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_changes_total",
			Help:      "Products created, updated or deleted.",
		}, []string{"action"}),
		UnitsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_received_total",
			Help:      "Units added to stock.",
		}),
		UnitsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "units_issued_total",
			Help:      "Units taken out of stock.",
		}),
		LedgerAppends: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outflow_entries_total",
			Help:      "Rows appended to the outflow ledger.",
		}),
		Backfilled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outflow_backfilled_rows_total",
			Help:      "Legacy outflow rows repaired, by column.",
		}, []string{"column"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Files exported, by dataset and format.",
		}, []string{"dataset", "format"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed operations, by error kind.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(
		m.CatalogChanges, m.UnitsReceived, m.UnitsIssued, m.LedgerAppends,
		m.Backfilled, m.Exports, m.Errors,
	)
	return m
}

// ObserveError counts err under its kind. Nil is ignored.
func (m *Metrics) ObserveError(err error) {
	if err == nil {
		return
	}
	m.Errors.WithLabelValues(Kind(err)).Inc()
}

// Kind names the error class for labelling.
func Kind(err error) string {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return "validation"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, apperr.ErrStorage):
		return "storage"
	case errors.Is(err, apperr.ErrUnauthorized):
		return "unauthorized"
	default:
		return "other"
	}
}

// WriteTextfile writes every metric to path. An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
