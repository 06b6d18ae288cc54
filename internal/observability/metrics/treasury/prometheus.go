package treasurymetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements TreasuryMetrics on a prometheus registry.
type PrometheusMetrics struct {
	operationAttempts  *prometheus.CounterVec
	operationSuccesses *prometheus.CounterVec
	operationFailures  *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec

	transfersRecorded *prometheus.CounterVec
	transferAmount    *prometheus.CounterVec
	statementImports  *prometheus.CounterVec
	statementRows     *prometheus.CounterVec
	reconciliationOut *prometheus.CounterVec
}

var _ TreasuryMetrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the treasury collectors on the given registry.
func NewPrometheusMetrics(registry *prometheus.Registry) *PrometheusMetrics {
	m := &PrometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treasury_operation_attempts_total",
			Help: "Treasury service operations attempted.",
		}, []string{"operation", "service"}),
		operationSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treasury_operation_successes_total",
			Help: "Treasury service operations completed without infrastructure error.",
		}, []string{"operation", "service"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treasury_operation_failures_total",
			Help: "Treasury service operations aborted by an infrastructure error or panic.",
		}, []string{"operation", "service"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "treasury_operation_duration_seconds",
			Help:    "Treasury service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		transfersRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treasury_transfers_recorded_total",
			Help: "Transfer instructions recorded, by kind.",
		}, []string{"kind"}),
		transferAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treasury_transfer_amount_total",
			Help: "Sum of recorded transfer amounts in minor units, by kind.",
		}, []string{"kind"}),
		statementImports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treasury_statement_imports_total",
			Help: "Bank statements imported, by format.",
		}, []string{"format"}),
		statementRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treasury_statement_rows_total",
			Help: "Statement rows parsed, by format.",
		}, []string{"format"}),
		reconciliationOut: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "treasury_reconciliation_rows_total",
			Help: "Reconciliation outcomes, by classification.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		m.operationAttempts,
		m.operationSuccesses,
		m.operationFailures,
		m.operationDuration,
		m.transfersRecorded,
		m.transferAmount,
		m.statementImports,
		m.statementRows,
		m.reconciliationOut,
	)
	return m
}

func (m *PrometheusMetrics) RecordOperationAttempt(_ context.Context, operation, service string) {
	m.operationAttempts.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(_ context.Context, operation, service string) {
	m.operationSuccesses.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(_ context.Context, operation, service string) {
	m.operationFailures.WithLabelValues(operation, service).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(_ context.Context, operation, service string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operation, service).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordTransferRecorded(_ context.Context, kind string, amount int64) {
	m.transfersRecorded.WithLabelValues(kind).Inc()
	m.transferAmount.WithLabelValues(kind).Add(float64(amount))
}

func (m *PrometheusMetrics) RecordStatementImport(_ context.Context, format string, rows int) {
	m.statementImports.WithLabelValues(format).Inc()
	m.statementRows.WithLabelValues(format).Add(float64(rows))
}

func (m *PrometheusMetrics) RecordReconciliation(_ context.Context, matched, mismatched, unmatched int) {
	m.reconciliationOut.WithLabelValues("matched").Add(float64(matched))
	m.reconciliationOut.WithLabelValues("amount_mismatch").Add(float64(mismatched))
	m.reconciliationOut.WithLabelValues("unmatched").Add(float64(unmatched))
}
