package clubmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements ClubMetrics on a prometheus registry.
type PrometheusMetrics struct {
	operationAttempts  *prometheus.CounterVec
	operationSuccesses *prometheus.CounterVec
	operationFailures  *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec

	membersJoined    *prometheus.CounterVec
	contributions    *prometheus.CounterVec
	contributedTotal *prometheus.CounterVec
	withdrawals      *prometheus.CounterVec
	withdrawnTotal   *prometheus.CounterVec
	phaseTransitions *prometheus.CounterVec
}

var _ ClubMetrics = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers the club collectors on the given registry.
func NewPrometheusMetrics(registry *prometheus.Registry) *PrometheusMetrics {
	m := &PrometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_operation_attempts_total",
			Help: "Club service operations attempted.",
		}, []string{"operation", "service"}),
		operationSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_operation_successes_total",
			Help: "Club service operations completed without infrastructure error.",
		}, []string{"operation", "service"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_operation_failures_total",
			Help: "Club service operations aborted by an infrastructure error or panic.",
		}, []string{"operation", "service"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "club_operation_duration_seconds",
			Help:    "Club service operation latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation", "service"}),
		membersJoined: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_members_joined_total",
			Help: "Members admitted, by club.",
		}, []string{"club_id"}),
		contributions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_contributions_total",
			Help: "Contributions accepted, by club.",
		}, []string{"club_id"}),
		contributedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_contributed_amount_total",
			Help: "Sum of accepted contribution amounts in minor units, by club.",
		}, []string{"club_id"}),
		withdrawals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_withdrawals_total",
			Help: "Withdrawals settled, by club.",
		}, []string{"club_id"}),
		withdrawnTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_withdrawn_amount_total",
			Help: "Sum of authorized payout amounts in minor units, by club.",
		}, []string{"club_id"}),
		phaseTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "club_phase_transitions_total",
			Help: "Phase transitions, by club and target phase.",
		}, []string{"club_id", "phase"}),
	}

	registry.MustRegister(
		m.operationAttempts,
		m.operationSuccesses,
		m.operationFailures,
		m.operationDuration,
		m.membersJoined,
		m.contributions,
		m.contributedTotal,
		m.withdrawals,
		m.withdrawnTotal,
		m.phaseTransitions,
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

func (m *PrometheusMetrics) RecordMemberJoined(_ context.Context, clubID string) {
	m.membersJoined.WithLabelValues(clubID).Inc()
}

func (m *PrometheusMetrics) RecordContribution(_ context.Context, clubID string, amount int64) {
	m.contributions.WithLabelValues(clubID).Inc()
	m.contributedTotal.WithLabelValues(clubID).Add(float64(amount))
}

func (m *PrometheusMetrics) RecordWithdrawal(_ context.Context, clubID string, amount int64) {
	m.withdrawals.WithLabelValues(clubID).Inc()
	m.withdrawnTotal.WithLabelValues(clubID).Add(float64(amount))
}

func (m *PrometheusMetrics) RecordPhaseTransition(_ context.Context, clubID, phase string) {
	m.phaseTransitions.WithLabelValues(clubID, phase).Inc()
}
