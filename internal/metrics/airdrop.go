package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lazorkit/lazordrop/internal/ledger"
)

var (
	airdropRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lazordrop",
			Subsystem: "airdrop",
			Name:      "requests_total",
			Help:      "Total number of airdrop requests by outcome",
		},
		[]string{"outcome"},
	)

	airdropDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "lazordrop",
			Subsystem: "airdrop",
			Name:      "duration_seconds",
			Help:      "End-to-end airdrop duration including confirmation",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 45, 60},
		},
		[]string{"outcome"},
	)

	balanceQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lazordrop",
			Subsystem: "airdrop",
			Name:      "balance_queries_total",
			Help:      "Total number of balance queries by result",
		},
		[]string{"result"}, // ok, error
	)

	pollAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lazordrop",
			Subsystem: "poller",
			Name:      "attempts_total",
			Help:      "Total number of confirmation status queries by observed status",
		},
		[]string{"status"}, // pending, confirmed, finalized, unknown, query_error
	)

	pollAttemptsPerConfirmation = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "lazordrop",
			Subsystem: "poller",
			Name:      "attempts_per_wait",
			Help:      "Number of status queries issued per confirmation wait",
			Buckets:   prometheus.LinearBuckets(1, 1, 15),
		},
	)

	pollOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lazordrop",
			Subsystem: "poller",
			Name:      "outcomes_total",
			Help:      "Total number of confirmation waits by outcome",
		},
		[]string{"outcome"}, // confirmed, timeout
	)
)

// AirdropMetrics records airdrop service and poller metrics.
type AirdropMetrics struct{}

func NewAirdropMetrics() *AirdropMetrics {
	return &AirdropMetrics{}
}

func (am *AirdropMetrics) RecordAirdrop(outcome string, duration time.Duration) {
	airdropRequestsTotal.WithLabelValues(outcome).Inc()
	airdropDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (am *AirdropMetrics) RecordBalanceQuery(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	balanceQueriesTotal.WithLabelValues(result).Inc()
}

func (am *AirdropMetrics) RecordAttempt(status ledger.ConfirmationStatus, err error) {
	label := string(status)
	if err != nil {
		label = "query_error"
	}
	pollAttemptsTotal.WithLabelValues(label).Inc()
}

func (am *AirdropMetrics) RecordOutcome(confirmed bool, attempts int, _ time.Duration) {
	outcome := "confirmed"
	if !confirmed {
		outcome = "timeout"
	}
	pollOutcomesTotal.WithLabelValues(outcome).Inc()
	pollAttemptsPerConfirmation.Observe(float64(attempts))
}
