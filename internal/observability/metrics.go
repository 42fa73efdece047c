// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Auction lifecycle metrics
	AuctionsCreated prometheus.Counter
	AuctionsEnded   *prometheus.CounterVec
	AuctionsSettled prometheus.Counter
	OpenAuctions    prometheus.Gauge

	// Bid metrics
	BidsPlaced    prometheus.Counter
	BidsRejected  *prometheus.CounterVec
	BidCommitment prometheus.Histogram

	// Settlement metrics
	UnitsAllocated    prometheus.Counter
	UnitsBurned       prometheus.Counter
	SettlementErrors  prometheus.Counter
	SettlementLatency prometheus.Histogram

	// Treasury metrics
	WithdrawalsProcessed prometheus.Counter
	PendingPayouts       prometheus.Gauge

	// Scheduler metrics
	SweepsTotal   prometheus.Counter
	SweepDuration prometheus.Histogram

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulSweep prometheus.Gauge
	UptimeSeconds       prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "dutch_auction_lab"
	}

	return &Metrics{
		// Auction lifecycle metrics
		AuctionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auction",
			Name:      "created_total",
			Help:      "Total number of auctions created",
		}),
		AuctionsEnded: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auction",
			Name:      "ended_total",
			Help:      "Total number of auctions ended by reason",
		}, []string{"reason"}),
		AuctionsSettled: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auction",
			Name:      "settled_total",
			Help:      "Total number of auctions settled",
		}),
		OpenAuctions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "auction",
			Name:      "open",
			Help:      "Current number of auctions accepting bids",
		}),

		// Bid metrics
		BidsPlaced: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bids",
			Name:      "placed_total",
			Help:      "Total number of bids accepted into the ledger",
		}),
		BidsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "bids",
			Name:      "rejected_total",
			Help:      "Total number of bids rejected by reason",
		}, []string{"reason"}),
		BidCommitment: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "bids",
			Name:      "commitment",
			Help:      "Distribution of accepted bid commitments",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),

		// Settlement metrics
		UnitsAllocated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "units_allocated_total",
			Help:      "Total number of asset units allocated to bidders",
		}),
		UnitsBurned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "units_burned_total",
			Help:      "Total number of unsold asset units burned",
		}),
		SettlementErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "errors_total",
			Help:      "Total number of settlements with failed treasury transfers",
		}),
		SettlementLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "settlement",
			Name:      "latency_seconds",
			Help:      "Settlement execution latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Treasury metrics
		WithdrawalsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "treasury",
			Name:      "withdrawals_total",
			Help:      "Total number of withdrawals paid out",
		}),
		PendingPayouts: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "treasury",
			Name:      "pending_payouts",
			Help:      "Current number of recipients with unclaimed payouts",
		}),

		// Scheduler metrics
		SweepsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "sweeps_total",
			Help:      "Total number of scheduler sweeps executed",
		}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "sweep_duration_seconds",
			Help:      "Scheduler sweep duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		// Database metrics
		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"operation"}),

		// Health metrics
		LastSuccessfulSweep: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_sweep_timestamp",
			Help:      "Unix timestamp of last successful scheduler sweep",
		}),
		UptimeSeconds: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordAuctionCreated increments the auctions created counter.
func RecordAuctionCreated() {
	DefaultMetrics.AuctionsCreated.Inc()
	DefaultMetrics.OpenAuctions.Inc()
}

// RecordAuctionEnded records an auction end with the reason it closed.
func RecordAuctionEnded(reason string) {
	DefaultMetrics.AuctionsEnded.WithLabelValues(reason).Inc()
	DefaultMetrics.OpenAuctions.Dec()
}

// RecordAuctionSettled records a completed settlement.
func RecordAuctionSettled(allocated, burned int64, seconds float64) {
	DefaultMetrics.AuctionsSettled.Inc()
	DefaultMetrics.UnitsAllocated.Add(float64(allocated))
	DefaultMetrics.UnitsBurned.Add(float64(burned))
	DefaultMetrics.SettlementLatency.Observe(seconds)
}

// RecordBidPlaced records an accepted bid.
func RecordBidPlaced(commitment float64) {
	DefaultMetrics.BidsPlaced.Inc()
	DefaultMetrics.BidCommitment.Observe(commitment)
}

// RecordBidRejected records a rejected bid by reason.
func RecordBidRejected(reason string) {
	DefaultMetrics.BidsRejected.WithLabelValues(reason).Inc()
}

// RecordSettlementError increments the settlement errors counter.
func RecordSettlementError() {
	DefaultMetrics.SettlementErrors.Inc()
}

// RecordWithdrawal increments the withdrawals counter.
func RecordWithdrawal() {
	DefaultMetrics.WithdrawalsProcessed.Inc()
}

// UpdatePendingPayouts updates the pending payouts gauge.
func UpdatePendingPayouts(recipients int) {
	DefaultMetrics.PendingPayouts.Set(float64(recipients))
}

// RecordSweep records a scheduler sweep.
func RecordSweep(seconds float64) {
	DefaultMetrics.SweepsTotal.Inc()
	DefaultMetrics.SweepDuration.Observe(seconds)
	DefaultMetrics.LastSuccessfulSweep.SetToCurrentTime()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}
