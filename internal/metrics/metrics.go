// Package metrics records pipeline counters in a private Prometheus registry.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wallet-credit-score/internal/aggregator"
	"wallet-credit-score/internal/scorer"
)

// Transaction outcome label values.
const (
	OutcomeApplied       = "applied"
	OutcomeMissingWallet = "missing_wallet"
	OutcomeBadPrice      = "bad_price"
	OutcomeBadTimestamp  = "bad_timestamp"
	OutcomeNullData      = "null_action_data"
	OutcomeFault         = "fault"
	OutcomeRejected      = "rejected"
)

// Recorder owns the pipeline metrics.
type Recorder struct {
	registry *prometheus.Registry

	transactions    *prometheus.CounterVec
	amountFallbacks prometheus.Counter
	walletsScored   prometheus.Counter
	scores          prometheus.Histogram
	runDuration     prometheus.Histogram
	lastRun         prometheus.Gauge
}

// NewRecorder registers all collectors on a fresh registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		transactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walletscore",
			Name:      "transactions_total",
			Help:      "Input transactions by processing outcome.",
		}, []string{"outcome"}),
		amountFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "walletscore",
			Name:      "amount_fallbacks_total",
			Help:      "Transactions whose amount could not be parsed and counted as zero.",
		}),
		walletsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "walletscore",
			Name:      "wallets_scored_total",
			Help:      "Wallets that received a score.",
		}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "walletscore",
			Name:      "score",
			Help:      "Distribution of wallet credit scores.",
			Buckets:   prometheus.LinearBuckets(100, 100, 10),
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "walletscore",
			Name:      "pipeline_duration_seconds",
			Help:      "Time spent aggregating and scoring one batch.",
			Buckets:   prometheus.DefBuckets,
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "walletscore",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed pipeline run.",
		}),
	}

	r.registry.MustRegister(
		r.transactions,
		r.amountFallbacks,
		r.walletsScored,
		r.scores,
		r.runDuration,
		r.lastRun,
	)
	return r
}

// Registry exposes the underlying registry, e.g. for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveRun records one pipeline execution.
func (r *Recorder) ObserveRun(stats aggregator.Stats, rejected int, records []scorer.ScoreRecord, elapsed time.Duration) {
	r.transactions.WithLabelValues(OutcomeApplied).Add(float64(stats.Applied))
	r.transactions.WithLabelValues(OutcomeMissingWallet).Add(float64(stats.MissingWallet))
	r.transactions.WithLabelValues(OutcomeBadPrice).Add(float64(stats.BadPrice))
	r.transactions.WithLabelValues(OutcomeBadTimestamp).Add(float64(stats.BadTimestamp))
	r.transactions.WithLabelValues(OutcomeNullData).Add(float64(stats.NullActionData))
	r.transactions.WithLabelValues(OutcomeFault).Add(float64(stats.Faults))
	r.transactions.WithLabelValues(OutcomeRejected).Add(float64(rejected))
	r.amountFallbacks.Add(float64(stats.AmountFallbacks))

	r.walletsScored.Add(float64(len(records)))
	for _, rec := range records {
		r.scores.Observe(float64(rec.Score))
	}

	r.runDuration.Observe(elapsed.Seconds())
	r.lastRun.SetToCurrentTime()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// WriteTextfile dumps the registry for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
