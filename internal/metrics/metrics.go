package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ReconcileRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lucid_reconcile_runs_total",
		Help: "Total number of reconciliation passes",
	})

	ReconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "lucid_reconcile_duration_seconds",
		Help:    "Time taken by one reconciliation pass",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
	})

	SourceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lucid_source_failures_total",
		Help: "Number of times a whole source was unavailable",
	}, []string{"source"})

	DetailFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lucid_detail_failures_total",
		Help: "Number of signatures kept unclassified because their detail lookup failed",
	})

	DecodeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lucid_decode_failures_total",
		Help: "Number of program accounts skipped because they did not decode",
	})

	ClassificationFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lucid_classification_fallbacks_total",
		Help: "Program-related records resolved by the fallback policy",
	}, []string{"kind"})

	DormantWallets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "lucid_dormant_wallets",
		Help: "Dormant owners found by the last aggregation",
	})

	PriceFeedFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lucid_price_feed_failures_total",
		Help: "Number of failed price feed lookups",
	})
)
