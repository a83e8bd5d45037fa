// Package monitoring exposes the Prometheus metrics of the validation
// pipeline. Collectors are process-global; callers record through the
// helper functions so no other package imports the prometheus client.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/verimail/verimail/types"
)

var (
	validationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "verimail",
			Name:      "validations_total",
			Help:      "Validations performed, by final status",
		},
		[]string{"status"},
	)
	validationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "verimail",
			Name:      "validation_duration_seconds",
			Help:      "Wall time of a single validation",
			Buckets:   []float64{.005, .01, .05, .1, .5, 1, 2.5, 5, 10},
		},
	)
	validationScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "verimail",
			Name:      "validation_score",
			Help:      "Distribution of confidence scores",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		},
	)

	smtpProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "verimail",
			Subsystem: "smtp",
			Name:      "probes_total",
			Help:      "SMTP recipient probes, by ternary outcome",
		},
		[]string{"outcome"},
	)

	cacheOpsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "verimail",
			Subsystem: "cache",
			Name:      "ops_total",
			Help:      "Result cache lookups, by namespace and hit/miss",
		},
		[]string{"namespace", "outcome"},
	)

	batchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "verimail",
			Subsystem: "bulk",
			Name:      "batches_total",
			Help:      "Bulk validation batches processed",
		},
	)
	batchSize = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "verimail",
			Subsystem: "bulk",
			Name:      "batch_size",
			Help:      "Addresses per bulk batch, after deduplication",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 6),
		},
	)
)

func init() {
	prometheus.MustRegister(validationsTotal)
	prometheus.MustRegister(validationDuration)
	prometheus.MustRegister(validationScore)
	prometheus.MustRegister(smtpProbesTotal)
	prometheus.MustRegister(cacheOpsTotal)
	prometheus.MustRegister(batchesTotal)
	prometheus.MustRegister(batchSize)
}

// RecordValidation records one finished validation.
func RecordValidation(status types.Status, score int, elapsed time.Duration) {
	validationsTotal.WithLabelValues(string(status)).Inc()
	validationDuration.Observe(elapsed.Seconds())
	validationScore.Observe(float64(score))
}

// RecordSMTPProbe records the ternary outcome of one recipient probe.
func RecordSMTPProbe(outcome types.Deliverability) {
	smtpProbesTotal.WithLabelValues(string(outcome)).Inc()
}

// RecordCacheHit and RecordCacheMiss record result-cache lookups for
// the given cache namespace.
func RecordCacheHit(namespace string)  { cacheOpsTotal.WithLabelValues(namespace, "hit").Inc() }
func RecordCacheMiss(namespace string) { cacheOpsTotal.WithLabelValues(namespace, "miss").Inc() }

// RecordBatch records one processed bulk batch of n unique addresses.
func RecordBatch(n int) {
	batchesTotal.Inc()
	batchSize.Observe(float64(n))
}
