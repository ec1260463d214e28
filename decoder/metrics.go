package decoder

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hypothesesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smt_decoder_hypotheses_created_total",
		Help: "Hypotheses stored in the search arena",
	}, []string{"algorithm"})

	hypothesesRecombined = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smt_decoder_hypotheses_recombined_total",
		Help: "Hypotheses merged into an equivalent hypothesis",
	}, []string{"algorithm"})

	hypothesesPruned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smt_decoder_hypotheses_pruned_total",
		Help: "Hypotheses discarded by histogram or threshold pruning",
	}, []string{"algorithm"})

	searchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "smt_decoder_search_failures_total",
		Help: "Sentences without a complete derivation",
	}, []string{"algorithm"})

	decodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "smt_decoder_decode_seconds",
		Help:    "Time spent decoding one sentence",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	}, []string{"algorithm"})
)

func recordMetrics(algo Algorithm, st Stats, failed bool) {
	label := string(algo)
	hypothesesCreated.WithLabelValues(label).Add(float64(st.Created))
	hypothesesRecombined.WithLabelValues(label).Add(float64(st.Recombined))
	hypothesesPruned.WithLabelValues(label).Add(float64(st.Pruned))
	decodeDuration.WithLabelValues(label).Observe(st.Duration.Seconds())
	if failed {
		searchFailures.WithLabelValues(label).Inc()
	}
}
