package corpusindex

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the corpus index's Prometheus instruments, grounded on
// jordigilh-kubernaut's metrics usage generalized to this package's ingest
// and search concerns.
type Metrics struct {
	ChunksIndexed  prometheus.Gauge
	IngestWarnings prometheus.Counter
	SearchLatency  prometheus.Histogram
}

// NewMetrics registers and returns a Metrics instance on reg. Pass
// prometheus.NewRegistry() in tests to avoid colliding with the global
// default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ChunksIndexed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nitilex_corpus_chunks_indexed",
			Help: "Number of corpus chunks currently held in the index.",
		}),
		IngestWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nitilex_corpus_ingest_warnings_total",
			Help: "Total number of warnings emitted during corpus ingest.",
		}),
		SearchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name: "nitilex_corpus_search_duration_seconds",
			Help: "Corpus index search latency in seconds.",
		}),
	}
	reg.MustRegister(m.ChunksIndexed, m.IngestWarnings, m.SearchLatency)
	return m
}
