package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	DocumentsWritten *prometheus.CounterVec
	ImportRows       *prometheus.CounterVec
	DanglingRefs     prometheus.Counter
	ImportDuration   prometheus.Histogram
	ErrorsCount      *prometheus.CounterVec
	SummaryCacheHits prometheus.Counter
	SummaryCacheMiss prometheus.Counter
}

// NewMetrics creates new prometheus metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		DocumentsWritten: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_written_total",
			Help:      "The total number of documents written per collection",
		}, []string{"collection", "operation"}),
		ImportRows: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "import_rows_total",
			Help:      "The total number of imported rows by outcome",
		}, []string{"entity", "outcome"}),
		DanglingRefs: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dangling_references_total",
			Help:      "The total number of references that resolved to a missing document",
		}),
		ImportDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "import_duration_seconds",
			Help:      "Time taken to run one import batch",
			Buckets:   prometheus.DefBuckets,
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
		SummaryCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_hits_total",
			Help:      "The total number of reference summaries served from cache",
		}),
		SummaryCacheMiss: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summary_cache_misses_total",
			Help:      "The total number of reference summaries fetched from the store",
		}),
	}
}
