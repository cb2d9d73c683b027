package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	RowsProcessed    prometheus.Counter
	LinksCaptured    *prometheus.CounterVec
	CaptureTime      prometheus.Histogram
	CaptureCandidate prometheus.Histogram
	PagesScraped     prometheus.Counter
	ListingsStored   prometheus.Counter
	ItemsSkipped     prometheus.Counter
	ErrorsCount      *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg.
// A nil reg registers on the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RowsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_processed_total",
			Help:      "The total number of batch rows processed",
		}),
		LinksCaptured: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "links_total",
			Help:      "The total number of links appended, by status",
		}, []string{"status"}),
		CaptureTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "capture_time_seconds",
			Help:      "Time taken to fill the search form and capture its result link",
			Buckets:   []float64{1, 2, 5, 10, 15, 20, 30, 45, 60, 90},
		}),
		CaptureCandidate: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "capture_candidates",
			Help:      "Number of pages opened during one capture window",
			Buckets:   []float64{0, 1, 2, 3, 5, 8},
		}),
		PagesScraped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_scraped_total",
			Help:      "The total number of result pages scraped",
		}),
		ListingsStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listings_stored_total",
			Help:      "The total number of listing records stored",
		}),
		ItemsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listing_items_skipped_total",
			Help:      "The total number of malformed listing items skipped",
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
