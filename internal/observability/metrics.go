// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the Prometheus collectors for snapshot builds,
// recommendation requests and arXiv acquisition. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// SnapshotBuilds counts snapshot builds by outcome.
	SnapshotBuilds *prometheus.CounterVec

	// SnapshotBuildDuration observes end-to-end snapshot build time in seconds.
	SnapshotBuildDuration prometheus.Histogram

	// CorpusSize is the number of papers in the current snapshot.
	CorpusSize prometheus.Gauge

	// VocabularySize is the number of TF-IDF terms in the current snapshot.
	VocabularySize prometheus.Gauge

	// DroppedRecords counts snapshot rows dropped during preparation.
	DroppedRecords prometheus.Counter

	// Recommendations counts recommendation requests by outcome.
	Recommendations *prometheus.CounterVec

	// RecommendationResults observes the number of results per request.
	RecommendationResults prometheus.Histogram

	// FetchPages counts arXiv API pages fetched, by outcome.
	FetchPages *prometheus.CounterVec

	// FetchRetries counts retried arXiv requests.
	FetchRetries prometheus.Counter

	// HTTPRequests counts API requests by route and status class.
	HTTPRequests *prometheus.CounterVec
}

// NewMetrics registers all collectors on reg under namespace.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SnapshotBuilds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_builds_total",
			Help:      "Total number of snapshot builds by outcome",
		}, []string{"outcome"}),
		SnapshotBuildDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_build_duration_seconds",
			Help:      "Duration of snapshot builds in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		CorpusSize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_papers",
			Help:      "Number of papers in the current snapshot",
		}),
		VocabularySize: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "vocabulary_terms",
			Help:      "Number of TF-IDF terms in the current snapshot",
		}),
		DroppedRecords: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_records_total",
			Help:      "Total number of snapshot rows dropped during preparation",
		}),
		Recommendations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recommendations_total",
			Help:      "Total number of recommendation requests by outcome",
		}, []string{"outcome"}),
		RecommendationResults: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recommendation_results",
			Help:      "Number of results returned per recommendation request",
			Buckets:   []float64{0, 1, 5, 10, 20, 50, 100},
		}),
		FetchPages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arxiv_pages_total",
			Help:      "Total number of arXiv API pages fetched by outcome",
		}, []string{"outcome"}),
		FetchRetries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arxiv_retries_total",
			Help:      "Total number of retried arXiv requests",
		}),
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of API requests by route and status class",
		}, []string{"route", "status"}),
	}
}

// RecordSnapshotBuilt records a successful build.
func (m *Metrics) RecordSnapshotBuilt(papers, vocabulary, dropped int, d time.Duration) {
	if m == nil {
		return
	}
	m.SnapshotBuilds.WithLabelValues(OutcomeSuccess).Inc()
	m.SnapshotBuildDuration.Observe(d.Seconds())
	m.CorpusSize.Set(float64(papers))
	m.VocabularySize.Set(float64(vocabulary))
	m.DroppedRecords.Add(float64(dropped))
}

// RecordSnapshotFailed records a failed build.
func (m *Metrics) RecordSnapshotFailed(d time.Duration) {
	if m == nil {
		return
	}
	m.SnapshotBuilds.WithLabelValues(OutcomeFailure).Inc()
	m.SnapshotBuildDuration.Observe(d.Seconds())
}

// RecordRecommendation records a served request and its result count.
func (m *Metrics) RecordRecommendation(results int) {
	if m == nil {
		return
	}
	m.Recommendations.WithLabelValues(OutcomeSuccess).Inc()
	m.RecommendationResults.Observe(float64(results))
}

// RecordRecommendationFailed records a rejected request.
func (m *Metrics) RecordRecommendationFailed() {
	if m == nil {
		return
	}
	m.Recommendations.WithLabelValues(OutcomeFailure).Inc()
}

// RecordFetchPage records one arXiv page fetch.
func (m *Metrics) RecordFetchPage(err error) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.FetchPages.WithLabelValues(outcome).Inc()
}

// RecordFetchRetry records a retried arXiv request.
func (m *Metrics) RecordFetchRetry() {
	if m == nil {
		return
	}
	m.FetchRetries.Inc()
}

// RecordHTTPRequest records an API request. status is the response code.
func (m *Metrics) RecordHTTPRequest(route string, status int) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, statusClass(status)).Inc()
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
