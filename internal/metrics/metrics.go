package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors exported by the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	CacheDecisions *prometheus.CounterVec
	SourceFetches  *prometheus.CounterVec
	FetchDuration  prometheus.Histogram
	Conversions    *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CacheDecisions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_cache_decisions_total",
				Help: "Freshness policy outcomes for cached snapshots",
			},
			[]string{"outcome"},
		),
		SourceFetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_source_fetches_total",
				Help: "Remote snapshot fetches by result",
			},
			[]string{"result"},
		),
		FetchDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rate_source_fetch_duration_seconds",
				Help:    "Duration of remote snapshot fetches",
				Buckets: prometheus.DefBuckets,
			},
		),
		Conversions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_conversions_total",
				Help: "Currency conversions by result",
			},
			[]string{"result"},
		),
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),
	}
}

func (m *Metrics) CacheDecision(outcome string) {
	if m == nil {
		return
	}
	m.CacheDecisions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) SourceFetch(err error, took time.Duration) {
	if m == nil {
		return
	}
	m.SourceFetches.WithLabelValues(result(err)).Inc()
	m.FetchDuration.Observe(took.Seconds())
}

func (m *Metrics) Conversion(err error) {
	if m == nil {
		return
	}
	m.Conversions.WithLabelValues(result(err)).Inc()
}

func (m *Metrics) HTTPRequest(path, method, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(path, method, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(path, method).Observe(took.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
