// Package metrics defines the Prometheus collectors of the catalog service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	NearbyResults  prometheus.Histogram
	NearbyDuration prometheus.Histogram
	ShareCache     *prometheus.CounterVec
	TrophyWrites   *prometheus.CounterVec
}

// New registers every collector on a fresh registry, so several instances
// can live in one process (tests build one per router).
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trophy_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trophy_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		NearbyResults: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "trophy_nearby_results",
			Help:    "Trophies returned per nearby search.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
		NearbyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "trophy_nearby_duration_seconds",
			Help:    "Nearby search latency including the exact distance filter.",
			Buckets: prometheus.DefBuckets,
		}),
		ShareCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trophy_share_cache_total",
			Help: "Share metadata cache lookups by result (hit, miss, error).",
		}, []string{"result"}),
		TrophyWrites: f.NewCounterVec(prometheus.CounterOpts{
			Name: "trophy_writes_total",
			Help: "Accepted trophy mutations by operation.",
		}, []string{"op"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
