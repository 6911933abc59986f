// Package metrics exposes Prometheus metrics for the HTTP API and for calls
// to the Mapbox APIs.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider holds the collectors of one process in a private registry.
type Provider struct {
	reg             *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	upstreamLatency *prometheus.HistogramVec
}

// New creates a provider with the Go and process collectors registered.
func New(version string) *Provider {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	if version == "" {
		version = "dev"
	}
	build := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mapboxutil_build_info",
		Help: "Build info for this binary (value is always 1).",
	}, []string{"version"})
	build.WithLabelValues(version).Set(1)

	p := &Provider{
		reg: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"method", "route"}),
		upstreamLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mapbox_request_duration_seconds",
			Help:    "Latency of Mapbox API calls in seconds by method and status.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}, []string{"method", "status"}),
	}
	reg.MustRegister(build, p.httpRequests, p.httpDuration, p.upstreamLatency)
	return p
}

// Handler serves the registry in the Prometheus text format.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{})
}

// ObserveHTTP records a served request. route is the route pattern, not the path.
func (p *Provider) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveUpstream records a Mapbox API call. status is 0 when no response
// was received.
func (p *Provider) ObserveUpstream(method string, status int, elapsed time.Duration) {
	p.upstreamLatency.WithLabelValues(method, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
