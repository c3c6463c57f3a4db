// Package metrics exposes the Prometheus collectors for the API process.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "light_api",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "light_api",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "light_api",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "light_api",
			Subsystem: "ratelimit",
			Name:      "rejections_total",
			Help:      "Total number of requests rejected by the rate limiter.",
		},
		[]string{"path"},
	)

	gasFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "light_api",
			Subsystem: "gas",
			Name:      "fetches_total",
			Help:      "Total number of gas estimation requests by chain and outcome.",
		},
		[]string{"chain_id", "outcome"},
	)

	gasDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "light_api",
			Subsystem: "gas",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of gas provider requests.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"chain_id"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		rateLimited,
		gasFetches,
		gasDuration,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InFlight adjusts the in-flight request gauge by delta.
func InFlight(delta float64) {
	httpInFlight.Add(delta)
}

// RecordHTTPRequest records one completed HTTP request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	path = CanonicalPath(path)
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordRateLimited counts one throttled request.
func RecordRateLimited(path string) {
	rateLimited.WithLabelValues(CanonicalPath(path)).Inc()
}

// RecordGasFetch records one gas estimation attempt. outcome is "success",
// "error" or "unsupported".
func RecordGasFetch(chainID uint64, outcome string, duration time.Duration) {
	chain := strconv.FormatUint(chainID, 10)
	if outcome == "unsupported" {
		// unbounded label values stay out of the registry
		chain = "other"
	}
	gasFetches.WithLabelValues(chain, outcome).Inc()
	if duration > 0 {
		gasDuration.WithLabelValues(chain).Observe(duration.Seconds())
	}
}

// CanonicalPath collapses request paths into a bounded label set.
func CanonicalPath(raw string) string {
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")
	switch parts[0] {
	case "paymaster", "wallet", "gas":
		if len(parts) >= 2 {
			return "/" + parts[0] + "/" + parts[1]
		}
		return "/" + parts[0]
	case "api-docs", "swagger-ui", "redoc", "rapidoc":
		return "/docs"
	case "check", "health", "metrics":
		return "/" + parts[0]
	default:
		return "/other"
	}
}
