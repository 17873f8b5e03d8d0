// Package metrics holds Prometheus instruments that are used across the
// service.  All collectors are registered with the global registry, so the
// /metrics route served by internal/app exposes them without extra wiring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PlatformInfo is set to 1 for the detected platform and environment.
	PlatformInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "afterlight_platform_info",
			Help: "Detected hosting platform and resolved environment name.",
		}, []string{"platform", "environment"})

	PortFallbackTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "afterlight_port_fallback_total",
			Help: "Times an unusable PORT value was replaced by the default.",
		})

	StartupFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "afterlight_startup_failures_total",
			Help: "Startup aborts by reason.",
		}, []string{"reason"})

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "afterlight_http_requests_total",
			Help: "HTTP requests by method and status code.",
		}, []string{"method", "code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "afterlight_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method"})
)

// Startup failure reasons.
const (
	ReasonMissingEnv = "missing_env"
	ReasonLaunch     = "launch"
)

func init() {
	prometheus.MustRegister(
		PlatformInfo,
		PortFallbackTotal,
		StartupFailuresTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}
