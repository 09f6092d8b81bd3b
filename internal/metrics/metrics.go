// Package metrics exposes Prometheus instrumentation for Vigil.
//
// Collectors are registered on the default registry via promauto; the
// exposition endpoint serves process/runtime collectors alongside the
// custom ones below.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vigil",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method, route, and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	activeAlerts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "vigil",
		Subsystem: "alerts",
		Name:      "active",
		Help:      "Active (unacknowledged) alerts by severity.",
	}, []string{"severity"})

	samplingPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vigil",
		Subsystem: "sampler",
		Name:      "passes_total",
		Help:      "Completed sampling passes by result.",
	}, []string{"result"})

	probeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vigil",
		Subsystem: "sampler",
		Name:      "probe_failures_total",
		Help:      "Individual server probes that reported unhealthy.",
	})
)

// SetActiveAlerts replaces the active-alert gauge values per severity.
func SetActiveAlerts(counts map[string]int64) {
	for severity, count := range counts {
		activeAlerts.WithLabelValues(severity).Set(float64(count))
	}
}

// IncSamplingPass records the outcome of one sampling pass.
func IncSamplingPass(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	samplingPasses.WithLabelValues(result).Inc()
}

// IncProbeFailure records one unhealthy probe outcome.
func IncProbeFailure() {
	probeFailures.Inc()
}

// Handler returns the Prometheus exposition handler for GET /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware observes request duration for every handled request.
//
// The route template (c.FullPath) is used instead of the raw URL so
// parameterized paths do not explode label cardinality; unmatched
// routes are grouped under "unmatched".
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
