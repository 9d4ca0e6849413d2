package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "walaka"

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	sequencesIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequence",
			Name:      "issued_total",
			Help:      "Total number of document numbers generated.",
		},
		[]string{"scope_kind", "strategy"},
	)

	sequenceCollisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequence",
			Name:      "collisions_total",
			Help:      "Candidate numbers rejected by the recheck or by a write conflict.",
		},
		[]string{"scope_kind", "stage"},
	)

	gateDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Feature gate decisions by outcome and reason.",
		},
		[]string{"allowed", "reason"},
	)

	gateResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gate",
			Name:      "resolutions_total",
			Help:      "How sessions left the unknown state.",
		},
		[]string{"source"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "active",
			Help:      "Sessions currently held in the session store.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		sequencesIssued,
		sequenceCollisions,
		gateDecisions,
		gateResolutions,
		activeSessions,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// GinMiddleware records request counts and latency keyed by the matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		if path == "/metrics" {
			return
		}

		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordSequenceIssued counts a generated document number.
func RecordSequenceIssued(scopeKind, strategy string) {
	sequencesIssued.WithLabelValues(scopeKind, strategy).Inc()
}

// RecordSequenceCollision counts a rejected candidate. Stage is "recheck" or "write".
func RecordSequenceCollision(scopeKind, stage string) {
	sequenceCollisions.WithLabelValues(scopeKind, stage).Inc()
}

// RecordGateDecision counts one evaluated action.
func RecordGateDecision(allowed bool, reason string) {
	gateDecisions.WithLabelValues(strconv.FormatBool(allowed), reason).Inc()
}

// RecordGateResolution counts how a session status was obtained.
func RecordGateResolution(source string) {
	gateResolutions.WithLabelValues(source).Inc()
}

// SetActiveSessions reports the session store size.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
