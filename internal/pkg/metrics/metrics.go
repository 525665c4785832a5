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

// Enrollment outcomes recorded by RecordEnrollment
const (
	OutcomeCreated      = "created"
	OutcomeRejectedFull = "rejected_full"
	OutcomeDuplicate    = "duplicate"
	OutcomeTransferred  = "transferred"
	OutcomeCanceled     = "canceled"
	OutcomeError        = "error"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swimdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swimdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "swimdesk_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	enrollmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swimdesk_enrollments_total",
			Help: "Enrollment attempts by outcome",
		},
		[]string{"outcome"},
	)

	usageCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swimdesk_usage_cache_lookups_total",
			Help: "Session usage cache lookups by result",
		},
		[]string{"result"},
	)

	eventPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swimdesk_event_publish_failures_total",
			Help: "Enrollment events that could not be published",
		},
	)

	wsSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "swimdesk_ws_subscribers",
			Help: "Connected live availability websocket clients",
		},
	)
)

// Middleware records request count, latency and in-flight requests
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		c.Next()

		// Use the route pattern to keep label cardinality bounded
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordEnrollment counts one enrollment outcome
func RecordEnrollment(outcome string) {
	enrollmentsTotal.WithLabelValues(outcome).Inc()
}

// RecordUsageCacheLookup counts a usage cache hit or miss
func RecordUsageCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	usageCacheLookups.WithLabelValues(result).Inc()
}

// RecordEventPublishFailure counts a failed event publish
func RecordEventPublishFailure() {
	eventPublishFailures.Inc()
}

// SetWebsocketSubscribers sets the connected websocket client gauge
func SetWebsocketSubscribers(n int) {
	wsSubscribers.Set(float64(n))
}
