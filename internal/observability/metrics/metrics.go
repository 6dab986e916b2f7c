package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

// Metrics exposes application-level instruments. Labels are kept to
// low-cardinality values only: route, method, status, outcome.
type Metrics struct {
	httpDuration *prometheus.HistogramVec
	submissions  *prometheus.CounterVec
	notifyErrors prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intake_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		submissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "intake_submissions_total",
			Help: "Purchase request submissions by outcome.",
		}, []string{"outcome"}),
		notifyErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "intake_notification_failures_total",
			Help: "Notification deliveries that failed after a saved submission.",
		}),
	}
}

// GinMiddleware records one latency observation per request.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if strings.TrimSpace(route) == "" {
			route = "unknown"
		}
		m.httpDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// RecordSubmission counts one submission attempt.
func (m *Metrics) RecordSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}

// RecordNotifyFailure counts a delivery failure on a saved submission.
func (m *Metrics) RecordNotifyFailure() {
	if m == nil {
		return
	}
	m.notifyErrors.Inc()
}

var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)
