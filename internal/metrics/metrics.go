package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/joseph-ayodele/tkp/constants"
)

var (
	QuotesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tkp_quotes_total",
			Help: "Quote requests by outcome",
		},
		[]string{"status"},
	)

	QuoteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tkp_quote_duration_seconds",
			Help:    "End-to-end quote assembly time, model call included",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"status"},
	)

	DocumentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tkp_documents_total",
			Help: "Rendered documents by format and result",
		},
		[]string{"format", "result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tkp_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "method", "code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tkp_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
)

// Recorder feeds pipeline events into the package collectors.
type Recorder struct{}

func (Recorder) ObserveQuote(status constants.OutcomeStatus, elapsed time.Duration) {
	QuotesTotal.WithLabelValues(string(status)).Inc()
	QuoteDuration.WithLabelValues(string(status)).Observe(elapsed.Seconds())
}

func (Recorder) ObserveDocument(format string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	DocumentsTotal.WithLabelValues(format, result).Inc()
}

// GinMiddleware counts requests per matched route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
