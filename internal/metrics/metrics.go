package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geosearch",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "geosearch",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	searchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geosearch",
			Name:      "backend_search_duration_seconds",
			Help:      "Spatial search latency against the search backend",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "outcome"},
	)

	searchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "geosearch",
			Name:      "backend_search_results",
			Help:      "Number of documents returned per search",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"backend"},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(searchDuration)
	prometheus.MustRegister(searchResults)
}

// Middleware records HTTP request duration and count, labelled by route pattern.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		path := normalizePath(c.FullPath())

		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}

// normalizePath keeps unmatched paths out of the label set.
func normalizePath(path string) string {
	if path == "" {
		return "unknown"
	}
	return path
}

// ObserveSearch records one backend search. outcome is "ok" or "error".
func ObserveSearch(backend, outcome string, d time.Duration, results int) {
	searchDuration.WithLabelValues(backend, outcome).Observe(d.Seconds())
	if outcome == "ok" {
		searchResults.WithLabelValues(backend).Observe(float64(results))
	}
}
