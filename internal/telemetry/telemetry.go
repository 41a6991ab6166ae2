// Package telemetry exposes prometheus metrics for the storefront and the mock API.
package telemetry

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_api_requests_total",
			Help: "Total number of requests sent to the storefront API",
		},
		[]string{"role", "method", "endpoint", "status"},
	)

	apiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_api_request_duration_seconds",
			Help:    "Storefront API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"role", "method", "endpoint"},
	)

	sshSessionsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_ssh_sessions_active",
			Help: "Number of open SSH sessions",
		},
		[]string{"console"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Handler serves the metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// roundTripper records every API call made by one client role.
type roundTripper struct {
	next http.RoundTripper
	role string
}

// RoundTripper wraps next so requests are counted and timed under role.
// A nil next uses http.DefaultTransport.
func RoundTripper(next http.RoundTripper, role string) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &roundTripper{next: next, role: role}
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)

	endpoint := Endpoint(req.URL.Path)
	status := "error"
	if err == nil {
		status = strconv.Itoa(resp.StatusCode)
	}

	apiRequestsTotal.WithLabelValues(rt.role, req.Method, endpoint, status).Inc()
	apiRequestDuration.WithLabelValues(rt.role, req.Method, endpoint).Observe(time.Since(start).Seconds())
	return resp, err
}

// Endpoint reduces a request path to its resource, e.g. /api/products/42 -> products,
// so ids do not end up in label values.
func Endpoint(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) > 0 && parts[0] == "api" {
		parts = parts[1:]
	}
	if len(parts) == 0 || parts[0] == "" {
		return "root"
	}
	return parts[0]
}

// SessionOpened marks an SSH session as open. The returned func marks it closed.
func SessionOpened(console string) func() {
	g := sshSessionsActive.WithLabelValues(console)
	g.Inc()
	return g.Dec
}

// GinMiddleware records request counts and latency per route template.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		httpRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}
