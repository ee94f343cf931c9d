// Package metrics exposes Prometheus collectors for page rendering, content
// store queries and HTTP traffic.
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

// Page render outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeEmpty    = "empty"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Metrics holds the site collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	PageRenders        *prometheus.CounterVec
	StoreQueryDuration *prometheus.HistogramVec
	HTTPRequests       *prometheus.CounterVec
	HTTPDuration       *prometheus.HistogramVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PageRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "site_page_renders_total",
			Help: "Pages rendered, by page and outcome",
		}, []string{"page", "outcome"}),
		StoreQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "site_store_query_duration_seconds",
			Help:    "Latency of content store queries",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"backend", "operation"}),
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "site_http_requests_total",
			Help: "HTTP requests served",
		}, []string{"method", "route", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "site_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// ObserveStoreQuery records the time since start for one store operation.
func (m *Metrics) ObserveStoreQuery(backend, operation string, start time.Time) {
	if m == nil {
		return
	}
	m.StoreQueryDuration.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
}

// PageRendered counts one rendered page.
func (m *Metrics) PageRendered(page, outcome string) {
	if m == nil {
		return
	}
	m.PageRenders.WithLabelValues(page, outcome).Inc()
}

// Middleware records request count and latency labelled by the matched route
// template, so slugs do not explode label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler serves the collectors gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
