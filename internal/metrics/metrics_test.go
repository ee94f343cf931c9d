package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPageRendered(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.PageRendered("detail", OutcomeOK)
	m.PageRendered("detail", OutcomeOK)
	m.PageRendered("detail", OutcomeNotFound)

	assert.InDelta(t, 2, testutil.ToFloat64(m.PageRenders.WithLabelValues("detail", OutcomeOK)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.PageRenders.WithLabelValues("detail", OutcomeNotFound)), 0)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.PageRendered("listing", OutcomeOK)
		m.ObserveStoreQuery("sanity", "listing", time.Now())
	})
}

func TestMiddlewareUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m := New(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/tools/:slug", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, slug := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tools/"+slug, http.NoBody))
	}

	assert.InDelta(t, 2, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/tools/:slug", "200")), 0)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))
	assert.Contains(t, w.Body.String(), "site_http_requests_total")
}
