// Package handlers serves the catalog pages over HTTP.
package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/SirClappington/euclones/internal/errors"
	"github.com/SirClappington/euclones/internal/metrics"
	"github.com/SirClappington/euclones/internal/models"
	"github.com/SirClappington/euclones/internal/render"
)

// Resolver is the part of the content service the pages need.
type Resolver interface {
	ResolveCatalogListing(ctx context.Context) ([]models.CatalogItemSummary, error)
	ResolveDetailPage(ctx context.Context, slug string) (*models.DetailPage, error)
}

type PageHandler struct {
	content  Resolver
	renderer *render.Renderer
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

func NewPageHandler(content Resolver, renderer *render.Renderer, logger *zap.Logger, m *metrics.Metrics) *PageHandler {
	return &PageHandler{
		content:  content,
		renderer: renderer,
		logger:   logger,
		metrics:  m,
	}
}

// NewRouter wires the site routes and middleware. gatherer backs /metrics and
// may be nil to disable it.
func NewRouter(h *PageHandler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(RequestIDMiddleware(), LoggerMiddleware(h.logger), h.RecoveryMiddleware(), h.metrics.Middleware())

	r.GET("/", h.Listing)
	r.GET("/tools", h.Listing)
	r.GET("/tools/:slug", h.Detail)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))
	}
	r.NoRoute(h.NotFound)
	return r
}

func (h *PageHandler) Listing(c *gin.Context) {
	items, err := h.content.ResolveCatalogListing(c.Request.Context())
	if err != nil {
		h.handleError(c, render.PageListing, err)
		return
	}

	outcome := metrics.OutcomeOK
	if len(items) == 0 {
		outcome = metrics.OutcomeEmpty
	}
	if !h.writePage(c, http.StatusOK, func(w io.Writer) error {
		return h.renderer.Listing(w, items)
	}) {
		outcome = metrics.OutcomeError
	}
	h.metrics.PageRendered(render.PageListing, outcome)
}

func (h *PageHandler) Detail(c *gin.Context) {
	slug := c.Param("slug")

	page, err := h.content.ResolveDetailPage(c.Request.Context(), slug)
	if err != nil {
		h.handleError(c, render.PageDetail, err, zap.String("slug", slug))
		return
	}

	outcome := metrics.OutcomeOK
	if !h.writePage(c, http.StatusOK, func(w io.Writer) error {
		return h.renderer.Detail(w, page)
	}) {
		outcome = metrics.OutcomeError
	}
	h.metrics.PageRendered(render.PageDetail, outcome)
}

func (h *PageHandler) NotFound(c *gin.Context) {
	h.metrics.PageRendered(render.PageNotFound, metrics.OutcomeNotFound)
	h.writePage(c, http.StatusNotFound, h.renderer.NotFound)
}

// handleError converts resolver errors into pages. Store details are logged,
// never shown.
func (h *PageHandler) handleError(c *gin.Context, page string, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("page", page),
		zap.String("request_id", requestID(c)),
		zap.Error(err),
	)

	switch errors.TypeOf(err) {
	case errors.ErrorTypeNotFound:
		h.logger.Debug("Page not found", fields...)
		h.metrics.PageRendered(page, metrics.OutcomeNotFound)
		h.writePage(c, http.StatusNotFound, h.renderer.NotFound)
	case errors.ErrorTypeStoreUnavailable:
		h.logger.Error("Content store unavailable", fields...)
		h.metrics.PageRendered(page, metrics.OutcomeError)
		h.writePage(c, http.StatusServiceUnavailable, h.renderer.Error)
	default:
		h.logger.Error("Failed to build page", fields...)
		h.metrics.PageRendered(page, metrics.OutcomeError)
		h.writePage(c, http.StatusInternalServerError, h.renderer.Error)
	}
}

// fallbackErrorPage is served when even the error template fails.
const fallbackErrorPage = `<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>Error</title></head>
<body><h1>Something went wrong</h1><p><a href="/">Return to Home</a></p></body></html>`

// writePage renders into a buffer so a template failure can still produce a
// clean response. It reports whether the requested page was written; on
// failure the visitor gets the error page with a 500 instead.
func (h *PageHandler) writePage(c *gin.Context, status int, renderPage func(io.Writer) error) bool {
	var buf bytes.Buffer
	err := renderPage(&buf)
	if err == nil {
		c.Data(status, "text/html; charset=utf-8", buf.Bytes())
		return true
	}

	h.logger.Error("Failed to render page",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestID(c)),
		zap.Error(err),
	)
	_ = c.Error(err)

	buf.Reset()
	if err := h.renderer.Error(&buf); err != nil {
		h.logger.Error("Failed to render error page", zap.Error(err))
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", []byte(fallbackErrorPage))
		return false
	}
	c.Data(http.StatusInternalServerError, "text/html; charset=utf-8", buf.Bytes())
	return false
}
