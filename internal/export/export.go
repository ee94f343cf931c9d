// Package export renders the whole catalog to a directory of static HTML files.
package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SirClappington/euclones/internal/errors"
	"github.com/SirClappington/euclones/internal/metrics"
	"github.com/SirClappington/euclones/internal/models"
	"github.com/SirClappington/euclones/internal/render"
)

const defaultConcurrency = 4

// Resolver is the part of the content service the exporter needs.
type Resolver interface {
	ResolveCatalogListing(ctx context.Context) ([]models.CatalogItemSummary, error)
	ResolveDetailPage(ctx context.Context, slug string) (*models.DetailPage, error)
	EnumerateSlugs(ctx context.Context) ([]string, error)
}

// Publisher uploads an exported directory somewhere public.
type Publisher interface {
	PublishDir(ctx context.Context, dir string) (int, error)
}

// Result summarises one export run.
type Result struct {
	Dir     string
	Pages   int
	Skipped []string
}

type Exporter struct {
	content     Resolver
	renderer    *render.Renderer
	logger      *zap.Logger
	metrics     *metrics.Metrics
	concurrency int
}

func New(content Resolver, renderer *render.Renderer, logger *zap.Logger, m *metrics.Metrics) *Exporter {
	return &Exporter{
		content:     content,
		renderer:    renderer,
		logger:      logger,
		metrics:     m,
		concurrency: defaultConcurrency,
	}
}

// Export writes index.html, tools/index.html, one tools/<slug>/index.html per
// slug and 404.html into dir, replacing its previous contents. Pages are
// rendered into a staging directory next to dir that only replaces it once
// every page has been written, so a failed run leaves the last export intact.
// Slugs that disappear between enumeration and rendering are skipped; any
// store failure aborts the run.
func (e *Exporter) Export(ctx context.Context, dir string) (*Result, error) {
	target, err := checkOutputDir(dir)
	if err != nil {
		return nil, err
	}

	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", parent, err)
	}
	staging, err := os.MkdirTemp(parent, ".export-*")
	if err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	defer os.RemoveAll(staging)

	result, err := e.renderAll(ctx, staging)
	if err != nil {
		return nil, err
	}
	if err := replaceDir(staging, target); err != nil {
		return nil, err
	}
	result.Dir = target

	e.logger.Info("Exported static site",
		zap.String("dir", target),
		zap.Int("pages", result.Pages),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func (e *Exporter) renderAll(ctx context.Context, dir string) (*Result, error) {
	items, err := e.content.ResolveCatalogListing(ctx)
	if err != nil {
		return nil, err
	}
	listing := func(w io.Writer) error { return e.renderer.Listing(w, items) }
	for _, name := range []string{"index.html", filepath.Join("tools", "index.html")} {
		if err := writePage(filepath.Join(dir, name), listing); err != nil {
			return nil, err
		}
	}
	e.metrics.PageRendered(render.PageListing, metrics.OutcomeOK)

	slugs, err := e.content.EnumerateSlugs(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{Pages: 2}
	var mu sync.Mutex
	skip := func(slug string) {
		mu.Lock()
		result.Skipped = append(result.Skipped, slug)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for _, slug := range slugs {
		if !safeSlug(slug) {
			e.logger.Warn("Skipping tool with unsafe slug", zap.String("slug", slug))
			skip(slug)
			continue
		}
		g.Go(func() error {
			page, err := e.content.ResolveDetailPage(gctx, slug)
			if errors.IsNotFound(err) {
				e.logger.Warn("Skipping tool removed during export", zap.String("slug", slug))
				e.metrics.PageRendered(render.PageDetail, metrics.OutcomeNotFound)
				skip(slug)
				return nil
			}
			if err != nil {
				return err
			}

			path := filepath.Join(dir, "tools", slug, "index.html")
			if err := writePage(path, func(w io.Writer) error { return e.renderer.Detail(w, page) }); err != nil {
				return err
			}
			e.metrics.PageRendered(render.PageDetail, metrics.OutcomeOK)
			mu.Lock()
			result.Pages++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := writePage(filepath.Join(dir, "404.html"), e.renderer.NotFound); err != nil {
		return nil, err
	}
	result.Pages++
	sort.Strings(result.Skipped)
	return result, nil
}

// safeSlug reports whether slug can be used as a single path element.
func safeSlug(slug string) bool {
	return slug != "" && slug != "." && slug != ".." && !strings.ContainsAny(slug, `/\`)
}

// checkOutputDir returns the absolute output path. It refuses the filesystem
// root and any directory that contains the working directory, since the
// export replaces the whole tree.
func checkOutputDir(dir string) (string, error) {
	refuse := errors.NewValidationError(fmt.Sprintf("refusing to export into %q", dir))
	if dir == "" {
		return "", refuse
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if abs == filepath.Dir(abs) {
		return "", refuse
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolve working dir: %w", err)
	}
	if within(wd, abs) {
		return "", refuse
	}
	return abs, nil
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// replaceDir moves staging into place at target. The previous target is moved
// aside first and restored if the swap fails.
func replaceDir(staging, target string) error {
	if err := os.Chmod(staging, 0o755); err != nil {
		return fmt.Errorf("chmod staging dir: %w", err)
	}

	backup := staging + ".old"
	hadPrevious := true
	if err := os.Rename(target, backup); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("move previous export aside: %w", err)
		}
		hadPrevious = false
	}

	if err := os.Rename(staging, target); err != nil {
		if hadPrevious {
			_ = os.Rename(backup, target)
		}
		return fmt.Errorf("move export into place: %w", err)
	}
	if hadPrevious {
		if err := os.RemoveAll(backup); err != nil {
			return fmt.Errorf("remove previous export: %w", err)
		}
	}
	return nil
}

func writePage(path string, renderPage func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := renderPage(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Publish uploads a finished export and returns the number of files sent.
func Publish(ctx context.Context, publisher Publisher, dir string) (int, error) {
	n, err := publisher.PublishDir(ctx, dir)
	if err != nil {
		return n, fmt.Errorf("publish %s: %w", dir, err)
	}
	return n, nil
}
