// Package render turns resolved content into HTML pages using the embedded
// html/template set.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/SirClappington/euclones/internal/errors"
	"github.com/SirClappington/euclones/internal/models"
	"github.com/SirClappington/euclones/internal/richtext"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names, also used as metric labels.
const (
	PageListing  = "listing"
	PageDetail   = "detail"
	PageNotFound = "not_found"
	PageError    = "error"
)

var pageFiles = map[string]string{
	PageListing:  "templates/listing.html",
	PageDetail:   "templates/detail.html",
	PageNotFound: "templates/notfound.html",
	PageError:    "templates/error.html",
}

// textSection is the data for the "text-section" partial.
type textSection struct {
	ID      string
	Heading string
	Class   string
	Text    string
}

var funcs = template.FuncMap{
	"textSection": func(id, heading, class, text string) textSection {
		return textSection{ID: id, Heading: heading, Class: class, Text: text}
	},
}

// ImageURLBuilder resolves an image reference to a URL, or "" when it cannot.
type ImageURLBuilder interface {
	URL(img models.ImageRef, opts models.ImageOptions) string
}

type Option func(*Renderer)

// WithClock overrides the time source used for the footer year.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// WithBaseURL sets the public site origin used for canonical links.
func WithBaseURL(baseURL string) Option {
	return func(r *Renderer) { r.baseURL = baseURL }
}

// WithRichText adds options to the body renderer, e.g. extra block renderers.
func WithRichText(opts ...richtext.Option) Option {
	return func(r *Renderer) { r.bodyOpts = append(r.bodyOpts, opts...) }
}

// Renderer holds the parsed page templates. It is safe for concurrent use.
type Renderer struct {
	pages    map[string]*template.Template
	images   ImageURLBuilder
	body     *richtext.Renderer
	bodyOpts []richtext.Option
	baseURL  string
	now      func() time.Time
}

func New(images ImageURLBuilder, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		pages:  make(map[string]*template.Template, len(pageFiles)),
		images: images,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	bodyOpts := append([]richtext.Option{
		richtext.WithImageURL(func(ref, fallback string) string {
			return images.URL(models.ImageRef{Ref: ref, URL: fallback}, bodyImageOptions)
		}),
	}, r.bodyOpts...)
	r.body = richtext.NewRenderer(bodyOpts...)

	for name, file := range pageFiles {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/partials.html", file)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// execute renders into a buffer first so a failing template never leaves a
// half-written page on w.
func (r *Renderer) execute(w io.Writer, page string, data any) error {
	var buf bytes.Buffer
	if err := r.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		return errors.NewRenderError(page, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write %s page: %w", page, err)
	}
	return nil
}

// Listing renders the catalog listing. An empty item list renders the
// "no tools" placeholder.
func (r *Renderer) Listing(w io.Writer, items []models.CatalogItemSummary) error {
	return r.execute(w, PageListing, r.BuildListingView(items))
}

func (r *Renderer) Detail(w io.Writer, page *models.DetailPage) error {
	if page == nil || page.Item == nil {
		return errors.NewRenderError(PageDetail, fmt.Errorf("no catalog item"))
	}
	view, err := r.BuildDetailView(page)
	if err != nil {
		return errors.NewRenderError(PageDetail, err)
	}
	return r.execute(w, PageDetail, view)
}

func (r *Renderer) NotFound(w io.Writer) error {
	return r.execute(w, PageNotFound, struct{ Meta PageMeta }{r.meta("", "Page not found | "+siteTitle, "")})
}

// Error renders the generic failure page. It never includes error details.
func (r *Renderer) Error(w io.Writer) error {
	return r.execute(w, PageError, struct{ Meta PageMeta }{r.meta("", "Something went wrong | "+siteTitle, "")})
}
