package richtext

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// BlockRenderer writes the HTML for one block.
type BlockRenderer interface {
	RenderBlock(w io.Writer, b Block) error
}

// BlockRendererFunc adapts a function to BlockRenderer.
type BlockRendererFunc func(w io.Writer, b Block) error

func (f BlockRendererFunc) RenderBlock(w io.Writer, b Block) error { return f(w, b) }

// ImageURLFunc resolves an image block to a displayable URL. ref is the asset
// reference, fallback the URL stored with the block (possibly empty).
type ImageURLFunc func(ref, fallback string) string

// Option configures a Renderer.
type Option func(*Renderer)

// WithImageURL sets how image blocks are turned into URLs.
func WithImageURL(fn ImageURLFunc) Option {
	return func(r *Renderer) { r.imageURL = fn }
}

// WithBlockRenderer registers or replaces the renderer for kind. A KindBlock
// renderer must leave list items without their closing </li>.
func WithBlockRenderer(kind Kind, br BlockRenderer) Option {
	return func(r *Renderer) { r.renderers[kind] = br }
}

// Renderer turns a Body into HTML. Blocks without a registered renderer are
// skipped.
type Renderer struct {
	renderers map[Kind]BlockRenderer
	imageURL  ImageURLFunc
	markdown  goldmark.Markdown
	policy    *bluemonday.Policy
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		renderers: make(map[Kind]BlockRenderer),
		imageURL:  func(_, fallback string) string { return fallback },
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:    bluemonday.UGCPolicy(),
	}
	r.renderers[KindBlock] = BlockRendererFunc(r.renderText)
	r.renderers[KindImage] = BlockRendererFunc(r.renderImage)
	r.renderers[KindCode] = BlockRendererFunc(renderCode)
	r.renderers[KindCallout] = BlockRendererFunc(renderCallout)
	r.renderers[KindMarkdown] = BlockRendererFunc(r.renderMarkdown)

	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render produces the HTML for body. Consecutive list items of the same list
// type are wrapped in a single <ul> or <ol>; an item with a higher level opens
// a nested list inside the preceding item.
func (r *Renderer) Render(body Body) (template.HTML, error) {
	var buf bytes.Buffer
	var open []string // list tags, outermost first; each has an unclosed <li>

	for _, block := range body {
		level, tag := 0, ""
		if tb, ok := block.(*TextBlock); ok && tb.ListItem != "" {
			level, tag = max(tb.Level, 1), listTag(tb.ListItem)
		}

		for len(open) > level || (level > 0 && len(open) == level && open[len(open)-1] != tag) {
			buf.WriteString("</li>" + closeTag(open[len(open)-1]))
			open = open[:len(open)-1]
		}
		if level > 0 && len(open) == level {
			buf.WriteString("</li>")
		}
		for len(open) < level {
			buf.WriteString("<" + tag + ">")
			open = append(open, tag)
		}

		br, ok := r.renderers[block.Kind()]
		if !ok {
			continue
		}
		if err := br.RenderBlock(&buf, block); err != nil {
			return "", fmt.Errorf("render %s block %q: %w", block.Kind(), block.BlockKey(), err)
		}
	}
	for i := len(open) - 1; i >= 0; i-- {
		buf.WriteString("</li>" + closeTag(open[i]))
	}

	// #nosec G203 -- every renderer escapes or sanitises its output
	return template.HTML(buf.String()), nil
}

func listTag(listItem string) string {
	if listItem == "number" {
		return "ol"
	}
	return "ul"
}

func closeTag(tag string) string { return "</" + tag + ">" }

var styleTags = map[string]string{
	"normal":     "p",
	"h1":         "h2",
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"blockquote": "blockquote",
}

var decoratorTags = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

// renderText leaves list items open; Render closes them once it knows whether
// a nested list follows.
func (r *Renderer) renderText(w io.Writer, b Block) error {
	tb, ok := b.(*TextBlock)
	if !ok {
		return fmt.Errorf("unexpected block type %T", b)
	}

	tag := "li"
	if tb.ListItem == "" {
		tag = styleTags[tb.Style]
		if tag == "" {
			tag = "p"
		}
	}

	links := make(map[string]string, len(tb.MarkDefs))
	for _, def := range tb.MarkDefs {
		if def.Type == "link" && safeHref(def.Href) {
			links[def.Key] = def.Href
		}
	}

	var sb strings.Builder
	sb.WriteString("<" + tag + ">")
	for _, span := range tb.Children {
		sb.WriteString(renderSpan(span, links))
	}
	if tb.ListItem == "" {
		sb.WriteString(closeTag(tag))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func renderSpan(span Span, links map[string]string) string {
	var open, closing []string
	for _, mark := range span.Marks {
		if tag, ok := decoratorTags[mark]; ok {
			open = append(open, "<"+tag+">")
			closing = append([]string{closeTag(tag)}, closing...)
			continue
		}
		if href, ok := links[mark]; ok {
			open = append(open, `<a href="`+template.HTMLEscapeString(href)+`">`)
			closing = append([]string{"</a>"}, closing...)
		}
	}
	return strings.Join(open, "") + template.HTMLEscapeString(span.Text) + strings.Join(closing, "")
}

func safeHref(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "", "http", "https", "mailto":
		return true
	}
	return false
}

func (r *Renderer) renderImage(w io.Writer, b Block) error {
	ib, ok := b.(*ImageBlock)
	if !ok {
		return fmt.Errorf("unexpected block type %T", b)
	}
	src := r.imageURL(ib.Ref, ib.URL)
	if src == "" {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(`<figure class="my-8"><img src="` + template.HTMLEscapeString(src) +
		`" alt="` + template.HTMLEscapeString(ib.Alt) + `" class="rounded-lg w-full h-auto">`)
	if ib.Caption != "" {
		sb.WriteString(`<figcaption class="text-sm text-gray-500 mt-2">` + template.HTMLEscapeString(ib.Caption) + `</figcaption>`)
	}
	sb.WriteString("</figure>")
	_, err := io.WriteString(w, sb.String())
	return err
}

func renderCode(w io.Writer, b Block) error {
	cb, ok := b.(*CodeBlock)
	if !ok {
		return fmt.Errorf("unexpected block type %T", b)
	}
	class := ""
	if cb.Language != "" {
		class = ` class="language-` + template.HTMLEscapeString(cb.Language) + `"`
	}
	_, err := io.WriteString(w, `<pre class="bg-gray-900 text-gray-100 p-4 rounded-lg overflow-x-auto"><code`+
		class+`>`+template.HTMLEscapeString(cb.Code)+`</code></pre>`)
	return err
}

var calloutClasses = map[string]string{
	"info":    "bg-blue-50 border-blue-200",
	"warning": "bg-amber-50 border-amber-200",
	"success": "bg-green-50 border-green-200",
}

func renderCallout(w io.Writer, b Block) error {
	cb, ok := b.(*CalloutBlock)
	if !ok {
		return fmt.Errorf("unexpected block type %T", b)
	}
	if strings.TrimSpace(cb.Text) == "" {
		return nil
	}
	classes, ok := calloutClasses[cb.Tone]
	if !ok {
		classes = calloutClasses["info"]
	}
	_, err := io.WriteString(w, `<aside class="my-6 border p-4 rounded-lg `+classes+`">`+
		template.HTMLEscapeString(cb.Text)+`</aside>`)
	return err
}

func (r *Renderer) renderMarkdown(w io.Writer, b Block) error {
	mb, ok := b.(*MarkdownBlock)
	if !ok {
		return fmt.Errorf("unexpected block type %T", b)
	}
	var buf bytes.Buffer
	if err := r.markdown.Convert([]byte(mb.Source), &buf); err != nil {
		return fmt.Errorf("convert markdown: %w", err)
	}
	_, err := w.Write(r.policy.SanitizeBytes(buf.Bytes()))
	return err
}
