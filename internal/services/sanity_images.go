package services

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/SirClappington/euclones/internal/models"
)

const sanityCDNBase = "https://cdn.sanity.io"

// SanityImageBuilder turns Sanity image asset references into CDN URLs with
// transform parameters.
type SanityImageBuilder struct {
	projectID string
	dataset   string
	baseURL   string
}

func NewSanityImageBuilder(projectID, dataset string) *SanityImageBuilder {
	return &SanityImageBuilder{
		projectID: projectID,
		dataset:   dataset,
		baseURL:   sanityCDNBase,
	}
}

// URL returns "" when the image has neither a parseable reference nor a
// resolved asset URL.
func (b *SanityImageBuilder) URL(img models.ImageRef, opts models.ImageOptions) string {
	base := ""
	if path, ok := parseSanityAssetRef(img.Ref); ok {
		base = fmt.Sprintf("%s/images/%s/%s/%s", b.baseURL, b.projectID, b.dataset, path)
	} else if img.URL != "" {
		base = img.URL
	} else {
		return ""
	}

	u, err := url.Parse(base)
	if err != nil {
		return ""
	}
	q := u.Query()
	if opts.Width > 0 {
		q.Set("w", strconv.Itoa(opts.Width))
	}
	if opts.Height > 0 {
		q.Set("h", strconv.Itoa(opts.Height))
	}
	if opts.Fit != "" {
		q.Set("fit", opts.Fit)
	}
	if opts.AutoFormat {
		q.Set("auto", "format")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// parseSanityAssetRef converts "image-<id>-<w>x<h>-<format>" into
// "<id>-<w>x<h>.<format>".
func parseSanityAssetRef(ref string) (string, bool) {
	parts := strings.Split(ref, "-")
	if len(parts) < 4 || parts[0] != "image" {
		return "", false
	}
	format := parts[len(parts)-1]
	dims := parts[len(parts)-2]
	if !strings.Contains(dims, "x") || format == "" {
		return "", false
	}
	id := strings.Join(parts[1:len(parts)-2], "-")
	return fmt.Sprintf("%s-%s.%s", id, dims, format), true
}

// DirectImageBuilder returns stored asset URLs unchanged. It serves backends
// whose image URLs are already final, such as signed storage links.
type DirectImageBuilder struct{}

func (DirectImageBuilder) URL(img models.ImageRef, _ models.ImageOptions) string {
	return img.URL
}
