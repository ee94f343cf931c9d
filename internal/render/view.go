package render

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/SirClappington/euclones/internal/comparison"
	"github.com/SirClappington/euclones/internal/models"
)

// Default labels used when content leaves them unset.
const (
	DefaultTierCTA  = "Get Started"
	DefaultLogoAlt  = "Customer logo"
	heroAltSuffix   = " hero image"
	siteTitle       = "EU Software Alternatives"
	siteDescription = "Discover EU-based alternatives to popular US tools with enhanced GDPR compliance"
)

// Image sizes requested from the image backend.
var (
	heroImageOptions = models.ImageOptions{Width: 600, Height: 400, AutoFormat: true}
	cardImageOptions = models.ImageOptions{Width: 480, Height: 320, Fit: "crop", AutoFormat: true}
	logoImageOptions = models.ImageOptions{Width: 160, Height: 50, Fit: "max", AutoFormat: true}
	bodyImageOptions = models.ImageOptions{Width: 1200, AutoFormat: true}
)

// PageMeta is shared by every page layout.
type PageMeta struct {
	Title       string
	Description string
	// Canonical is the absolute page URL, empty when no base URL is configured.
	Canonical string
	Year      int
}

// Image is a resolved, displayable image.
type Image struct {
	URL    string
	Alt    string
	Width  int
	Height int
}

// Card is one entry of the listing grid.
type Card struct {
	Key     string
	Name    string
	Tagline string
	Href    string
	Image   *Image
}

type ListingView struct {
	Meta  PageMeta
	Cards []Card
}

type TierView struct {
	Key      string
	Name     string
	Price    string
	Features []string
	CTAText  string
}

// DetailView is the fully resolved detail page. Zero values mean "section
// absent" and the templates render nothing for them.
type DetailView struct {
	Meta         PageMeta
	Name         string
	Tagline      string
	PrimaryCTA   string
	SecondaryCTA string
	Hero         *Image
	Overview     string
	Body         template.HTML
	WhyEU        string
	GDPRFocus    string
	Features     []models.FeatureEntry
	Comparison   *comparison.Table
	Logos        []Image
	Testimonials []string
	Pricing      []TierView
	AboutUs      string
}

// ToolPath is the site path of a tool's detail page.
func ToolPath(slug string) string {
	return "/tools/" + url.PathEscape(slug)
}

func (r *Renderer) meta(path, title, description string) PageMeta {
	if description == "" {
		description = siteDescription
	}
	meta := PageMeta{Title: title, Description: description, Year: r.now().Year()}
	if r.baseURL != "" && path != "" {
		meta.Canonical = strings.TrimSuffix(r.baseURL, "/") + path
	}
	return meta
}

func (r *Renderer) image(img *models.ImageRef, opts models.ImageOptions, fallbackAlt string) *Image {
	if !img.HasAsset() {
		return nil
	}
	src := r.images.URL(*img, opts)
	if src == "" {
		return nil
	}
	alt := img.Alt
	if alt == "" {
		alt = fallbackAlt
	}
	return &Image{URL: src, Alt: alt, Width: opts.Width, Height: opts.Height}
}

// BuildListingView maps summaries to cards. An empty result is kept empty so
// the template can show its placeholder.
func (r *Renderer) BuildListingView(items []models.CatalogItemSummary) *ListingView {
	cards := make([]Card, 0, len(items))
	for i := range items {
		item := &items[i]
		cards = append(cards, Card{
			Key:     item.ID,
			Name:    item.Name,
			Tagline: item.Tagline,
			Href:    ToolPath(item.Slug),
			Image:   r.image(item.HeroImage, cardImageOptions, item.Name),
		})
	}
	return &ListingView{Meta: r.meta("/", siteTitle, ""), Cards: cards}
}

// BuildDetailView resolves every section of a detail page. Shared may be nil.
func (r *Renderer) BuildDetailView(page *models.DetailPage) (*DetailView, error) {
	item := page.Item
	view := &DetailView{
		Meta:         r.meta(ToolPath(item.Slug), item.Name+" | "+siteTitle, item.Tagline),
		Name:         item.Name,
		Tagline:      item.Tagline,
		PrimaryCTA:   item.PrimaryCTAText,
		SecondaryCTA: item.SecondaryCTAText,
		Hero:         r.image(item.HeroImage, heroImageOptions, item.Name+heroAltSuffix),
		Overview:     item.UniqueDescription,
		Features:     item.UniqueFeatures,
		Comparison:   comparison.BuildTable(item),
		Pricing:      buildTiers(item.PricingTiers),
	}

	if len(item.Body) > 0 {
		body, err := r.body.Render(item.Body)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(string(body)) != "" {
			view.Body = body
		}
	}

	if shared := page.Shared; shared != nil {
		view.WhyEU = shared.WhyEU
		view.GDPRFocus = shared.GDPRFocus
		view.AboutUs = shared.AboutUs
		view.Testimonials = shared.GlobalTestimonials
		for i := range shared.GlobalCustomerLogos {
			if logo := r.image(&shared.GlobalCustomerLogos[i], logoImageOptions, DefaultLogoAlt); logo != nil {
				view.Logos = append(view.Logos, *logo)
			}
		}
	}
	return view, nil
}

func buildTiers(tiers []models.PricingTier) []TierView {
	if len(tiers) == 0 {
		return nil
	}
	out := make([]TierView, 0, len(tiers))
	for _, tier := range tiers {
		cta := tier.CTAText
		if cta == "" {
			cta = DefaultTierCTA
		}
		out = append(out, TierView{
			Key:      tier.Key,
			Name:     tier.Name,
			Price:    tier.Price,
			Features: tier.FeaturesList,
			CTAText:  cta,
		})
	}
	return out
}
