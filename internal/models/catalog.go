package models

import "github.com/SirClappington/euclones/internal/richtext"

// ImageRef points at an image asset in the content backend. Ref is the backend
// asset reference; URL is the already-resolved asset URL when the backend
// provides one.
type ImageRef struct {
	Key string `json:"key,omitempty" firestore:"key,omitempty"`
	Ref string `json:"ref,omitempty" firestore:"ref,omitempty"`
	URL string `json:"url,omitempty" firestore:"url,omitempty"`
	Alt string `json:"alt,omitempty" firestore:"alt,omitempty"`
}

// HasAsset reports whether the image can be displayed at all.
func (i *ImageRef) HasAsset() bool {
	return i != nil && (i.Ref != "" || i.URL != "")
}

// FeatureEntry is one card of the "Key Features & Benefits" grid.
type FeatureEntry struct {
	Key         string `json:"key" firestore:"key"`
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description" firestore:"description"`
}

// ComparisonRow is one line of the feature comparison table. Either value may be
// empty.
type ComparisonRow struct {
	Key         string `json:"key" firestore:"key"`
	FeatureName string `json:"featureName" firestore:"featureName"`
	EUToolValue string `json:"euToolValue" firestore:"euToolValue"`
	USToolValue string `json:"usToolValue" firestore:"usToolValue"`
}

// PricingTier is a plan card. Price is display text, not a number.
type PricingTier struct {
	Key          string   `json:"key" firestore:"key"`
	Name         string   `json:"name" firestore:"name"`
	Price        string   `json:"price" firestore:"price"`
	FeaturesList []string `json:"featuresList" firestore:"featuresList"`
	CTAText      string   `json:"ctaText,omitempty" firestore:"ctaText,omitempty"`
}

// CatalogItemSummary is the projection used by the listing page.
type CatalogItemSummary struct {
	ID        string    `json:"id" firestore:"-"`
	Name      string    `json:"name" firestore:"name"`
	Tagline   string    `json:"tagline,omitempty" firestore:"tagline,omitempty"`
	Slug      string    `json:"slug" firestore:"slug"`
	HeroImage *ImageRef `json:"heroImage,omitempty" firestore:"heroImage,omitempty"`
}

// CatalogItem is a "tool" document: one EU alternative with everything its
// detail page shows.
type CatalogItem struct {
	ID                string    `json:"id" firestore:"-"`
	Name              string    `json:"name" firestore:"name"`
	Tagline           string    `json:"tagline,omitempty" firestore:"tagline,omitempty"`
	Slug              string    `json:"slug" firestore:"slug"`
	HeroImage         *ImageRef `json:"heroImage,omitempty" firestore:"heroImage,omitempty"`
	PrimaryCTAText    string    `json:"primaryCTAText,omitempty" firestore:"primaryCTAText,omitempty"`
	SecondaryCTAText  string    `json:"secondaryCTAText,omitempty" firestore:"secondaryCTAText,omitempty"`
	UniqueDescription string    `json:"uniqueDescription,omitempty" firestore:"uniqueDescription,omitempty"`

	// Body is decoded separately by stores that cannot map tagged unions.
	Body richtext.Body `json:"body,omitempty" firestore:"-"`

	UniqueFeatures   []FeatureEntry  `json:"uniqueFeatures,omitempty" firestore:"uniqueFeatures,omitempty"`
	ComparisonPoints []ComparisonRow `json:"comparisonPoints,omitempty" firestore:"comparisonPoints,omitempty"`
	PricingTiers     []PricingTier   `json:"pricingTiers,omitempty" firestore:"pricingTiers,omitempty"`

	UsAlternativeName  string `json:"usAlternativeName,omitempty" firestore:"usAlternativeName,omitempty"`
	ComparisonTitle    string `json:"comparisonTitle,omitempty" firestore:"comparisonTitle,omitempty"`
	ComparisonSubtitle string `json:"comparisonSubtitle,omitempty" firestore:"comparisonSubtitle,omitempty"`
	ComparisonTagline  string `json:"comparisonTagline,omitempty" firestore:"comparisonTagline,omitempty"`
}

// Summary projects the item down to its listing card.
func (c *CatalogItem) Summary() CatalogItemSummary {
	return CatalogItemSummary{
		ID:        c.ID,
		Name:      c.Name,
		Tagline:   c.Tagline,
		Slug:      c.Slug,
		HeroImage: c.HeroImage,
	}
}

// SharedContent is the site-wide singleton reused on every detail page.
type SharedContent struct {
	ID                  string     `json:"id" firestore:"-"`
	AboutUs             string     `json:"aboutUs,omitempty" firestore:"aboutUs,omitempty"`
	WhyEU               string     `json:"whyEu,omitempty" firestore:"whyEu,omitempty"`
	GDPRFocus           string     `json:"gdprFocus,omitempty" firestore:"gdprFocus,omitempty"`
	GlobalTestimonials  []string   `json:"globalTestimonials,omitempty" firestore:"globalTestimonials,omitempty"`
	GlobalCustomerLogos []ImageRef `json:"globalCustomerLogos,omitempty" firestore:"globalCustomerLogos,omitempty"`
}

// DetailPage is everything one detail page needs. Shared is nil when the site
// has no shared content yet.
type DetailPage struct {
	Item   *CatalogItem
	Shared *SharedContent
}
