package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/SirClappington/euclones/internal/config"
	"github.com/SirClappington/euclones/internal/models"
)

// GROQ projections reshape Sanity documents into the models' JSON layout so
// results decode without an intermediate wire type.
const (
	imageProjection = `{"ref": asset._ref, "url": asset->url, alt}`

	listingQuery = `*[_type == "tool" && defined(slug.current)]{
  "id": _id, name, tagline, "slug": slug.current,
  "heroImage": heroImage` + imageProjection + `
}`

	itemQuery = `*[_type == "tool" && slug.current == $slug][0]{
  "id": _id, name, tagline, "slug": slug.current,
  primaryCTAText, secondaryCTAText, uniqueDescription,
  usAlternativeName, comparisonTitle, comparisonSubtitle, comparisonTagline,
  "heroImage": heroImage` + imageProjection + `,
  body[]{..., _type == "image" => {"asset": {"_ref": asset._ref, "url": asset->url}}},
  "uniqueFeatures": uniqueFeatures[]{"key": _key, title, description},
  "comparisonPoints": comparisonPoints[]{"key": _key, featureName, euToolValue, usToolValue},
  "pricingTiers": pricingTiers[]{"key": _key, name, price, featuresList, ctaText}
}`

	sharedContentQuery = `*[_type == "commonContent"][0]{
  "id": _id, aboutUs, whyEu, gdprFocus, globalTestimonials,
  "globalCustomerLogos": globalCustomerLogos[]{"key": _key, "ref": asset._ref, "url": asset->url, alt}
}`

	slugsQuery = `*[_type == "tool" && defined(slug.current)][].slug.current`
)

type sanityQueryResponse struct {
	Ms     int             `json:"ms"`
	Result json.RawMessage `json:"result"`
}

type sanityErrorResponse struct {
	Error struct {
		Type        string `json:"type"`
		Description string `json:"description"`
	} `json:"error"`
}

// SanityStore queries a Sanity dataset over the HTTP query API.
type SanityStore struct {
	client  *resty.Client
	dataset string
	logger  *zap.Logger
}

// SanityAPIHost returns the project API host, using the CDN host when useCDN is
// set.
func SanityAPIHost(projectID string, useCDN bool) string {
	if useCDN {
		return fmt.Sprintf("https://%s.apicdn.sanity.io", projectID)
	}
	return fmt.Sprintf("https://%s.api.sanity.io", projectID)
}

func NewSanityStore(cfg config.SanityConfig, timeout time.Duration, logger *zap.Logger) *SanityStore {
	host := cfg.APIHost
	if host == "" {
		host = SanityAPIHost(cfg.ProjectID, cfg.UseCDN)
	}
	apiVersion := strings.TrimPrefix(cfg.APIVersion, "v")

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(host, "/") + "/v" + apiVersion).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &SanityStore{
		client:  client,
		dataset: cfg.Dataset,
		logger:  logger,
	}
}

func (s *SanityStore) Backend() string { return config.BackendSanity }

// fetch runs a GROQ query and decodes its result into out. It reports false
// when the result is null.
func (s *SanityStore) fetch(ctx context.Context, query string, params map[string]any, out any) (bool, error) {
	req := s.client.R().
		SetContext(ctx).
		SetPathParam("dataset", s.dataset).
		SetQueryParam("query", query).
		ForceContentType("application/json")

	for name, value := range params {
		encoded, err := json.Marshal(value)
		if err != nil {
			return false, fmt.Errorf("encode query param %s: %w", name, err)
		}
		req.SetQueryParam("$"+name, string(encoded))
	}

	var result sanityQueryResponse
	var apiErr sanityErrorResponse
	resp, err := req.
		SetResult(&result).
		SetError(&apiErr).
		Get("/data/query/{dataset}")
	if err != nil {
		return false, fmt.Errorf("sanity query: %w", err)
	}
	if resp.IsError() {
		msg := apiErr.Error.Description
		if msg == "" {
			msg = resp.Status()
		}
		return false, fmt.Errorf("sanity query failed (%d): %s", resp.StatusCode(), msg)
	}

	s.logger.Debug("Sanity query completed",
		zap.Int("server_ms", result.Ms),
		zap.Duration("duration", resp.Time()),
	)

	if len(result.Result) == 0 || string(result.Result) == "null" {
		return false, nil
	}
	if err := json.Unmarshal(result.Result, out); err != nil {
		return false, fmt.Errorf("decode sanity result: %w", err)
	}
	return true, nil
}

func (s *SanityStore) ListItems(ctx context.Context) ([]models.CatalogItemSummary, error) {
	var items []models.CatalogItemSummary
	if _, err := s.fetch(ctx, listingQuery, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *SanityStore) ItemBySlug(ctx context.Context, slug string) (*models.CatalogItem, error) {
	var item models.CatalogItem
	found, err := s.fetch(ctx, itemQuery, map[string]any{"slug": slug}, &item)
	if err != nil || !found {
		return nil, err
	}
	return &item, nil
}

func (s *SanityStore) SharedContent(ctx context.Context) (*models.SharedContent, error) {
	var shared models.SharedContent
	found, err := s.fetch(ctx, sharedContentQuery, nil, &shared)
	if err != nil || !found {
		return nil, err
	}
	return &shared, nil
}

func (s *SanityStore) Slugs(ctx context.Context) ([]string, error) {
	var slugs []string
	if _, err := s.fetch(ctx, slugsQuery, nil, &slugs); err != nil {
		return nil, err
	}
	return slugs, nil
}
