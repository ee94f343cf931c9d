package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SirClappington/euclones/internal/config"
	"github.com/SirClappington/euclones/internal/richtext"
)

func newSanityTestStore(t *testing.T, handler http.HandlerFunc, token string) *SanityStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewSanityStore(config.SanityConfig{
		ProjectID:  "abc123",
		Dataset:    "production",
		APIVersion: "2023-05-03",
		Token:      token,
		APIHost:    srv.URL,
	}, 2*time.Second, zap.NewNop())
}

func writeResult(w http.ResponseWriter, result string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ms": 3, "result": ` + result + `}`))
}

func TestSanityAPIHost(t *testing.T) {
	assert.Equal(t, "https://abc123.api.sanity.io", SanityAPIHost("abc123", false))
	assert.Equal(t, "https://abc123.apicdn.sanity.io", SanityAPIHost("abc123", true))
}

func TestSanityItemBySlug(t *testing.T) {
	var gotPath, gotQuery, gotSlug string
	store := newSanityTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		gotSlug = r.URL.Query().Get("$slug")
		writeResult(w, `{
			"id": "tool-1",
			"name": "Proton Mail",
			"slug": "proton-mail",
			"heroImage": {"ref": "image-abc-600x400-png", "alt": "Hero"},
			"body": [{"_type": "callout", "_key": "c1", "tone": "info", "text": "Hosted in Switzerland"}],
			"pricingTiers": [{"key": "p1", "name": "Free", "price": "0 EUR", "featuresList": ["1 address"]}]
		}`)
	}, "")

	item, err := store.ItemBySlug(context.Background(), "proton-mail")
	require.NoError(t, err)
	require.NotNil(t, item)

	assert.Equal(t, "/v2023-05-03/data/query/production", gotPath)
	assert.Equal(t, itemQuery, gotQuery)
	var slug string
	require.NoError(t, json.Unmarshal([]byte(gotSlug), &slug))
	assert.Equal(t, "proton-mail", slug)

	assert.Equal(t, "Proton Mail", item.Name)
	assert.Equal(t, "image-abc-600x400-png", item.HeroImage.Ref)
	require.Len(t, item.Body, 1)
	assert.Equal(t, richtext.KindCallout, item.Body[0].Kind())
	require.Len(t, item.PricingTiers, 1)
	assert.Equal(t, []string{"1 address"}, item.PricingTiers[0].FeaturesList)
}

func TestSanityNullResultIsNoMatch(t *testing.T) {
	store := newSanityTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		writeResult(w, "null")
	}, "")

	item, err := store.ItemBySlug(context.Background(), "nonexistent-tool")
	require.NoError(t, err)
	assert.Nil(t, item)

	shared, err := store.SharedContent(context.Background())
	require.NoError(t, err)
	assert.Nil(t, shared)

	items, err := store.ListItems(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSanityListingAndSlugs(t *testing.T) {
	store := newSanityTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("query") {
		case listingQuery:
			writeResult(w, `[{"id": "a", "name": "A", "slug": "a"}, {"id": "b", "name": "B", "slug": "b"}]`)
		case slugsQuery:
			writeResult(w, `["a", "b"]`)
		default:
			http.Error(w, "unexpected query", http.StatusBadRequest)
		}
	}, "")

	items, err := store.ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[1].Slug)

	slugs, err := store.Slugs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, slugs)
}

func TestSanityErrorResponse(t *testing.T) {
	store := newSanityTestStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"type": "queryParseError", "description": "unexpected token"}}`))
	}, "")

	_, err := store.SharedContent(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unexpected token")
	assert.ErrorContains(t, err, "400")
}

func TestSanitySendsToken(t *testing.T) {
	var auth string
	store := newSanityTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeResult(w, "[]")
	}, "sk-secret")

	_, err := store.Slugs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-secret", auth)
}
