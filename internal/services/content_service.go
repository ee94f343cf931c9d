package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/SirClappington/euclones/internal/errors"
	"github.com/SirClappington/euclones/internal/metrics"
	"github.com/SirClappington/euclones/internal/models"
)

// ContentStore is a read-only view of the content backend. Lookups that match
// nothing return a nil record and a nil error; errors are reserved for
// transport and decoding failures.
type ContentStore interface {
	Backend() string
	ListItems(ctx context.Context) ([]models.CatalogItemSummary, error)
	ItemBySlug(ctx context.Context, slug string) (*models.CatalogItem, error)
	SharedContent(ctx context.Context) (*models.SharedContent, error)
	Slugs(ctx context.Context) ([]string, error)
}

// ContentService resolves page data from a ContentStore and normalises store
// failures into STORE_UNAVAILABLE errors and missing items into NOT_FOUND.
type ContentService struct {
	store   ContentStore
	logger  *zap.Logger
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewContentService(store ContentStore, logger *zap.Logger, m *metrics.Metrics, timeout time.Duration) *ContentService {
	return &ContentService{
		store:   store,
		logger:  logger,
		metrics: m,
		timeout: timeout,
	}
}

func (s *ContentService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ResolveCatalogListing returns every item with a non-empty slug. It returns
// an empty, non-nil slice when there are none.
func (s *ContentService) ResolveCatalogListing(ctx context.Context) ([]models.CatalogItemSummary, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	items, err := s.store.ListItems(ctx)
	s.metrics.ObserveStoreQuery(s.store.Backend(), "listing", start)
	if err != nil {
		return nil, errors.NewStoreUnavailableError(s.store.Backend(), err)
	}

	listing := make([]models.CatalogItemSummary, 0, len(items))
	for _, item := range items {
		if item.Slug == "" {
			continue
		}
		listing = append(listing, item)
	}

	s.logger.Debug("Resolved catalog listing", zap.Int("count", len(listing)))
	return listing, nil
}

// ResolveCatalogItem returns the item whose slug matches exactly, or a
// NOT_FOUND APIError.
func (s *ContentService) ResolveCatalogItem(ctx context.Context, slug string) (*models.CatalogItem, error) {
	if slug == "" {
		return nil, errors.NewNotFoundError("tool", slug)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	item, err := s.store.ItemBySlug(ctx, slug)
	s.metrics.ObserveStoreQuery(s.store.Backend(), "item", start)
	if err != nil {
		return nil, errors.NewStoreUnavailableError(s.store.Backend(), err)
	}
	if item == nil {
		return nil, errors.NewNotFoundError("tool", slug)
	}
	return item, nil
}

// ResolveSharedContent returns the site-wide singleton, or nil when the store
// has none yet.
func (s *ContentService) ResolveSharedContent(ctx context.Context) (*models.SharedContent, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	shared, err := s.store.SharedContent(ctx)
	s.metrics.ObserveStoreQuery(s.store.Backend(), "shared", start)
	if err != nil {
		return nil, errors.NewStoreUnavailableError(s.store.Backend(), err)
	}
	if shared == nil {
		s.logger.Debug("No shared content document found")
	}
	return shared, nil
}

// EnumerateSlugs returns the distinct non-empty slugs, in store order.
func (s *ContentService) EnumerateSlugs(ctx context.Context) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	slugs, err := s.store.Slugs(ctx)
	s.metrics.ObserveStoreQuery(s.store.Backend(), "slugs", start)
	if err != nil {
		return nil, errors.NewStoreUnavailableError(s.store.Backend(), err)
	}

	seen := make(map[string]struct{}, len(slugs))
	out := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if slug == "" {
			continue
		}
		if _, dup := seen[slug]; dup {
			continue
		}
		seen[slug] = struct{}{}
		out = append(out, slug)
	}
	return out, nil
}

// ResolveDetailPage fetches the item and the shared content concurrently. An
// item failure cancels the shared fetch and decides the outcome, so a missing
// slug is always reported as not found. A shared content failure fails the page
// but leaves the item lookup to finish.
func (s *ContentService) ResolveDetailPage(ctx context.Context, slug string) (*models.DetailPage, error) {
	var page models.DetailPage
	var itemErr error

	sharedCtx, cancelShared := context.WithCancel(ctx)
	defer cancelShared()

	var g errgroup.Group
	g.Go(func() error {
		item, err := s.ResolveCatalogItem(ctx, slug)
		if err != nil {
			itemErr = err
			cancelShared()
			return err
		}
		page.Item = item
		return nil
	})
	g.Go(func() error {
		shared, err := s.ResolveSharedContent(sharedCtx)
		if err != nil {
			return err
		}
		page.Shared = shared
		return nil
	})

	if err := g.Wait(); err != nil {
		if itemErr != nil {
			return nil, itemErr
		}
		return nil, err
	}
	return &page, nil
}
