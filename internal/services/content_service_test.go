package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/SirClappington/euclones/internal/errors"
	"github.com/SirClappington/euclones/internal/metrics"
	"github.com/SirClappington/euclones/internal/models"
)

// stubStore lets tests fail individual store operations.
type stubStore struct {
	*SnapshotStore
	listErr   error
	itemErr   error
	sharedErr error
	slugs     []string
	itemCalls atomic.Int32
}

func (s *stubStore) ListItems(ctx context.Context) ([]models.CatalogItemSummary, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.SnapshotStore.ListItems(ctx)
}

func (s *stubStore) ItemBySlug(ctx context.Context, slug string) (*models.CatalogItem, error) {
	s.itemCalls.Add(1)
	if s.itemErr != nil {
		return nil, s.itemErr
	}
	return s.SnapshotStore.ItemBySlug(ctx, slug)
}

func (s *stubStore) SharedContent(ctx context.Context) (*models.SharedContent, error) {
	if s.sharedErr != nil {
		return nil, s.sharedErr
	}
	return s.SnapshotStore.SharedContent(ctx)
}

func (s *stubStore) Slugs(ctx context.Context) ([]string, error) {
	if s.slugs != nil {
		return s.slugs, nil
	}
	return s.SnapshotStore.Slugs(ctx)
}

func fixtureSnapshot() Snapshot {
	return Snapshot{
		Tools: []models.CatalogItem{
			{ID: "t1", Name: "Proton Mail", Slug: "proton-mail", Tagline: "Private email"},
			{ID: "t2", Name: "Draft", Slug: ""},
			{ID: "t3", Name: "Nextcloud", Slug: "nextcloud"},
		},
		CommonContent: &models.SharedContent{ID: "c1", AboutUs: "We list EU tools."},
	}
}

func newTestService(store ContentStore) *ContentService {
	return NewContentService(store, zap.NewNop(), nil, time.Second)
}

func TestResolveCatalogListing(t *testing.T) {
	svc := newTestService(NewSnapshotStore(fixtureSnapshot()))

	items, err := svc.ResolveCatalogListing(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "proton-mail", items[0].Slug)
	assert.Equal(t, "nextcloud", items[1].Slug)
}

func TestResolveCatalogListingEmpty(t *testing.T) {
	svc := newTestService(NewSnapshotStore(Snapshot{}))

	items, err := svc.ResolveCatalogListing(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestResolveCatalogListingStoreFailure(t *testing.T) {
	store := &stubStore{SnapshotStore: NewSnapshotStore(fixtureSnapshot()), listErr: fmt.Errorf("connection refused")}
	svc := newTestService(store)

	_, err := svc.ResolveCatalogListing(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrorTypeStoreUnavailable, errors.TypeOf(err))
	assert.ErrorContains(t, err, "connection refused")
}

func TestResolveCatalogItem(t *testing.T) {
	svc := newTestService(NewSnapshotStore(fixtureSnapshot()))

	item, err := svc.ResolveCatalogItem(context.Background(), "nextcloud")
	require.NoError(t, err)
	assert.Equal(t, "Nextcloud", item.Name)
}

func TestResolveCatalogItemNotFound(t *testing.T) {
	svc := newTestService(NewSnapshotStore(fixtureSnapshot()))

	for _, slug := range []string{"nonexistent-tool", "Nextcloud", "nextcloud "} {
		_, err := svc.ResolveCatalogItem(context.Background(), slug)
		assert.True(t, errors.IsNotFound(err), "slug %q", slug)
	}
}

func TestResolveCatalogItemEmptySlugSkipsStore(t *testing.T) {
	store := &stubStore{SnapshotStore: NewSnapshotStore(fixtureSnapshot())}
	svc := newTestService(store)

	_, err := svc.ResolveCatalogItem(context.Background(), "")
	assert.True(t, errors.IsNotFound(err))
	assert.Zero(t, store.itemCalls.Load())
}

func TestResolveCatalogItemStoreFailure(t *testing.T) {
	store := &stubStore{SnapshotStore: NewSnapshotStore(fixtureSnapshot()), itemErr: context.DeadlineExceeded}
	svc := newTestService(store)

	_, err := svc.ResolveCatalogItem(context.Background(), "nextcloud")
	assert.Equal(t, errors.ErrorTypeStoreUnavailable, errors.TypeOf(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestResolveSharedContentAbsent(t *testing.T) {
	svc := newTestService(NewSnapshotStore(Snapshot{}))

	shared, err := svc.ResolveSharedContent(context.Background())
	require.NoError(t, err)
	assert.Nil(t, shared)
}

func TestEnumerateSlugs(t *testing.T) {
	store := &stubStore{
		SnapshotStore: NewSnapshotStore(Snapshot{}),
		slugs:         []string{"a", "", "b", "a", "c"},
	}
	svc := newTestService(store)

	slugs, err := svc.EnumerateSlugs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, slugs)
}

func TestEnumerateSlugsEmpty(t *testing.T) {
	svc := newTestService(NewSnapshotStore(Snapshot{}))

	slugs, err := svc.EnumerateSlugs(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, slugs)
	assert.Empty(t, slugs)
}

func TestResolveDetailPage(t *testing.T) {
	svc := newTestService(NewSnapshotStore(fixtureSnapshot()))

	page, err := svc.ResolveDetailPage(context.Background(), "proton-mail")
	require.NoError(t, err)
	assert.Equal(t, "Proton Mail", page.Item.Name)
	require.NotNil(t, page.Shared)
	assert.Equal(t, "We list EU tools.", page.Shared.AboutUs)
}

func TestResolveDetailPageFailures(t *testing.T) {
	t.Run("missing item", func(t *testing.T) {
		svc := newTestService(NewSnapshotStore(fixtureSnapshot()))
		_, err := svc.ResolveDetailPage(context.Background(), "nonexistent-tool")
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("shared content unavailable", func(t *testing.T) {
		store := &stubStore{SnapshotStore: NewSnapshotStore(fixtureSnapshot()), sharedErr: fmt.Errorf("boom")}
		svc := newTestService(store)
		_, err := svc.ResolveDetailPage(context.Background(), "proton-mail")
		assert.Equal(t, errors.ErrorTypeStoreUnavailable, errors.TypeOf(err))
	})

	t.Run("missing item wins over shared failure", func(t *testing.T) {
		store := &stubStore{SnapshotStore: NewSnapshotStore(fixtureSnapshot()), sharedErr: fmt.Errorf("boom")}
		svc := newTestService(store)
		for i := 0; i < 50; i++ {
			_, err := svc.ResolveDetailPage(context.Background(), "nonexistent-tool")
			require.True(t, errors.IsNotFound(err), "attempt %d: %v", i, err)
		}
	})

	t.Run("item failure wins over shared failure", func(t *testing.T) {
		store := &stubStore{
			SnapshotStore: NewSnapshotStore(fixtureSnapshot()),
			itemErr:       fmt.Errorf("item query timed out"),
			sharedErr:     fmt.Errorf("boom"),
		}
		svc := newTestService(store)
		for i := 0; i < 50; i++ {
			_, err := svc.ResolveDetailPage(context.Background(), "proton-mail")
			require.ErrorContains(t, err, "item query timed out")
		}
	})
}

func TestContentServiceRecordsQueryMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := NewContentService(NewSnapshotStore(fixtureSnapshot()), zap.NewNop(), m, time.Second)

	_, err := svc.ResolveCatalogListing(context.Background())
	require.NoError(t, err)
	_, err = svc.EnumerateSlugs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, testutil.CollectAndCount(m.StoreQueryDuration))
}
