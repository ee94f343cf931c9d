package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/SirClappington/euclones/internal/config"
	"github.com/SirClappington/euclones/internal/models"
)

// Snapshot is an exported copy of the dataset, used for local development and
// offline builds.
type Snapshot struct {
	Tools         []models.CatalogItem  `json:"tools"`
	CommonContent *models.SharedContent `json:"commonContent,omitempty"`
}

// SnapshotStore serves content from an in-memory Snapshot.
type SnapshotStore struct {
	snapshot Snapshot
}

func NewSnapshotStore(snapshot Snapshot) *SnapshotStore {
	return &SnapshotStore{snapshot: snapshot}
}

// LoadSnapshotStore reads a Snapshot from a JSON file.
func LoadSnapshotStore(path string) (*SnapshotStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	return NewSnapshotStore(snapshot), nil
}

func (s *SnapshotStore) Backend() string { return config.BackendSnapshot }

func (s *SnapshotStore) ListItems(_ context.Context) ([]models.CatalogItemSummary, error) {
	var items []models.CatalogItemSummary
	for i := range s.snapshot.Tools {
		if s.snapshot.Tools[i].Slug == "" {
			continue
		}
		items = append(items, s.snapshot.Tools[i].Summary())
	}
	return items, nil
}

func (s *SnapshotStore) ItemBySlug(_ context.Context, slug string) (*models.CatalogItem, error) {
	for i := range s.snapshot.Tools {
		if s.snapshot.Tools[i].Slug == slug {
			item := s.snapshot.Tools[i]
			return &item, nil
		}
	}
	return nil, nil
}

func (s *SnapshotStore) SharedContent(_ context.Context) (*models.SharedContent, error) {
	if s.snapshot.CommonContent == nil {
		return nil, nil
	}
	shared := *s.snapshot.CommonContent
	return &shared, nil
}

func (s *SnapshotStore) Slugs(_ context.Context) ([]string, error) {
	var slugs []string
	for i := range s.snapshot.Tools {
		if s.snapshot.Tools[i].Slug != "" {
			slugs = append(slugs, s.snapshot.Tools[i].Slug)
		}
	}
	return slugs, nil
}
