package services

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/SirClappington/euclones/internal/config"
	"github.com/SirClappington/euclones/internal/models"
	"github.com/SirClappington/euclones/internal/richtext"
)

// Collection names mirror the document types used in the Sanity dataset.
const (
	toolCollection          = "tool"
	commonContentCollection = "commonContent"
)

// FirestoreStore reads catalog content from Cloud Firestore. Documents use the
// same field names as the models' JSON layout.
type FirestoreStore struct {
	app    *firebase.App
	client *firestore.Client
	logger *zap.Logger
}

func NewFirestoreStore(ctx context.Context, cfg config.FirestoreConfig, logger *zap.Logger) (*FirestoreStore, error) {
	opt := option.WithCredentialsFile(cfg.CredentialsFile)

	var fbConfig *firebase.Config
	if cfg.ProjectID != "" {
		fbConfig = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbConfig, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing firestore client: %w", err)
	}

	return &FirestoreStore{
		app:    app,
		client: client,
		logger: logger,
	}, nil
}

func (fs *FirestoreStore) Backend() string { return config.BackendFirestore }

func (fs *FirestoreStore) Close() error {
	return fs.client.Close()
}

// withSlug matches documents whose slug is a non-empty string.
func (fs *FirestoreStore) withSlug() firestore.Query {
	return fs.client.Collection(toolCollection).Where("slug", ">", "")
}

func (fs *FirestoreStore) ListItems(ctx context.Context) ([]models.CatalogItemSummary, error) {
	iter := fs.withSlug().Documents(ctx)
	defer iter.Stop()

	var items []models.CatalogItemSummary
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing tools: %w", err)
		}

		var item models.CatalogItemSummary
		if err := doc.DataTo(&item); err != nil {
			return nil, fmt.Errorf("error decoding tool %s: %w", doc.Ref.ID, err)
		}
		item.ID = doc.Ref.ID
		items = append(items, item)
	}

	fs.logger.Debug("Listed tools from firestore", zap.Int("count", len(items)))
	return items, nil
}

func (fs *FirestoreStore) ItemBySlug(ctx context.Context, slug string) (*models.CatalogItem, error) {
	iter := fs.client.Collection(toolCollection).Where("slug", "==", slug).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying tool %q: %w", slug, err)
	}
	return decodeCatalogItem(doc)
}

func decodeCatalogItem(doc *firestore.DocumentSnapshot) (*models.CatalogItem, error) {
	var item models.CatalogItem
	if err := doc.DataTo(&item); err != nil {
		return nil, fmt.Errorf("error decoding tool %s: %w", doc.Ref.ID, err)
	}
	item.ID = doc.Ref.ID

	body, err := decodeBodyField(doc.Data()["body"])
	if err != nil {
		return nil, fmt.Errorf("error decoding body of tool %s: %w", doc.Ref.ID, err)
	}
	item.Body = body
	return &item, nil
}

// decodeBodyField converts the generic Firestore value of a body field into
// typed blocks by round-tripping it through JSON.
func decodeBodyField(raw any) (richtext.Body, error) {
	if raw == nil {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return richtext.Decode(data)
}

func (fs *FirestoreStore) SharedContent(ctx context.Context) (*models.SharedContent, error) {
	iter := fs.client.Collection(commonContentCollection).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error querying common content: %w", err)
	}

	var shared models.SharedContent
	if err := doc.DataTo(&shared); err != nil {
		return nil, fmt.Errorf("error decoding common content %s: %w", doc.Ref.ID, err)
	}
	shared.ID = doc.Ref.ID
	return &shared, nil
}

func (fs *FirestoreStore) Slugs(ctx context.Context) ([]string, error) {
	iter := fs.withSlug().Select("slug").Documents(ctx)
	defer iter.Stop()

	var slugs []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing slugs: %w", err)
		}
		if slug, ok := doc.Data()["slug"].(string); ok {
			slugs = append(slugs, slug)
		}
	}
	return slugs, nil
}
