package services

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// StoragePublisher uploads a rendered static site to a Cloud Storage bucket.
type StoragePublisher struct {
	storage *storage.Client
	bucket  *storage.BucketHandle
	logger  *zap.Logger
}

// NewStoragePublisher uses the service account in credentialsFile, or
// application default credentials when it is empty.
func NewStoragePublisher(ctx context.Context, credentialsFile, bucketName string, logger *zap.Logger) (*StoragePublisher, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("bucket name is required for publishing")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	storageClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing storage client: %w", err)
	}

	return &StoragePublisher{
		storage: storageClient,
		bucket:  storageClient.Bucket(bucketName),
		logger:  logger,
	}, nil
}

func (p *StoragePublisher) Close() error {
	return p.storage.Close()
}

// UploadFile copies one local file to objectName.
func (p *StoragePublisher) UploadFile(ctx context.Context, filePath, objectName string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	wc := p.bucket.Object(objectName).NewWriter(ctx)
	wc.ContentType = contentTypeFor(filePath)
	if _, err = io.Copy(wc, f); err != nil {
		_ = wc.Close()
		return fmt.Errorf("error uploading %s: %w", objectName, err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("error closing writer for %s: %w", objectName, err)
	}

	p.logger.Debug("Uploaded file",
		zap.String("file", filePath),
		zap.String("object", objectName),
	)
	return nil
}

// PublishDir uploads every regular file under dir, keyed by its slash-separated
// path relative to dir. It returns the number of files uploaded.
func (p *StoragePublisher) PublishDir(ctx context.Context, dir string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		if err := p.UploadFile(ctx, path, filepath.ToSlash(rel)); err != nil {
			return err
		}
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, err
	}

	p.logger.Info("Published static site", zap.Int("files", uploaded))
	return uploaded, nil
}

func contentTypeFor(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
