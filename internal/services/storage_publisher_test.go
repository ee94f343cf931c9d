package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestContentTypeFor(t *testing.T) {
	assert.Contains(t, contentTypeFor("public/index.html"), "text/html")
	assert.Contains(t, contentTypeFor("public/styles.css"), "text/css")
	assert.Equal(t, "application/octet-stream", contentTypeFor("public/CNAME"))
}

func TestNewStoragePublisherRequiresBucket(t *testing.T) {
	_, err := NewStoragePublisher(context.Background(), "", "", zap.NewNop())
	assert.Error(t, err)
}
