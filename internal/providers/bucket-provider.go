package providers

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
	"github.com/BerylCAtieno/loan-document-verifier/internal/storage"
)

// BucketProvider lists the objects under a prefix of a storage bucket.
type BucketProvider struct {
	name   string
	store  storage.Storage
	prefix string
}

func NewBucketProvider(name string, store storage.Storage, prefix string) *BucketProvider {
	return &BucketProvider{name: name, store: store, prefix: prefix}
}

func (p *BucketProvider) Name() string {
	return p.name
}

func (p *BucketProvider) ListFiles(ctx context.Context) ([]models.CandidateDocument, error) {
	objects, err := p.store.List(ctx, p.prefix)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", p.name, err)
	}

	docs := make([]models.CandidateDocument, 0, len(objects))
	for _, obj := range objects {
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		name := path.Base(obj.Key)
		contentType := obj.ContentType
		if contentType == "" {
			contentType = mimeTypeFor(name)
		}
		docs = append(docs, models.CandidateDocument{
			ID:           obj.Key,
			Name:         name,
			MimeType:     contentType,
			Size:         obj.Size,
			LastModified: obj.LastModified,
			WebViewLink:  p.store.URL(obj.Key),
		})
	}
	return docs, nil
}

func (p *BucketProvider) Fetch(ctx context.Context, id string) (models.File, error) {
	if !strings.HasPrefix(id, p.prefix) {
		return models.File{}, fmt.Errorf("provider %s: %w: %s", p.name, storage.ErrNotFound, id)
	}
	data, err := p.store.Download(ctx, id)
	if err != nil {
		return models.File{}, fmt.Errorf("provider %s: %w", p.name, err)
	}
	name := path.Base(id)
	return models.File{Name: name, ContentType: mimeTypeFor(name), Data: data}, nil
}
