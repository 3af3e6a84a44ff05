package providers

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/BerylCAtieno/loan-document-verifier/internal/models"
)

const listingKey = "listing"

// CachedProvider memoises a provider's listing for a fixed TTL. Fetch is
// never cached.
type CachedProvider struct {
	Provider
	cache *gocache.Cache
}

func Cached(p Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		Provider: p,
		cache:    gocache.New(ttl, 2*ttl),
	}
}

func (c *CachedProvider) ListFiles(ctx context.Context) ([]models.CandidateDocument, error) {
	if val, found := c.cache.Get(listingKey); found {
		return cloneCandidates(val.([]models.CandidateDocument)), nil
	}

	docs, err := c.Provider.ListFiles(ctx)
	if err != nil {
		return nil, err
	}

	c.cache.SetDefault(listingKey, cloneCandidates(docs))
	return docs, nil
}

// Invalidate drops the cached listing.
func (c *CachedProvider) Invalidate() {
	c.cache.Delete(listingKey)
}

func cloneCandidates(in []models.CandidateDocument) []models.CandidateDocument {
	out := make([]models.CandidateDocument, len(in))
	copy(out, in)
	return out
}
