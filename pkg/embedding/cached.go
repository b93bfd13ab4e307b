package embedding

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedProvider memoizes embeddings per task type and text.
// Voice users repeat themselves a lot, so query vectors are worth keeping.
type CachedProvider struct {
	inner EmbeddingProvider
	cache *lru.Cache[string, []float32]
}

func NewCachedProvider(inner EmbeddingProvider, size int) (*CachedProvider, error) {
	if size <= 0 {
		size = 512
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	return &CachedProvider{inner: inner, cache: cache}, nil
}

func (c *CachedProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	key := taskType + "\x00" + text
	if values, ok := c.cache.Get(key); ok {
		return &EmbeddingResponse{Embedding: EmbeddingResponseEmbedding{Values: values}}, nil
	}

	res, err := c.inner.Generate(ctx, text, taskType)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, res.Embedding.Values)
	return res, nil
}

// Len reports how many vectors are cached
func (c *CachedProvider) Len() int {
	return c.cache.Len()
}
