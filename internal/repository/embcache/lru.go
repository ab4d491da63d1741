package embcache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kailas-cloud/synthsearch/internal/domain"
)

// LRUEmbedder keeps recent vectors in process memory in front of another embedder.
type LRUEmbedder struct {
	inner domain.Embedder
	model string
	cache *expirable.LRU[string, []float32]
}

// WrapLRU returns inner unchanged when size or ttl is not positive.
func WrapLRU(inner domain.Embedder, model string, size int, ttl time.Duration) domain.Embedder {
	if inner == nil || size <= 0 || ttl <= 0 {
		return inner
	}
	return &LRUEmbedder{
		inner: inner,
		model: model,
		cache: expirable.NewLRU[string, []float32](size, nil, ttl),
	}
}

// Embed serves from memory or delegates. Hits report zero tokens.
func (l *LRUEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := l.model + "\x00" + text
	if vec, ok := l.cache.Get(key); ok {
		return domain.EmbeddingResult{Embedding: cloneVector(vec)}, nil
	}

	res, err := l.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // decorator is transparent
	}
	l.cache.Add(key, cloneVector(res.Embedding))
	return res, nil
}

// Len reports the number of cached vectors.
func (l *LRUEmbedder) Len() int { return l.cache.Len() }

func cloneVector(v []float32) []float32 {
	if len(v) == 0 {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
