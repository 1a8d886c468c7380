package embedding

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/user/moviebot/internal/metrics"
	"github.com/user/moviebot/internal/utils"
)

// Cached 为 Embedder 加一层 LRU 缓存，相同文本并发请求只调用一次
type Cached struct {
	next  Embedder
	cache *utils.LRUCache[[]float32]
	sf    singleflight.Group
}

// NewCached size <= 0 时直接返回原 Embedder
func NewCached(next Embedder, size int) Embedder {
	if size <= 0 {
		return next
	}
	return &Cached{
		next:  next,
		cache: utils.NewLRUCache[[]float32](size, 0),
	}
}

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	if v, ok := c.cache.Get(text); ok {
		metrics.RecordEmbeddingCache(true)
		return v, nil
	}
	metrics.RecordEmbeddingCache(false)

	v, err, _ := c.sf.Do(text, func() (any, error) {
		emb, err := c.next.Embed(ctx, text)
		if err != nil {
			metrics.EmbeddingErrors.Inc()
			return nil, err
		}
		c.cache.Set(text, emb)
		return emb, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]float32), nil
}

func (c *Cached) Close() error {
	return c.next.Close()
}
