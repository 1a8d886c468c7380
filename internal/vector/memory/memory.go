// Package memory 进程内向量库，暴力计算余弦距离，用于测试和本地开发
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/user/moviebot/internal/vector"
)

// Option 配置内存向量库
type Option func(*Store)

// WithIgnoreFilter 查询时忽略过滤条件，模拟不支持排除过滤的后端
func WithIgnoreFilter() Option {
	return func(s *Store) {
		s.ignoreFilter = true
	}
}

// Store 内存向量库
type Store struct {
	mu           sync.Mutex
	collections  map[string]*Collection
	ignoreFilter bool
}

// New 创建内存向量库
func New(opts ...Option) *Store {
	s := &Store{collections: make(map[string]*Collection)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Collection 获取或创建集合
func (s *Store) Collection(_ context.Context, name string) (vector.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &Collection{name: name, docs: make(map[string]vector.Document), ignoreFilter: s.ignoreFilter}
		s.collections[name] = c
	}
	return c, nil
}

func (s *Store) Close() error {
	return nil
}

// Collection 内存集合
type Collection struct {
	name         string
	ignoreFilter bool

	mu   sync.RWMutex
	docs map[string]vector.Document
	dims int
}

func (c *Collection) Name() string {
	return c.name
}

func (c *Collection) Upsert(_ context.Context, docs []vector.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, doc := range docs {
		if c.dims == 0 {
			c.dims = len(doc.Embedding)
		}
		if len(doc.Embedding) != c.dims {
			return fmt.Errorf("%w: collection %s expects %d, got %d", vector.ErrDimensionMismatch, c.name, c.dims, len(doc.Embedding))
		}
		doc.Embedding = append([]float32(nil), doc.Embedding...)
		c.docs[doc.ID] = doc
	}
	return nil
}

func (c *Collection) Get(_ context.Context, ids []string) ([]vector.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := make([]vector.Document, 0, len(ids))
	for _, id := range ids {
		if doc, ok := c.docs[id]; ok {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (c *Collection) Query(_ context.Context, embedding []float32, topK int, filter *vector.Filter) ([]vector.Hit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if topK <= 0 {
		return nil, nil
	}
	if c.dims != 0 && len(embedding) != c.dims {
		return nil, fmt.Errorf("%w: collection %s expects %d, got %d", vector.ErrDimensionMismatch, c.name, c.dims, len(embedding))
	}

	hits := make([]vector.Hit, 0, len(c.docs))
	for _, doc := range c.docs {
		if !c.ignoreFilter && filter.Excludes(doc) {
			continue
		}
		hits = append(hits, vector.Hit{Document: doc, Distance: vector.CosineDistance(embedding, doc.Embedding)})
	}

	// 距离相同按 ID 排序，保证结果稳定
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance != hits[j].Distance {
			return hits[i].Distance < hits[j].Distance
		}
		return hits[i].ID < hits[j].ID
	})

	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits, nil
}

func (c *Collection) Delete(_ context.Context, ids []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		delete(c.docs, id)
	}
	return nil
}

func (c *Collection) Truncate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docs = make(map[string]vector.Document)
	c.dims = 0
	return nil
}

// Len 集合中的文档数
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}
