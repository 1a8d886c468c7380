// Package vector 定义向量库的抽象：按集合存放电影向量文档，支持按余弦距离检索
package vector

import (
	"context"
	"fmt"
)

// Kind 文档类型，每种类型对应一个集合
type Kind string

const (
	KindOverview Kind = "overview"
	KindQuote    Kind = "quote"
	KindMeta     Kind = "meta"
)

// Collection 返回该类型对应的集合名
func (k Kind) Collection() string {
	switch k {
	case KindOverview:
		return "movie_overviews"
	case KindQuote:
		return "movie_quotes"
	case KindMeta:
		return "movie_metadata"
	}
	return ""
}

// Kinds 所有文档类型
func Kinds() []Kind {
	return []Kind{KindOverview, KindQuote, KindMeta}
}

// Payload 文档附带的元数据，未知字段为空串
type Payload struct {
	MovieID string `json:"movie_id,omitempty"`
	Title   string `json:"title,omitempty"`
	Year    string `json:"year,omitempty"`
}

// Document 向量文档
type Document struct {
	ID        string
	Embedding []float32
	Payload   Payload
	Text      string
}

// MovieID 优先取 payload，缺失时从文档 ID 解析
func (d Document) MovieID() string {
	if d.Payload.MovieID != "" {
		return d.Payload.MovieID
	}
	if _, id, err := ParseDocumentID(d.ID); err == nil {
		return id
	}
	return ""
}

// Hit 检索结果，Distance 越小越相似
type Hit struct {
	Document
	Distance float32
}

// Filter 检索过滤条件
type Filter struct {
	// MovieIDNotIn 排除这些电影 ID
	MovieIDNotIn []string
}

// Excludes 判断文档是否应被过滤掉
func (f *Filter) Excludes(d Document) bool {
	if f == nil || len(f.MovieIDNotIn) == 0 {
		return false
	}
	id := d.MovieID()
	for _, ex := range f.MovieIDNotIn {
		if ex == id {
			return true
		}
	}
	return false
}

// Collection 一个命名的向量集合
type Collection interface {
	Name() string

	// Upsert 按 ID 写入，已存在的文档被覆盖
	Upsert(ctx context.Context, docs []Document) error

	// Get 按 ID 读取，不存在的 ID 不出现在结果里
	Get(ctx context.Context, ids []string) ([]Document, error)

	// Query 返回与 embedding 最近的 topK 个文档，按距离升序
	Query(ctx context.Context, embedding []float32, topK int, filter *Filter) ([]Hit, error)

	Delete(ctx context.Context, ids []string) error

	// Truncate 清空集合
	Truncate(ctx context.Context) error
}

// Store 向量库，集合不存在时自动创建
type Store interface {
	Collection(ctx context.Context, name string) (Collection, error)
	Close() error
}

// Collections 三个业务集合
type Collections struct {
	Overview Collection
	Quote    Collection
	Meta     Collection
}

// OpenCollections 打开（必要时创建）三个业务集合
func OpenCollections(ctx context.Context, store Store) (*Collections, error) {
	open := func(k Kind) (Collection, error) {
		c, err := store.Collection(ctx, k.Collection())
		if err != nil {
			return nil, fmt.Errorf("%w: open collection %s: %v", ErrConnection, k.Collection(), err)
		}
		return c, nil
	}

	overview, err := open(KindOverview)
	if err != nil {
		return nil, err
	}
	quote, err := open(KindQuote)
	if err != nil {
		return nil, err
	}
	meta, err := open(KindMeta)
	if err != nil {
		return nil, err
	}
	return &Collections{Overview: overview, Quote: quote, Meta: meta}, nil
}

// ByKind 按文档类型取集合
func (c *Collections) ByKind(k Kind) Collection {
	switch k {
	case KindOverview:
		return c.Overview
	case KindQuote:
		return c.Quote
	case KindMeta:
		return c.Meta
	}
	return nil
}
