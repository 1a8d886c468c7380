// Package embedding 文本向量化
package embedding

import (
	"context"
	"errors"
)

var (
	// ErrEmbedding 向量服务调用失败
	ErrEmbedding = errors.New("embedding failed")

	// ErrEmptyText 空文本无法向量化
	ErrEmptyText = errors.New("empty text")
)

// Embedder 把文本转换为向量
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Close() error
}
