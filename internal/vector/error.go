package vector

import "errors"

var (
	// ErrNotFound 文档不存在
	ErrNotFound = errors.New("document not found")

	// ErrConnection 向量库不可用
	ErrConnection = errors.New("vector store connection failed")

	// ErrInvalidDocumentID 文档 ID 不符合 "<kind>_<movie_id>" 格式
	ErrInvalidDocumentID = errors.New("invalid document id")

	// ErrDimensionMismatch 向量维度与集合不一致
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
