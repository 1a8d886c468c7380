// Package vectorutils 按配置创建向量库
package vectorutils

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/user/moviebot/internal/vector"
	"github.com/user/moviebot/internal/vector/chroma"
	"github.com/user/moviebot/internal/vector/memory"
	"github.com/user/moviebot/internal/vector/pgvector"
	"github.com/user/moviebot/internal/vector/qdrant"
)

type NewStoreOpts struct {
	// Backend 取值 pgvector、chroma、qdrant、memory
	Backend    string
	DB         *gorm.DB
	ChromaURL  string
	QdrantHost string
	QdrantPort int
	QdrantKey  string
	Dimensions int
	Logger     *slog.Logger
}

func NewStore(ctx context.Context, o *NewStoreOpts) (vector.Store, error) {
	switch o.Backend {
	case "pgvector", "":
		if o.DB == nil {
			return nil, fmt.Errorf("pgvector backend requires a database connection")
		}
		return pgvector.New(ctx, o.DB, o.Dimensions)
	case "chroma":
		return chroma.New(chroma.Config{URL: o.ChromaURL}, o.Logger)
	case "qdrant":
		return qdrant.New(qdrant.Config{
			Host:       o.QdrantHost,
			Port:       o.QdrantPort,
			APIKey:     o.QdrantKey,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store backend: %s", o.Backend)
	}
}
