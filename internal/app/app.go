// Package app 按配置组装数据库、向量库、Embedding 和各个服务，供 server 和 loader 共用
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/user/moviebot/internal/agent"
	"github.com/user/moviebot/internal/config"
	"github.com/user/moviebot/internal/embedding"
	"github.com/user/moviebot/internal/llm"
	"github.com/user/moviebot/internal/repository"
	"github.com/user/moviebot/internal/service"
	"github.com/user/moviebot/internal/utils"
	"github.com/user/moviebot/internal/vector"
	"github.com/user/moviebot/internal/vector/vectorutils"
)

type App struct {
	Config      *config.Config
	Logger      *slog.Logger
	DB          *gorm.DB
	Repos       *repository.Repositories
	Vectors     vector.Store
	Collections *vector.Collections
	Embedder    embedding.Embedder
}

// Open 连接关系库和向量库；失败时已打开的资源会被关闭
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a := &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Repos:  repository.NewRepositories(db),
	}

	a.Vectors, err = vectorutils.NewStore(ctx, &vectorutils.NewStoreOpts{
		Backend:    cfg.VectorBackend,
		DB:         db,
		ChromaURL:  cfg.ChromaURL,
		QdrantHost: cfg.QdrantHost,
		QdrantPort: cfg.QdrantPort,
		QdrantKey:  cfg.QdrantAPIKey,
		Dimensions: cfg.EmbeddingDimensions,
		Logger:     logger,
	})
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("初始化向量库失败: %w", err)
	}

	a.Collections, err = vector.OpenCollections(ctx, a.Vectors)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Embedder = embedding.NewCached(embedding.NewOllama(embedding.OllamaConfig{
		Host:       cfg.OllamaHost,
		Model:      cfg.OllamaModel,
		Dimensions: cfg.EmbeddingDimensions,
	}), cfg.EmbeddingCacheSize)

	logger.Info("组件初始化完成", "vector_backend", cfg.VectorBackend, "embedding_model", cfg.OllamaModel)
	return a, nil
}

// Tools 三个电影工具
func (a *App) Tools() *agent.Registry {
	movies := a.Repos.Movie

	// TRENDING_CACHE_TTL 为 0 时不缓存
	var trendingCache *cache.Cache
	if a.Config.TrendingCacheTTL > 0 {
		trendingCache = utils.NewTTLCache(a.Config.TrendingCacheTTL)
	}

	return agent.NewMovieTools(
		service.NewQuoteMatcher(movies, a.Collections.Quote, a.Embedder, a.Logger),
		service.NewRecommender(movies, a.Collections.Overview, a.Logger),
		service.NewTrendingSelector(movies, trendingCache, a.Logger),
		a.Logger,
	)
}

// Agent 基于 Gemini 的对话 agent
func (a *App) Agent(tools *agent.Registry) *agent.Agent {
	provider := llm.NewGemini(llm.GeminiConfig{
		APIKey:  a.Config.GeminiAPIKey,
		BaseURL: a.Config.GeminiBaseURL,
		Model:   a.Config.GeminiModel,
		Timeout: 90 * time.Second,
	})
	cfg := agent.DefaultConfig()
	cfg.MaxSteps = a.Config.AgentMaxSteps
	return agent.New(provider, tools, cfg, a.Logger)
}

func (a *App) Indexer() *service.Indexer {
	return service.NewIndexer(a.Repos.Movie, a.Embedder, a.Collections, a.Logger)
}

func (a *App) TMDB() *service.TMDBService {
	return service.NewTMDBService(a.Repos.Movie, a.Config.TMDBBaseURL, a.Config.TMDBToken, a.Logger)
}

func (a *App) Close() error {
	var errs []error
	if a.Embedder != nil {
		errs = append(errs, a.Embedder.Close())
	}
	if a.Vectors != nil {
		errs = append(errs, a.Vectors.Close())
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			errs = append(errs, sqlDB.Close())
		}
	}
	return errors.Join(errs...)
}
