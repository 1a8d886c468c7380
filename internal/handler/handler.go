package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/user/moviebot/internal/agent"
	"github.com/user/moviebot/internal/config"
	"github.com/user/moviebot/internal/service"
)

// Chatter 回答用户问题
type Chatter interface {
	Chat(ctx context.Context, query string) (string, error)
}

// Reindexer 重建向量索引
type Reindexer interface {
	Run(ctx context.Context, opts service.IndexOptions) (*service.IndexReport, error)
}

// Handler HTTP 处理器
type Handler struct {
	Config       *config.Config
	Agent        Chatter
	Tools        *agent.Registry
	Indexer      Reindexer
	IndexOptions service.IndexOptions
	Logger       *slog.Logger

	reindexing atomic.Bool
	lastIndex  atomic.Pointer[ReindexStatus]
}

// NewHandler indexer 为 nil 时不提供重建索引接口
func NewHandler(cfg *config.Config, chat Chatter, tools *agent.Registry, indexer Reindexer, logger *slog.Logger) *Handler {
	opts := service.DefaultIndexOptions()
	if cfg.IndexWorkers > 0 {
		opts.Workers = cfg.IndexWorkers
	}
	if cfg.IndexLimit > 0 {
		opts.Limit = cfg.IndexLimit
	}
	if cfg.IndexMinVotes > 0 {
		opts.MinVotes = cfg.IndexMinVotes
	}

	return &Handler{
		Config:       cfg,
		Agent:        chat,
		Tools:        tools,
		Indexer:      indexer,
		IndexOptions: opts,
		Logger:       logger,
	}
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	res := gin.H{
		"SiteName": h.Config.SiteName,
		"Path":     c.Request.URL.Path,
	}
	for k, v := range data {
		res[k] = v
	}
	return res
}

// Home 聊天页面
func (h *Handler) Home(c *gin.Context) {
	c.HTML(http.StatusOK, "index", h.RenderData(c, gin.H{
		"Title": h.Config.SiteName,
	}))
}

// Health 健康检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
