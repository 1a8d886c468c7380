package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/user/moviebot/internal/service"
	"github.com/user/moviebot/internal/utils"
)

// ReindexStatus 最近一次重建索引的结果
type ReindexStatus struct {
	Running    bool                 `json:"running"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
	Report     *service.IndexReport `json:"report,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// AdminReindex POST /admin/reindex 后台重建向量索引，同一时间只跑一个
func (h *Handler) AdminReindex(c *gin.Context) {
	if h.Indexer == nil {
		utils.Error(c, http.StatusServiceUnavailable, "索引服务未启用")
		return
	}
	if !h.reindexing.CompareAndSwap(false, true) {
		utils.Conflict(c, "索引正在重建中")
		return
	}

	status := &ReindexStatus{Running: true, StartedAt: time.Now()}
	h.lastIndex.Store(status)

	// 不跟随请求的 context，请求返回后任务继续
	ctx := context.WithoutCancel(c.Request.Context())
	go h.runReindex(ctx, status.StartedAt)

	utils.Accepted(c, "索引重建已开始", status)
}

// AdminReindexStatus GET /admin/reindex
func (h *Handler) AdminReindexStatus(c *gin.Context) {
	status := h.lastIndex.Load()
	if status == nil {
		utils.Success(c, ReindexStatus{})
		return
	}
	utils.Success(c, status)
}

func (h *Handler) runReindex(ctx context.Context, startedAt time.Time) {
	defer h.reindexing.Store(false)

	report, err := h.Indexer.Run(ctx, h.IndexOptions)
	finished := time.Now()
	done := &ReindexStatus{StartedAt: startedAt, FinishedAt: &finished, Report: report}
	if err != nil {
		done.Error = err.Error()
		h.Logger.Error("重建索引失败", "error", err)
	}
	h.lastIndex.Store(done)
}
