package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/user/moviebot/internal/agent"
	"github.com/user/moviebot/internal/utils"
)

// ToolResponse 工具接口返回的数据
type ToolResponse struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

type quoteQuery struct {
	Q string `form:"q" binding:"notblank,max=500"`
}

type recommendQuery struct {
	Titles string `form:"titles" binding:"notblank,max=1000"`
}

// ToolQuote GET /api/tools/quote?q=
func (h *Handler) ToolQuote(c *gin.Context) {
	var q quoteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "台词不能为空且不超过 500 字")
		return
	}
	h.invokeTool(c, agent.ToolFindByQuote, q.Q)
}

// ToolRecommend GET /api/tools/recommend?titles=a,b
func (h *Handler) ToolRecommend(c *gin.Context) {
	var q recommendQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "片名不能为空且不超过 1000 字")
		return
	}
	h.invokeTool(c, agent.ToolRecommend, q.Titles)
}

// ToolTrending GET /api/tools/trending
func (h *Handler) ToolTrending(c *gin.Context) {
	h.invokeTool(c, agent.ToolTrending, "")
}

// invokeTool 业务上的“没找到”也是 200，由 kind 区分
func (h *Handler) invokeTool(c *gin.Context, name, arg string) {
	res, err := h.Tools.Invoke(c.Request.Context(), name, arg)
	if err != nil {
		utils.InternalServerError(c, err.Error())
		return
	}
	if res.Err != nil {
		h.Logger.Error("工具调用失败", "tool", name, "error", res.Err)
	}
	utils.Success(c, ToolResponse{Kind: string(res.Kind), Text: res.String()})
}
