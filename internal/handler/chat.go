package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	MsgEmptyQuestion   = "Please enter a question!"
	MsgQuestionTooLong = "Your question is too long."
)

// ChatQuery GET /chat?q=...
type ChatQuery struct {
	Q string `form:"q" binding:"notblank,max=2000"`
}

// Chat 把问题交给 agent，出错也返回 200 和错误文本
func (h *Handler) Chat(c *gin.Context) {
	var q ChatQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		if failedTag(err) == "notblank" {
			c.JSON(http.StatusOK, gin.H{"response": MsgEmptyQuestion})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"response": MsgQuestionTooLong})
		return
	}

	answer, err := h.Agent.Chat(c.Request.Context(), q.Q)
	if err != nil {
		h.Logger.Error("对话失败", "error", err)
		c.JSON(http.StatusOK, gin.H{"response": "Error: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": answer})
}
