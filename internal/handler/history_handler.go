package handler

import (
	"net/http"

	"qna-console-go/internal/service"

	"github.com/gin-gonic/gin"
)

// HistoryHandler 处理与问答历史相关的 API 请求。
type HistoryHandler struct {
	historyService service.HistoryService
}

// NewHistoryHandler 创建一个新的 HistoryHandler。
func NewHistoryHandler(historyService service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historyService: historyService}
}

// List 返回按置顶/时间排序的历史记录，支持 query 参数做子串过滤。
func (h *HistoryHandler) List(c *gin.Context) {
	results := h.historyService.Search(c.Query("query"))
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data":    results,
	})
}

// Remove 删除指定 id 的历史记录。id 不存在时同样返回成功（幂等删除）。
func (h *HistoryHandler) Remove(c *gin.Context) {
	h.historyService.Remove(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
	})
}

// TogglePin 翻转指定 id 的置顶标志。
func (h *HistoryHandler) TogglePin(c *gin.Context) {
	h.historyService.TogglePin(c.Request.Context(), c.Param("id"))
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
	})
}

// Clear 清空全部历史记录。
func (h *HistoryHandler) Clear(c *gin.Context) {
	h.historyService.Clear(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
	})
}
