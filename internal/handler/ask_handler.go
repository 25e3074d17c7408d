// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"qna-console-go/internal/service"
	"qna-console-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// AskHandler 负责处理提问与状态观测相关的 API 请求。
type AskHandler struct {
	askService service.AskService
}

// NewAskHandler 创建一个新的 AskHandler 实例。
func NewAskHandler(askService service.AskService) *AskHandler {
	return &AskHandler{askService: askService}
}

// AskRequest 定义了提问 API 的请求体结构。
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// Ask 处理一次提问请求，同步等待自动化端点的结果。
func (h *AskHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("Ask: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：问题不能为空",
		})
		return
	}

	exchange, err := h.askService.Submit(c.Request.Context(), req.Question)
	switch {
	case errors.Is(err, service.ErrEmptyQuestion):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": err.Error(),
		})
	case errors.Is(err, service.ErrBusy):
		// 在途请求期间的提交被丢弃：核心状态不变，也不会发出第二个请求
		c.JSON(http.StatusConflict, gin.H{
			"code":    http.StatusConflict,
			"message": err.Error(),
		})
	case err != nil:
		// 错误文本已经归一化为用户可读的形式，不附带技术细节
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    http.StatusBadGateway,
			"message": err.Error(),
		})
	default:
		c.JSON(http.StatusOK, gin.H{
			"code":    http.StatusOK,
			"message": "success",
			"data":    exchange,
		})
	}
}

// GetStatus 返回当前的提问状态与最近一次错误文本。
func (h *AskHandler) GetStatus(c *gin.Context) {
	status, lastError := h.askService.Status()
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"status": status,
			"error":  lastError,
		},
	})
}

// StreamStatus 通过 WebSocket 向前端推送状态迁移事件。
func (h *AskHandler) StreamStatus(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	events, cancel := h.askService.Subscribe()
	defer cancel()

	// 先推送当前状态作为初始事件
	status, lastError := h.askService.Status()
	if err := conn.WriteJSON(service.StatusEvent{Status: status, Message: lastError}); err != nil {
		return
	}

	// 读取协程只用于感知客户端断开
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Warnf("推送状态事件失败: %v", err)
				return
			}
		case <-done:
			return
		}
	}
}
