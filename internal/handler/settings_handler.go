package handler

import (
	"net/http"

	"qna-console-go/internal/service"
	"qna-console-go/pkg/log"

	"github.com/gin-gonic/gin"
)

// SettingsHandler 处理端点配置相关的 API 请求。
type SettingsHandler struct {
	settingsService service.SettingsService
}

// NewSettingsHandler 创建一个新的 SettingsHandler。
func NewSettingsHandler(settingsService service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetEndpoint 返回当前生效的自动化端点 URL。
func (h *SettingsHandler) GetEndpoint(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"endpointUrl": h.settingsService.EndpointURL(),
		},
	})
}

// UpdateEndpointRequest 定义了更新端点 API 的请求体结构。
type UpdateEndpointRequest struct {
	EndpointURL string `json:"endpointUrl" binding:"required"`
}

// UpdateEndpoint 校验并更新自动化端点 URL。
func (h *SettingsHandler) UpdateEndpoint(c *gin.Context) {
	var req UpdateEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnf("UpdateEndpoint: Invalid request payload, error: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "无效的请求负载：endpointUrl 不能为空",
		})
		return
	}

	if err := h.settingsService.UpdateEndpoint(c.Request.Context(), req.EndpointURL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": "success",
		"data": gin.H{
			"endpointUrl": h.settingsService.EndpointURL(),
		},
	})
}
