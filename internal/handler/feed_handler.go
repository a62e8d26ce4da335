package handler

import (
	"family_hub_server/internal/gateway/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FeedHandler 家庭动态实时推送
type FeedHandler struct {
	hub *websocket.Hub
}

// NewFeedHandler 创建动态推送处理器实例
func NewFeedHandler(hub *websocket.Hub) *FeedHandler {
	return &FeedHandler{hub: hub}
}

// Connect 升级为 WebSocket 连接，之后推送当前用户收到的家庭动态
// GET /api/feed/ws?token=xxx
func (h *FeedHandler) Connect(c *gin.Context) {
	userID := currentUserID(c)
	// 升级失败时 upgrader 已写出错误响应
	if err := h.hub.ServeWS(c.Writer, c.Request, userID); err != nil {
		zap.L().Warn("ws upgrade failed", zap.String("user_id", userID), zap.Error(err))
	}
}
