package handler

import (
	"kama_group_client/internal/gateway/hub"

	"github.com/gin-gonic/gin"
)

// WsHandler WebSocket 连接入口
type WsHandler struct {
	server *hub.ChatServer
}

// NewWsHandler 创建 WebSocket 处理器
func NewWsHandler(server *hub.ChatServer) *WsHandler {
	return &WsHandler{server: server}
}

// Connect 升级为 WebSocket 连接
// GET /ws/chat?token=xxx
// 认证由 JWTAuth 完成，连接建立后客户端先发送 subscribe 帧
func (h *WsHandler) Connect(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	h.server.NewClientInit(c, userID)
}
