// Package handler 提供开发网关的 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"kama_group_client/internal/gateway/hub"
	"kama_group_client/internal/gateway/service"
)

// Handlers 聚合所有 Handler 实例，Router 通过它访问各个 Handler
type Handlers struct {
	Auth     *AuthHandler
	Group    *GroupHandler
	ChatRoom *ChatRoomHandler
	Ws       *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services, chatServer *hub.ChatServer) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(svc.User),
		Group:    NewGroupHandler(svc.Group),
		ChatRoom: NewChatRoomHandler(svc.ChatRoom),
		Ws:       NewWsHandler(chatServer),
	}
}
