// Package router 注册开发网关的路由
package router

import (
	"kama_group_client/internal/gateway/handler"
	"kama_group_client/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router 路由管理器
type Router struct {
	handlers *handler.Handlers
}

// NewRouter 创建路由管理器
func NewRouter(handlers *handler.Handlers) *Router {
	return &Router{handlers: handlers}
}

// RegisterRoutes 注册所有路由
// /login 公开，其余路由需要 Access Token
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.POST("/login", rt.handlers.Auth.Login)

	authed := r.Group("/", middleware.JWTAuth())
	rt.RegisterGroupRoutes(authed)
	rt.RegisterChatRoomRoutes(authed)
	rt.RegisterWebSocketRoutes(authed)
}

// RegisterGroupRoutes 成员身份和权限表
func (rt *Router) RegisterGroupRoutes(rg *gin.RouterGroup) {
	groups := rg.Group("/groups/:groupId")
	{
		groups.GET("/membership", rt.handlers.Group.Membership)
		groups.GET("/permissions", rt.handlers.Group.Permissions)
	}
}

// RegisterChatRoomRoutes 聊天室
func (rt *Router) RegisterChatRoomRoutes(rg *gin.RouterGroup) {
	rooms := rg.Group("/group/:groupId/chat/rooms")
	{
		rooms.GET("/my", rt.handlers.ChatRoom.MyRooms)
		rooms.POST("", rt.handlers.ChatRoom.CreateRoom)
	}
}

// RegisterWebSocketRoutes 聊天 WebSocket 入口
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/chat", rt.handlers.Ws.Connect)
}
