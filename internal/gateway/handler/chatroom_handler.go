package handler

import (
	"kama_group_client/internal/dto/request"
	"kama_group_client/internal/gateway/service"

	"github.com/gin-gonic/gin"
)

// ChatRoomHandler 聊天室请求处理器
type ChatRoomHandler struct {
	roomSvc service.ChatRoomService
}

// NewChatRoomHandler 创建聊天室处理器
func NewChatRoomHandler(roomSvc service.ChatRoomService) *ChatRoomHandler {
	return &ChatRoomHandler{roomSvc: roomSvc}
}

// MyRooms 我在群组中的聊天室
// GET /group/:groupId/chat/rooms/my
// 响应: []model.ChatRoom
func (h *ChatRoomHandler) MyRooms(c *gin.Context) {
	var uri request.GroupUri
	if err := c.ShouldBindUri(&uri); err != nil {
		HandleParamError(c, err)
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	data, err := h.roomSvc.MyRooms(c.Request.Context(), uri.GroupId, userID)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// CreateRoom 创建聊天室，单聊房间已存在时返回 409
// POST /group/:groupId/chat/rooms
// 请求体: request.CreateRoomRequest
// 响应: respond.CreateRoomRespond
func (h *ChatRoomHandler) CreateRoom(c *gin.Context) {
	var uri request.GroupUri
	if err := c.ShouldBindUri(&uri); err != nil {
		HandleParamError(c, err)
		return
	}
	var req request.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	data, err := h.roomSvc.CreateRoom(c.Request.Context(), uri.GroupId, userID, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
